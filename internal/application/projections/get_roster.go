package projections

import (
	"context"

	storageProfile "anatwithme/internal/adapters/storage/profile"
	"anatwithme/internal/domain/account"
)

// RosterEntry is one student on the admin roster.
type RosterEntry struct {
	UserID        string
	Name          string
	Email         string
	Phone         string
	InPerson      bool
	MarkedSlots   int
	HasMarkedGrid bool
}

// GetRosterResult carries the query result.
type GetRosterResult struct {
	Students []RosterEntry
	Total    int
}

// GetRosterDeps holds dependencies for GetRoster.
type GetRosterDeps struct {
	ProfileStore      ProfileStore
	AvailabilityStore AvailabilityStore
}

// QueryGetRoster lists every student with how many grid cells they marked.
// Admins don't appear on the roster.
// POST: Students are ordered by name; MarkedSlots counts availability rows
func QueryGetRoster(ctx context.Context, deps GetRosterDeps) (GetRosterResult, error) {
	profiles, err := deps.ProfileStore.List(ctx, storageProfile.ListFilter{
		Limit: 500,
		Role:  account.RoleStudent,
	})
	if err != nil {
		return GetRosterResult{}, err
	}

	counts := make(map[string]int)
	for _, p := range profiles {
		ids, err := deps.AvailabilityStore.ListSlotIDs(ctx, p.UserID)
		if err != nil {
			return GetRosterResult{}, err
		}
		counts[p.UserID] = len(ids)
	}

	var result GetRosterResult
	for _, p := range profiles {
		result.Students = append(result.Students, RosterEntry{
			UserID:        p.UserID,
			Name:          p.DisplayName(),
			Email:         p.Email,
			Phone:         p.Phone,
			InPerson:      p.InPerson,
			MarkedSlots:   counts[p.UserID],
			HasMarkedGrid: counts[p.UserID] > 0,
		})
	}
	result.Total = len(result.Students)
	return result, nil
}

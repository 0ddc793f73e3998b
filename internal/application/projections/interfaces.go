package projections

import (
	"context"

	storageProfile "anatwithme/internal/adapters/storage/profile"
	domainAgenda "anatwithme/internal/domain/agenda"
	domainProfile "anatwithme/internal/domain/profile"
	domainTimeslot "anatwithme/internal/domain/timeslot"
)

// TimeSlotStore interface for grid queries.
type TimeSlotStore interface {
	List(ctx context.Context) ([]domainTimeslot.TimeSlot, error)
}

// AvailabilityStore interface for availability queries.
type AvailabilityStore interface {
	ListSlotIDs(ctx context.Context, userID string) ([]int64, error)
	CountBySlot(ctx context.Context) (map[int64]int, error)
}

// ProfileStore interface for roster queries.
type ProfileStore interface {
	List(ctx context.Context, filter storageProfile.ListFilter) ([]domainProfile.Profile, error)
	Count(ctx context.Context) (int, error)
}

// AgendaStore interface for agenda queries.
type AgendaStore interface {
	GetByWeek(ctx context.Context, week int) (domainAgenda.Agenda, error)
	List(ctx context.Context) ([]domainAgenda.Agenda, error)
	ListTasks(ctx context.Context, agendaID string) ([]domainAgenda.Task, error)
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"anatwithme/internal/domain/profile"
)

// ProfileStoreForUpdate defines the store interface needed by UpdateProfile.
type ProfileStoreForUpdate interface {
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
}

// UpdateProfileInput carries input for the update-profile orchestrator.
type UpdateProfileInput struct {
	UserID   string
	FullName string
	Phone    string
	InPerson bool
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	ProfileStore ProfileStoreForUpdate
}

// ExecuteUpdateProfile updates the user-editable profile fields.
// Email and role are not touched here: email is the login identity and role
// changes go through the admin flow.
// PRE: UserID is non-empty
// POST: Profile fields updated and persisted
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) error {
	if input.UserID == "" {
		return errors.New("user id cannot be empty")
	}

	prof, err := deps.ProfileStore.GetByUserID(ctx, input.UserID)
	if err != nil {
		return errors.New("profile not found")
	}

	prof.FullName = input.FullName
	prof.Phone = input.Phone
	prof.InPerson = input.InPerson

	if err := prof.Validate(); err != nil {
		return err
	}
	if err := deps.ProfileStore.Save(ctx, prof); err != nil {
		return err
	}

	slog.Info("profile_updated", "user_id", input.UserID)
	return nil
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"anatwithme/internal/domain/account"
	"anatwithme/internal/domain/profile"
)

// AccountStoreForRemove defines the store interface needed by RemoveStudent.
type AccountStoreForRemove interface {
	Delete(ctx context.Context, id string) error
}

// ProfileStoreForRemove defines the store interface needed by RemoveStudent.
type ProfileStoreForRemove interface {
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
}

// RemoveStudentInput carries input for the remove-student orchestrator.
type RemoveStudentInput struct {
	UserID      string
	RequestedBy string
}

// RemoveStudentDeps holds dependencies for RemoveStudent.
type RemoveStudentDeps struct {
	AccountStore AccountStoreForRemove
	ProfileStore ProfileStoreForRemove
}

var (
	ErrCannotRemoveAdmin = errors.New("admin accounts cannot be removed here")
	ErrCannotRemoveSelf  = errors.New("you cannot remove your own account")
)

// ExecuteRemoveStudent deletes a student's account. The profile and
// availability marks go with it through the foreign-key cascade.
// PRE: UserID refers to a student account, RequestedBy is the acting admin
// POST: Account row deleted; dependent rows cascade
func ExecuteRemoveStudent(ctx context.Context, input RemoveStudentInput, deps RemoveStudentDeps) error {
	if input.UserID == "" {
		return errors.New("user id cannot be empty")
	}
	if input.UserID == input.RequestedBy {
		return ErrCannotRemoveSelf
	}

	prof, err := deps.ProfileStore.GetByUserID(ctx, input.UserID)
	if err != nil {
		return errors.New("student not found")
	}
	if prof.Role == account.RoleAdmin {
		return ErrCannotRemoveAdmin
	}

	if err := deps.AccountStore.Delete(ctx, input.UserID); err != nil {
		return err
	}

	slog.Info("student_removed", "user_id", input.UserID, "requested_by", input.RequestedBy)
	return nil
}

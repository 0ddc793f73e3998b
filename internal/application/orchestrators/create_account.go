package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"anatwithme/internal/domain/account"
	"anatwithme/internal/domain/profile"

	"github.com/google/uuid"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// ProfileStoreForCreate defines the store interface needed by CreateAccount.
type ProfileStoreForCreate interface {
	Save(ctx context.Context, p profile.Profile) error
}

// CreateAccountInput carries input for the orchestrator.
type CreateAccountInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	ProfileStore ProfileStoreForCreate
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ExecuteCreateAccount coordinates sign-up: it creates the credential row and
// the matching profile row in one pass. A sign-up always yields a student
// profile unless an explicit role is given by a trusted caller (seeding).
// PRE: Valid email, password >= 10 chars
// POST: Account and profile exist keyed by the same ID
// INVARIANT: Email must be unique
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (string, error) {
	if input.Email == "" {
		return "", errors.New("email cannot be empty")
	}
	if input.Password == "" {
		return "", errors.New("password cannot be empty")
	}
	role := input.Role
	if role == "" {
		role = account.RoleStudent
	}
	if !account.IsValidRole(role) {
		return "", errors.New("unknown role")
	}

	// Check if email already exists
	_, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err == nil {
		return "", ErrEmailAlreadyExists
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     input.Email,
		CreatedAt: time.Now(),
	}

	if err := acct.Validate(); err != nil {
		return "", err
	}

	// Set password (handles hashing and length validation)
	if err := acct.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return "", err
	}

	prof := profile.Profile{
		UserID:    acct.ID,
		Email:     acct.Email,
		FullName:  input.FullName,
		InPerson:  true,
		Role:      role,
		CreatedAt: acct.CreatedAt,
	}
	if err := prof.Validate(); err != nil {
		return "", err
	}
	if err := deps.ProfileStore.Save(ctx, prof); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", input.Email, "role", role)

	return acct.ID, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps CreateAccountDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}

	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		FullName: "Course Admin",
		Role:     account.RoleAdmin,
	}, deps)
	if err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"anatwithme/internal/domain/account"
	"anatwithme/internal/domain/profile"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ProfileStoreForLogin defines the store interface needed by Login.
type ProfileStoreForLogin interface {
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID string
	Email     string
	Role      string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	ProfileStore ProfileStoreForLogin
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns account info for session creation.
// The role comes from the profile row; when the profile cannot be read the
// login still succeeds with the student role, so a broken profile never
// grants admin access and never locks a student out.
// PRE: Valid email and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", input.Email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin()
		_ = deps.AccountStore.Save(ctx, acct)
		slog.Info("auth_event", "event", "login_failed", "email", input.Email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	// Successful login resets the failed-attempt counter
	acct.ResetFailedLogins()
	_ = deps.AccountStore.Save(ctx, acct)

	role := account.RoleStudent
	if prof, err := deps.ProfileStore.GetByUserID(ctx, acct.ID); err == nil {
		role = prof.Role
	} else {
		slog.Warn("auth_event", "event", "role_fallback", "account_id", acct.ID, "error", err)
	}

	slog.Info("auth_event", "event", "login_success", "email", input.Email, "role", role)

	return LoginResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      role,
	}, nil
}

package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"anatwithme/internal/adapters/email"
	"anatwithme/internal/domain/account"

	"github.com/google/uuid"
)

// ResetTokenTTL is how long a password-reset link stays valid.
const ResetTokenTTL = time.Hour

// AccountStoreForReset defines the store interface needed by the reset orchestrators.
type AccountStoreForReset interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	SaveResetToken(ctx context.Context, token account.ResetToken) error
	GetResetTokenByToken(ctx context.Context, token string) (account.ResetToken, error)
	InvalidateTokensForAccount(ctx context.Context, accountID string) error
}

// RequestPasswordResetInput carries input for the request orchestrator.
type RequestPasswordResetInput struct {
	Email   string
	BaseURL string // e.g. "http://localhost:8080"
}

// RequestPasswordResetDeps holds dependencies for RequestPasswordReset.
type RequestPasswordResetDeps struct {
	AccountStore AccountStoreForReset
	EmailSender  email.Sender
	Now          func() time.Time
}

// ExecuteRequestPasswordReset issues a reset token and emails the link.
// An unknown email is not an error: the caller shows the same message either
// way so the form cannot be used to probe which addresses have accounts.
// PRE: Email is non-empty
// POST: A single-use token exists and the email is queued, or nothing happened
func ExecuteRequestPasswordReset(ctx context.Context, input RequestPasswordResetInput, deps RequestPasswordResetDeps) error {
	if input.Email == "" {
		return errors.New("email cannot be empty")
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		slog.Info("auth_event", "event", "reset_requested", "email", input.Email, "reason", "not_found")
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return err
	}
	token := account.ResetToken{
		ID:        uuid.New().String(),
		AccountID: acct.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: now().Add(ResetTokenTTL),
		CreatedAt: now(),
	}
	if err := deps.AccountStore.SaveResetToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/update-password?token=%s", input.BaseURL, token.Token)
	if _, err := deps.EmailSender.Send(ctx, email.BuildPasswordReset(acct.Email, link)); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "reset_requested", "account_id", acct.ID)
	return nil
}

// ResetPasswordInput carries input for the redeem orchestrator.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	AccountStore AccountStoreForReset
	Now          func() time.Time
}

// ExecuteResetPassword redeems a reset token and sets the new password.
// PRE: Token and NewPassword are non-empty
// POST: Password updated, all tokens for the account invalidated, lock cleared
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) error {
	if input.Token == "" || input.NewPassword == "" {
		return account.ErrTokenInvalid
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	token, err := deps.AccountStore.GetResetTokenByToken(ctx, input.Token)
	if err != nil {
		return account.ErrTokenInvalid
	}
	if token.Used {
		return account.ErrTokenInvalid
	}
	if token.IsExpired(now()) {
		return account.ErrTokenExpired
	}

	acct, err := deps.AccountStore.GetByID(ctx, token.AccountID)
	if err != nil {
		return account.ErrTokenInvalid
	}

	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	// A successful reset also clears any lockout.
	acct.ResetFailedLogins()

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	if err := deps.AccountStore.InvalidateTokensForAccount(ctx, acct.ID); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "password_reset", "account_id", acct.ID)
	return nil
}

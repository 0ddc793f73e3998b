package orchestrators

import (
	"context"
	"testing"
	"time"

	"anatwithme/internal/adapters/email"
	"anatwithme/internal/domain/account"
)

// mockEmailSender records sends.
type mockEmailSender struct {
	sent []email.SendRequest
}

func (m *mockEmailSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

var resetFixedTime = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func resetFixedNow() time.Time { return resetFixedTime }

func TestExecuteRequestPasswordReset_IssuesTokenAndEmail(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	seedAccount(t, accounts, profiles, "s@example.com", "correct-horse-battery", account.RoleStudent)
	sender := &mockEmailSender{}

	err := ExecuteRequestPasswordReset(context.Background(), RequestPasswordResetInput{
		Email:   "s@example.com",
		BaseURL: "http://localhost:8080",
	}, RequestPasswordResetDeps{AccountStore: accounts, EmailSender: sender, Now: resetFixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts.tokens) != 1 {
		t.Fatalf("tokens = %d, want 1", len(accounts.tokens))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(sender.sent))
	}
	for _, tok := range accounts.tokens {
		if !tok.ExpiresAt.Equal(resetFixedTime.Add(ResetTokenTTL)) {
			t.Errorf("ExpiresAt = %v, want %v", tok.ExpiresAt, resetFixedTime.Add(ResetTokenTTL))
		}
	}
}

// TestExecuteRequestPasswordReset_UnknownEmailIsSilent verifies the form cannot
// be used to probe which addresses have accounts.
func TestExecuteRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	accounts := newMockAccountStore()
	sender := &mockEmailSender{}

	err := ExecuteRequestPasswordReset(context.Background(), RequestPasswordResetInput{
		Email:   "ghost@example.com",
		BaseURL: "http://localhost:8080",
	}, RequestPasswordResetDeps{AccountStore: accounts, EmailSender: sender})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Error("no email expected for unknown address")
	}
	if len(accounts.tokens) != 0 {
		t.Error("no token expected for unknown address")
	}
}

func TestExecuteResetPassword_Succeeds(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	a := seedAccount(t, accounts, profiles, "s@example.com", "old-password-long", account.RoleStudent)
	accounts.tokens["tok-1"] = account.ResetToken{
		ID: "rt-1", AccountID: a.ID, Token: "tok-1",
		ExpiresAt: resetFixedTime.Add(time.Hour), CreatedAt: resetFixedTime,
	}

	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		Token:       "tok-1",
		NewPassword: "new-password-long",
	}, ResetPasswordDeps{AccountStore: accounts, Now: resetFixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := accounts.accounts["s@example.com"]
	if err := updated.CheckPassword("new-password-long"); err != nil {
		t.Error("new password should verify")
	}
	if err := updated.CheckPassword("old-password-long"); err == nil {
		t.Error("old password should no longer verify")
	}
	if !accounts.tokens["tok-1"].Used {
		t.Error("token should be invalidated after use")
	}
}

func TestExecuteResetPassword_ExpiredToken(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	a := seedAccount(t, accounts, profiles, "s@example.com", "old-password-long", account.RoleStudent)
	accounts.tokens["tok-old"] = account.ResetToken{
		ID: "rt-1", AccountID: a.ID, Token: "tok-old",
		ExpiresAt: resetFixedTime.Add(-time.Minute), CreatedAt: resetFixedTime.Add(-2 * time.Hour),
	}

	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		Token:       "tok-old",
		NewPassword: "new-password-long",
	}, ResetPasswordDeps{AccountStore: accounts, Now: resetFixedNow})
	if err != account.ErrTokenExpired {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestExecuteResetPassword_UsedToken(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	a := seedAccount(t, accounts, profiles, "s@example.com", "old-password-long", account.RoleStudent)
	accounts.tokens["tok-used"] = account.ResetToken{
		ID: "rt-1", AccountID: a.ID, Token: "tok-used", Used: true,
		ExpiresAt: resetFixedTime.Add(time.Hour), CreatedAt: resetFixedTime,
	}

	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		Token:       "tok-used",
		NewPassword: "new-password-long",
	}, ResetPasswordDeps{AccountStore: accounts, Now: resetFixedNow})
	if err != account.ErrTokenInvalid {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestExecuteResetPassword_UnknownToken(t *testing.T) {
	err := ExecuteResetPassword(context.Background(), ResetPasswordInput{
		Token:       "nope",
		NewPassword: "new-password-long",
	}, ResetPasswordDeps{AccountStore: newMockAccountStore(), Now: resetFixedNow})
	if err != account.ErrTokenInvalid {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

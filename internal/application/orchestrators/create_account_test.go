package orchestrators

import (
	"context"
	"testing"

	"anatwithme/internal/domain/account"
)

func TestExecuteCreateAccount_SignUpCreatesStudent(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()

	id, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "new@example.com",
		Password: "long-enough-password",
		FullName: "New Student",
	}, CreateAccountDeps{AccountStore: accounts, ProfileStore: profiles})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prof, ok := profiles.profiles[id]
	if !ok {
		t.Fatal("expected a profile keyed by the account ID")
	}
	if prof.Role != account.RoleStudent {
		t.Errorf("Role = %q, want student by default", prof.Role)
	}
	if prof.FullName != "New Student" {
		t.Errorf("FullName = %q", prof.FullName)
	}
}

func TestExecuteCreateAccount_DuplicateEmail(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	seedAccount(t, accounts, profiles, "taken@example.com", "long-enough-password", account.RoleStudent)

	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "taken@example.com",
		Password: "long-enough-password",
	}, CreateAccountDeps{AccountStore: accounts, ProfileStore: profiles})
	if err != ErrEmailAlreadyExists {
		t.Errorf("err = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestExecuteCreateAccount_ShortPassword(t *testing.T) {
	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "short@example.com",
		Password: "tiny",
	}, CreateAccountDeps{AccountStore: newMockAccountStore(), ProfileStore: newMockProfileStore()})
	if err != account.ErrPasswordTooShort {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestExecuteCreateAccount_UnknownRole(t *testing.T) {
	_, err := ExecuteCreateAccount(context.Background(), CreateAccountInput{
		Email:    "x@example.com",
		Password: "long-enough-password",
		Role:     "superuser",
	}, CreateAccountDeps{AccountStore: newMockAccountStore(), ProfileStore: newMockProfileStore()})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestExecuteSeedAdmin_FreshDatabase(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	deps := CreateAccountDeps{AccountStore: accounts, ProfileStore: profiles}

	if err := ExecuteSeedAdmin(context.Background(), deps, "admin@example.com", "seed-admin-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := accounts.accounts["admin@example.com"]
	if !ok {
		t.Fatal("expected seeded admin account")
	}
	if profiles.profiles[a.ID].Role != account.RoleAdmin {
		t.Errorf("Role = %q, want admin", profiles.profiles[a.ID].Role)
	}
}

func TestExecuteSeedAdmin_SkipsWhenAccountsExist(t *testing.T) {
	accounts := newMockAccountStore()
	profiles := newMockProfileStore()
	seedAccount(t, accounts, profiles, "existing@example.com", "long-enough-password", account.RoleStudent)
	deps := CreateAccountDeps{AccountStore: accounts, ProfileStore: profiles}

	if err := ExecuteSeedAdmin(context.Background(), deps, "admin@example.com", "seed-admin-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := accounts.accounts["admin@example.com"]; ok {
		t.Error("seeding must be skipped when accounts already exist")
	}
}

package profile

import (
	"errors"
	"strings"
	"time"

	"anatwithme/internal/domain/account"
)

// Max length constants for user-editable fields.
const (
	MaxFullNameLength = 120
	MaxPhoneLength    = 32
)

// Domain errors
var (
	ErrEmptyUserID    = errors.New("user ID cannot be empty")
	ErrInvalidRole    = errors.New("role must be one of: student, admin")
	ErrNameTooLong    = errors.New("full name cannot exceed 120 characters")
	ErrPhoneTooLong   = errors.New("phone cannot exceed 32 characters")
)

// Profile holds display fields and the authoritative role for an account.
// UserID is the owning account's ID. The routing gate reads Role and treats
// it as immutable for the duration of a request.
type Profile struct {
	UserID    string
	Email     string
	FullName  string
	Phone     string
	InPerson  bool // prefers meeting in person over virtual sessions
	Role      string
	CreatedAt time.Time
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUserID
	}
	if !account.IsValidRole(p.Role) {
		return ErrInvalidRole
	}
	if len(p.FullName) > MaxFullNameLength {
		return ErrNameTooLong
	}
	if len(p.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}

// IsStudent returns true if the profile has the student role.
// INVARIANT: Profile fields are not mutated
func (p *Profile) IsStudent() bool {
	return p.Role == account.RoleStudent
}

// IsAdmin returns true if the profile has the admin role.
// INVARIANT: Profile fields are not mutated
func (p *Profile) IsAdmin() bool {
	return p.Role == account.RoleAdmin
}

// DisplayName returns the full name, falling back to the email address.
// INVARIANT: Profile fields are not mutated
func (p *Profile) DisplayName() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return p.Email
}

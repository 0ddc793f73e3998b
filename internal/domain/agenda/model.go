package agenda

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxLinkLength        = 2048
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrTitleTooLong    = errors.New("title cannot exceed 200 characters")
	ErrInvalidWeek     = errors.New("week must be 1 or greater")
	ErrEmptyAgendaID   = errors.New("agenda ID cannot be empty")
	ErrLinkTooLong     = errors.New("link cannot exceed 2048 characters")
	ErrNegativeOrder   = errors.New("task order cannot be negative")
	ErrDescriptionLong = errors.New("description cannot exceed 5000 characters")
)

// Agenda is one week's study plan. Description is markdown, rendered at
// display time.
type Agenda struct {
	ID          string
	Title       string
	Description string
	Week        int
	CreatedAt   time.Time
}

// Task is a single item of work under an agenda. Order controls display
// position within the agenda; ties fall back to creation order.
type Task struct {
	ID          string
	AgendaID    string
	Title       string
	Description string
	Link        string
	Order       int
	CreatedAt   time.Time
}

// Validate checks if the Agenda has valid data.
// PRE: Agenda struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Agenda) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(a.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if a.Week < 1 {
		return ErrInvalidWeek
	}
	return nil
}

// Validate checks if the Task has valid data.
// PRE: Task struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Task) Validate() error {
	if strings.TrimSpace(t.AgendaID) == "" {
		return ErrEmptyAgendaID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(t.Description) > MaxDescriptionLength {
		return ErrDescriptionLong
	}
	if len(t.Link) > MaxLinkLength {
		return ErrLinkTooLong
	}
	if t.Order < 0 {
		return ErrNegativeOrder
	}
	return nil
}

package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"anatwithme/internal/domain/agenda"

	"github.com/google/uuid"
)

// AgendaStoreForOrchestrator defines the store interface needed by the agenda orchestrators.
type AgendaStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (agenda.Agenda, error)
	GetByWeek(ctx context.Context, week int) (agenda.Agenda, error)
	Save(ctx context.Context, a agenda.Agenda) error
	Delete(ctx context.Context, id string) error
	SaveTask(ctx context.Context, t agenda.Task) error
	DeleteTask(ctx context.Context, id string) error
}

// AgendaDeps holds dependencies for the agenda orchestrators.
type AgendaDeps struct {
	AgendaStore AgendaStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

func (d AgendaDeps) generateID() string {
	if d.GenerateID != nil {
		return d.GenerateID()
	}
	return uuid.New().String()
}

func (d AgendaDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

var ErrWeekTaken = errors.New("an agenda for this week already exists")

// CreateAgendaInput carries input for creating an agenda.
type CreateAgendaInput struct {
	Title       string
	Description string
	Week        int
}

// ExecuteCreateAgenda creates the agenda for a course week.
// PRE: Valid title and week
// POST: Agenda persisted; at most one agenda per week
func ExecuteCreateAgenda(ctx context.Context, input CreateAgendaInput, deps AgendaDeps) (agenda.Agenda, error) {
	if _, err := deps.AgendaStore.GetByWeek(ctx, input.Week); err == nil {
		return agenda.Agenda{}, ErrWeekTaken
	}

	a := agenda.Agenda{
		ID:          deps.generateID(),
		Title:       input.Title,
		Description: input.Description,
		Week:        input.Week,
		CreatedAt:   deps.now(),
	}
	if err := a.Validate(); err != nil {
		return agenda.Agenda{}, err
	}
	if err := deps.AgendaStore.Save(ctx, a); err != nil {
		return agenda.Agenda{}, err
	}

	slog.Info("agenda_created", "agenda_id", a.ID, "week", a.Week)
	return a, nil
}

// UpdateAgendaInput carries input for updating an agenda.
type UpdateAgendaInput struct {
	ID          string
	Title       string
	Description string
}

// ExecuteUpdateAgenda updates an agenda's title and description.
// The week is fixed at creation; moving content between weeks means
// creating a new agenda.
func ExecuteUpdateAgenda(ctx context.Context, input UpdateAgendaInput, deps AgendaDeps) error {
	a, err := deps.AgendaStore.GetByID(ctx, input.ID)
	if err != nil {
		return errors.New("agenda not found")
	}

	a.Title = input.Title
	a.Description = input.Description

	if err := a.Validate(); err != nil {
		return err
	}
	return deps.AgendaStore.Save(ctx, a)
}

// ExecuteDeleteAgenda removes an agenda and, via cascade, its tasks.
// PRE: id is non-empty
func ExecuteDeleteAgenda(ctx context.Context, id string, deps AgendaDeps) error {
	if id == "" {
		return errors.New("agenda id cannot be empty")
	}
	if err := deps.AgendaStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("agenda_deleted", "agenda_id", id)
	return nil
}

// CreateTaskInput carries input for adding a task to an agenda.
type CreateTaskInput struct {
	AgendaID    string
	Title       string
	Description string
	Link        string
	Order       int
}

// ExecuteCreateTask adds a task to an existing agenda.
// PRE: AgendaID refers to an existing agenda
// POST: Task persisted under the agenda
func ExecuteCreateTask(ctx context.Context, input CreateTaskInput, deps AgendaDeps) (agenda.Task, error) {
	if _, err := deps.AgendaStore.GetByID(ctx, input.AgendaID); err != nil {
		return agenda.Task{}, errors.New("agenda not found")
	}

	t := agenda.Task{
		ID:          deps.generateID(),
		AgendaID:    input.AgendaID,
		Title:       input.Title,
		Description: input.Description,
		Link:        input.Link,
		Order:       input.Order,
		CreatedAt:   deps.now(),
	}
	if err := t.Validate(); err != nil {
		return agenda.Task{}, err
	}
	if err := deps.AgendaStore.SaveTask(ctx, t); err != nil {
		return agenda.Task{}, err
	}
	return t, nil
}

// ExecuteDeleteTask removes a task.
// PRE: id is non-empty
func ExecuteDeleteTask(ctx context.Context, id string, deps AgendaDeps) error {
	if id == "" {
		return errors.New("task id cannot be empty")
	}
	return deps.AgendaStore.DeleteTask(ctx, id)
}

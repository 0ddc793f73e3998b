package agenda

import (
	"context"

	domain "anatwithme/internal/domain/agenda"
)

// Store persists Agenda and Task state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Agenda, error)
	GetByWeek(ctx context.Context, week int) (domain.Agenda, error)
	Save(ctx context.Context, value domain.Agenda) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Agenda, error)
	ListTasks(ctx context.Context, agendaID string) ([]domain.Task, error)
	SaveTask(ctx context.Context, value domain.Task) error
	DeleteTask(ctx context.Context, id string) error
}

package projections

import (
	"context"

	domainAgenda "anatwithme/internal/domain/agenda"
)

// GetWeekAgendaQuery carries query parameters.
type GetWeekAgendaQuery struct {
	Week int
}

// GetWeekAgendaResult carries the query result.
type GetWeekAgendaResult struct {
	Found  bool
	Agenda domainAgenda.Agenda
	Tasks  []domainAgenda.Task
}

// GetWeekAgendaDeps holds dependencies for GetWeekAgenda.
type GetWeekAgendaDeps struct {
	AgendaStore AgendaStore
}

// QueryGetWeekAgenda retrieves the agenda and tasks for a course week.
// A week with no agenda is not an error; Found is false and the page renders
// an empty state.
// PRE: Week >= 1
func QueryGetWeekAgenda(ctx context.Context, query GetWeekAgendaQuery, deps GetWeekAgendaDeps) (GetWeekAgendaResult, error) {
	a, err := deps.AgendaStore.GetByWeek(ctx, query.Week)
	if err != nil {
		return GetWeekAgendaResult{}, nil
	}

	tasks, err := deps.AgendaStore.ListTasks(ctx, a.ID)
	if err != nil {
		return GetWeekAgendaResult{}, err
	}

	return GetWeekAgendaResult{
		Found:  true,
		Agenda: a,
		Tasks:  tasks,
	}, nil
}

// GetAllAgendasResult carries every agenda with its tasks, for the admin view.
type GetAllAgendasResult struct {
	Agendas []GetWeekAgendaResult
}

// QueryGetAllAgendas retrieves all agendas ordered by week, with tasks.
func QueryGetAllAgendas(ctx context.Context, deps GetWeekAgendaDeps) (GetAllAgendasResult, error) {
	agendas, err := deps.AgendaStore.List(ctx)
	if err != nil {
		return GetAllAgendasResult{}, err
	}

	var result GetAllAgendasResult
	for _, a := range agendas {
		tasks, err := deps.AgendaStore.ListTasks(ctx, a.ID)
		if err != nil {
			return GetAllAgendasResult{}, err
		}
		result.Agendas = append(result.Agendas, GetWeekAgendaResult{
			Found:  true,
			Agenda: a,
			Tasks:  tasks,
		})
	}
	return result, nil
}

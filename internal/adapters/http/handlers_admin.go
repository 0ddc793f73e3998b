package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"anatwithme/internal/application/orchestrators"
	"anatwithme/internal/application/projections"
)

// handleAdminPage handles GET /admin: the coordinator dashboard.
func handleAdminPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	roster, err := projections.QueryGetRoster(r.Context(), projections.GetRosterDeps{
		ProfileStore:      stores.ProfileStore,
		AvailabilityStore: stores.AvailabilityStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	marked := 0
	for _, s := range roster.Students {
		if s.HasMarkedGrid {
			marked++
		}
	}

	renderTemplate(w, r, "admin_dashboard.html", map[string]any{
		"TotalStudents":  roster.Total,
		"MarkedStudents": marked,
	})
}

// handleAdminRoster handles GET /admin/roster.
func handleAdminRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := projections.QueryGetRoster(r.Context(), projections.GetRosterDeps{
		ProfileStore:      stores.ProfileStore,
		AvailabilityStore: stores.AvailabilityStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "admin_roster.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Students":  result.Students,
			"Total":     result.Total,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleRemoveStudent handles POST /api/admin/students/remove.
func handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	input := orchestrators.RemoveStudentInput{RequestedBy: sess.AccountID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.UserID = r.FormValue("UserID")
	} else {
		var body struct{ UserID string }
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		input.UserID = body.UserID
	}

	deps := orchestrators.RemoveStudentDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
	}
	if err := orchestrators.ExecuteRemoveStudent(r.Context(), input, deps); err != nil {
		internalError(w, err)
		return
	}

	// Stale cookies for the removed account must stop resolving immediately.
	sessions.DeleteForAccount(input.UserID)

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/roster", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminAgendasPage handles GET /admin/agendas.
func handleAdminAgendasPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	result, err := projections.QueryGetAllAgendas(r.Context(),
		projections.GetWeekAgendaDeps{AgendaStore: stores.AgendaStore})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "admin_agendas.html", map[string]any{
		"CSRFToken": csrf.Token(r),
		"Agendas":   result.Agendas,
	})
}

// handleAgendas handles GET (list) and POST (create) for /api/admin/agendas.
func handleAgendas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	if r.Method == "GET" {
		result, err := projections.QueryGetAllAgendas(ctx,
			projections.GetWeekAgendaDeps{AgendaStore: stores.AgendaStore})
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result.Agendas)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.CreateAgendaInput{}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			week, err := strconv.Atoi(r.FormValue("Week"))
			if err != nil {
				http.Error(w, "Invalid week", http.StatusBadRequest)
				return
			}
			input.Week = week
			input.Title = r.FormValue("Title")
			input.Description = r.FormValue("Description")
		} else {
			if err := strictDecode(r, &input); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
		}

		created, err := orchestrators.ExecuteCreateAgenda(ctx, input, agendaDeps())
		if err != nil {
			if err == orchestrators.ErrWeekTaken {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/admin/agendas", http.StatusSeeOther)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleAgendaUpdate handles POST /api/admin/agendas/update.
func handleAgendaUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	input := orchestrators.UpdateAgendaInput{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.ID = r.FormValue("ID")
		input.Title = r.FormValue("Title")
		input.Description = r.FormValue("Description")
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	if err := orchestrators.ExecuteUpdateAgenda(r.Context(), input, agendaDeps()); err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/agendas", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAgendaDelete handles POST /api/admin/agendas/delete.
func handleAgendaDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id, ok := readID(w, r)
	if !ok {
		return
	}

	if err := orchestrators.ExecuteDeleteAgenda(r.Context(), id, agendaDeps()); err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/agendas", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTasks handles POST (create) for /api/admin/tasks.
func handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	input := orchestrators.CreateTaskInput{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input.AgendaID = r.FormValue("AgendaID")
		input.Title = r.FormValue("Title")
		input.Description = r.FormValue("Description")
		input.Link = r.FormValue("Link")
		if raw := r.FormValue("Order"); raw != "" {
			order, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "Invalid order", http.StatusBadRequest)
				return
			}
			input.Order = order
		}
	} else {
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	created, err := orchestrators.ExecuteCreateTask(r.Context(), input, agendaDeps())
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/agendas", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// handleTaskDelete handles POST /api/admin/tasks/delete.
func handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	id, ok := readID(w, r)
	if !ok {
		return
	}

	if err := orchestrators.ExecuteDeleteTask(r.Context(), id, agendaDeps()); err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/admin/agendas", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminPerf handles GET /api/admin/perf: request and query timings
// captured by the in-process collector.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	window := time.Hour
	if raw := r.URL.Query().Get("minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			http.Error(w, "Invalid minutes", http.StatusBadRequest)
			return
		}
		window = time.Duration(minutes) * time.Minute
	}

	snapshot := perfCollector.Snapshot(timeNow().Add(-window), 10)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// readID extracts an ID from either a form post or a JSON body.
func readID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return "", false
		}
		id := r.FormValue("ID")
		if id == "" {
			http.Error(w, "Missing ID", http.StatusBadRequest)
			return "", false
		}
		return id, true
	}
	var body struct{ ID string }
	if err := strictDecode(r, &body); err != nil || body.ID == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return "", false
	}
	return body.ID, true
}

// agendaDeps returns the orchestrator deps backed by the live stores.
func agendaDeps() orchestrators.AgendaDeps {
	return orchestrators.AgendaDeps{
		AgendaStore: stores.AgendaStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

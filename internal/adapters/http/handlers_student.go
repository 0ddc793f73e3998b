package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"

	"anatwithme/internal/application/orchestrators"
	"anatwithme/internal/application/projections"
)

// handleStudentPage handles GET /student: the weekly availability grid.
func handleStudentPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	result, err := projections.QueryGetAvailabilityGrid(r.Context(),
		projections.GetAvailabilityGridQuery{UserID: sess.AccountID},
		projections.GetAvailabilityGridDeps{
			TimeSlotStore:     stores.TimeSlotStore,
			AvailabilityStore: stores.AvailabilityStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "student_grid.html", map[string]any{
			"CSRFToken":     csrf.Token(r),
			"Days":          result.Days,
			"Rows":          result.Rows,
			"SelectedCount": result.SelectedCount,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleToggleAvailability handles POST /api/availability/toggle.
// The body carries a grid coordinate; the response reports the cell's state
// after the toggle so the page can reconcile what it shows.
func handleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	input := orchestrators.ToggleAvailabilityInput{UserID: sess.AccountID}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		day, err := strconv.Atoi(r.FormValue("Day"))
		if err != nil {
			http.Error(w, "Invalid day", http.StatusBadRequest)
			return
		}
		position, err := strconv.Atoi(r.FormValue("Position"))
		if err != nil {
			http.Error(w, "Invalid position", http.StatusBadRequest)
			return
		}
		input.Day = day
		input.Position = position
	} else {
		var body struct {
			Day      int
			Position int
		}
		if err := strictDecode(r, &body); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		input.Day = body.Day
		input.Position = body.Position
	}

	result, err := orchestrators.ExecuteToggleAvailability(r.Context(), input,
		orchestrators.ToggleAvailabilityDeps{
			TimeSlotStore:     stores.TimeSlotStore,
			AvailabilityStore: stores.AvailabilityStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		http.Redirect(w, r, "/student", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// handleStudentProfile handles GET (form) and POST (update) for /student/profile.
func handleStudentProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == "GET" {
		prof, err := stores.ProfileStore.GetByUserID(r.Context(), sess.AccountID)
		if err != nil {
			internalError(w, err)
			return
		}
		if isHTMLRequest(r) {
			renderTemplate(w, r, "student_profile.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Profile":   prof,
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(prof)
		return
	}

	if r.Method == "POST" {
		input := orchestrators.UpdateProfileInput{UserID: sess.AccountID}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Invalid form submission", http.StatusBadRequest)
				return
			}
			input.FullName = r.FormValue("FullName")
			input.Phone = r.FormValue("Phone")
			input.InPerson = r.FormValue("InPerson") == "on" || r.FormValue("InPerson") == "true"
		} else {
			var body struct {
				FullName string
				Phone    string
				InPerson bool
			}
			if err := strictDecode(r, &body); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			input.FullName = body.FullName
			input.Phone = body.Phone
			input.InPerson = body.InPerson
		}

		deps := orchestrators.UpdateProfileDeps{ProfileStore: stores.ProfileStore}
		if err := orchestrators.ExecuteUpdateProfile(r.Context(), input, deps); err != nil {
			internalError(w, err)
			return
		}

		if isHTMLRequest(r) {
			http.Redirect(w, r, "/student/profile", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleStudentAgenda handles GET /student/agenda?week=N.
// Without a week parameter it shows week 1.
func handleStudentAgenda(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireSession(w, r); !ok {
		return
	}

	week := 1
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid week", http.StatusBadRequest)
			return
		}
		week = parsed
	}

	result, err := projections.QueryGetWeekAgenda(r.Context(),
		projections.GetWeekAgendaQuery{Week: week},
		projections.GetWeekAgendaDeps{AgendaStore: stores.AgendaStore})
	if err != nil {
		internalError(w, err)
		return
	}

	if isHTMLRequest(r) {
		renderTemplate(w, r, "student_agenda.html", map[string]any{
			"Week":   week,
			"Found":  result.Found,
			"Agenda": result.Agenda,
			"Tasks":  result.Tasks,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

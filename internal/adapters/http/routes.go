package web

import "net/http"

// registerRoutes attaches every application route to the mux.
// Page routes render HTML; /api routes speak JSON (and accept form posts
// from the templates). Access control beyond the routing gate happens in
// the handlers themselves.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/sign-up", handleSignUp)
	mux.HandleFunc("/logout", handleLogout)
	mux.HandleFunc("/forgot-password", handleForgotPassword)
	mux.HandleFunc("/update-password", handleUpdatePassword)
	mux.HandleFunc("/change-password", handleChangePassword)

	// Student pages
	mux.HandleFunc("/student", handleStudentPage)
	mux.HandleFunc("/student/profile", handleStudentProfile)
	mux.HandleFunc("/student/agenda", handleStudentAgenda)

	// Admin pages
	mux.HandleFunc("/admin", handleAdminPage)
	mux.HandleFunc("/admin/roster", handleAdminRoster)
	mux.HandleFunc("/admin/agendas", handleAdminAgendasPage)

	// API
	mux.HandleFunc("/api/availability/toggle", handleToggleAvailability)
	mux.HandleFunc("/api/admin/students/remove", handleRemoveStudent)
	mux.HandleFunc("/api/admin/agendas", handleAgendas)
	mux.HandleFunc("/api/admin/agendas/update", handleAgendaUpdate)
	mux.HandleFunc("/api/admin/agendas/delete", handleAgendaDelete)
	mux.HandleFunc("/api/admin/tasks", handleTasks)
	mux.HandleFunc("/api/admin/tasks/delete", handleTaskDelete)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}

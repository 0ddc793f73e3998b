package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainAccount "anatwithme/internal/domain/account"
)

// FallbackRole is assumed whenever a role cannot be resolved for an
// authenticated visitor. Falling back to the least-privileged role means a
// broken profile lookup can never widen access, only narrow it.
const FallbackRole = domainAccount.RoleStudent

// RoleResolver resolves the role for an authenticated account. Implementations
// return an error when the role cannot be determined; the gate then applies
// FallbackRole.
type RoleResolver interface {
	ResolveRole(ctx context.Context, accountID string) (string, error)
}

// Decide evaluates the routing rules for a single request and returns the
// redirect target, or "" when the request should pass through.
//
// The rules are ordered; the first match wins:
//  1. the root path always passes
//  2. unauthenticated visitors are sent to /login from any protected area
//  3. authenticated visitors on the auth pages are sent to their home area
//  4. authenticated non-admins are kept out of the admin area
//  5. everything else passes
//
// PRE: role is meaningful only when authenticated is true
// POST: returns "" or an absolute path to redirect to
func Decide(path string, authenticated bool, role string) string {
	if path == "/" {
		return ""
	}
	protected := strings.HasPrefix(path, "/student") || strings.HasPrefix(path, "/admin")
	if !authenticated && protected {
		return "/login"
	}
	authPage := strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/sign-up")
	if authenticated && authPage {
		if role == domainAccount.RoleAdmin {
			return "/admin"
		}
		return "/student"
	}
	if authenticated && role != domainAccount.RoleAdmin && strings.HasPrefix(path, "/admin") {
		return "/student"
	}
	return ""
}

// Gate returns middleware that routes each request through Decide.
//
// Identity comes from the session in the request context: a request without a
// valid session is unauthenticated, no matter why the session is missing. The
// role is re-resolved from storage on every gated request so a role change
// takes effect without waiting for the session to expire; when resolution
// fails the gate logs the failure and continues with FallbackRole.
func Gate(roles RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Rule 1: the root path always passes, so skip the role lookup.
			if r.URL.Path == "/" {
				next.ServeHTTP(w, r)
				return
			}
			session, authenticated := GetSessionFromContext(r.Context())
			role := ""
			if authenticated {
				role = FallbackRole
				resolved, err := roles.ResolveRole(r.Context(), session.AccountID)
				if err != nil {
					slog.Warn("gate_role_fallback",
						"account_id", session.AccountID,
						"error", err)
				} else {
					role = resolved
				}
			}
			if target := Decide(r.URL.Path, authenticated, role); target != "" {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Package identity resolves the calling user and role for commentary
// requests. The service consumes only a {userId, role} pair; login,
// token issuance, and password handling live in an external system.
package identity

import (
	"context"
	"net/http"
	"strings"
)

// Role represents a user's access level for commentary operations.
type Role string

const (
	// RoleUser has read-only access: no lifecycle transitions.
	RoleUser Role = "USER"

	// RoleContributor owns commentary entries and may submit their own
	// drafts for review.
	RoleContributor Role = "CONTRIBUTOR"

	// RoleAdmin may act on any entry regardless of author.
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a raw role string. Returns false for
// unrecognized values.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleContributor:
		return RoleContributor, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Caller identifies the requesting user. A zero Caller is anonymous.
type Caller struct {
	ID   string
	Role Role
}

// Anonymous reports whether no authenticated user is attached to the
// request.
func (c Caller) Anonymous() bool {
	return c.ID == ""
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TODO(production): the X-User-* headers are for development and
// testing. Production deployments should inject a CallerExtractor that
// reads the upstream auth system's identity (OIDC claims, session
// lookup) via the server option.

// Header names consumed by the default extractor.
const (
	UserIDHeader = "X-User-Id"
	RoleHeader   = "X-User-Role"
)

// CallerExtractor is a function that extracts a Caller from an HTTP
// request. The default extractor reads the X-User-Id and X-User-Role
// headers.
type CallerExtractor func(r *http.Request) Caller

// DefaultCallerExtractor reads the caller from request headers.
// A request without X-User-Id is anonymous; a user id with a missing or
// unrecognized role defaults to RoleUser.
func DefaultCallerExtractor(r *http.Request) Caller {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return Caller{}
	}
	role, ok := ParseRole(r.Header.Get(RoleHeader))
	if !ok {
		role = RoleUser
	}
	return Caller{ID: id, Role: role}
}

type contextKey struct{}

func contextWithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// WithCaller stores the caller on the request context.
func WithCaller(r *http.Request, c Caller) *http.Request {
	return r.WithContext(contextWithCaller(r.Context(), c))
}

// FromRequest returns the caller previously attached by Middleware, or
// an anonymous caller.
func FromRequest(r *http.Request) Caller {
	if c, ok := r.Context().Value(contextKey{}).(Caller); ok {
		return c
	}
	return Caller{}
}

// Middleware resolves the caller once per request and attaches it to
// the context.
func Middleware(extractor CallerExtractor) func(http.Handler) http.Handler {
	if extractor == nil {
		extractor = DefaultCallerExtractor
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, WithCaller(r, extractor(r)))
		})
	}
}

// RequireRole returns middleware that enforces a minimum role.
// If the caller's role is insufficient, it responds with 403 Forbidden.
func RequireRole(required Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := FromRequest(r)
			if !hasRole(caller, required) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","message":"insufficient permissions"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hasRole checks whether the caller satisfies the required role.
// Admin can do everything a contributor can; contributors can do
// everything a user can.
func hasRole(c Caller, required Role) bool {
	switch required {
	case RoleUser:
		return !c.Anonymous()
	case RoleContributor:
		return c.Role == RoleContributor || c.Role == RoleAdmin
	case RoleAdmin:
		return c.Role == RoleAdmin
	default:
		return false
	}
}

package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"USER", RoleUser, true},
		{"CONTRIBUTOR", RoleContributor, true},
		{"ADMIN", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" contributor ", RoleContributor, true},
		{"superuser", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestDefaultCallerExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, DefaultCallerExtractor(req).Anonymous())

	req.Header.Set(UserIDHeader, "alice")
	c := DefaultCallerExtractor(req)
	assert.Equal(t, "alice", c.ID)
	assert.Equal(t, RoleUser, c.Role)

	req.Header.Set(RoleHeader, "ADMIN")
	c = DefaultCallerExtractor(req)
	assert.Equal(t, RoleAdmin, c.Role)
	assert.True(t, c.IsAdmin())

	// Unrecognized role falls back to USER rather than failing the
	// request.
	req.Header.Set(RoleHeader, "wizard")
	assert.Equal(t, RoleUser, DefaultCallerExtractor(req).Role)
}

func TestMiddleware_AttachesCaller(t *testing.T) {
	var got Caller
	handler := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "bob")
	req.Header.Set(RoleHeader, "CONTRIBUTOR")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, Caller{ID: "bob", Role: RoleContributor}, got)
}

func TestMiddleware_CustomExtractor(t *testing.T) {
	extractor := func(r *http.Request) Caller {
		return Caller{ID: "from-session", Role: RoleAdmin}
	}

	var got Caller
	handler := Middleware(extractor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromRequest(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "from-session", got.ID)
}

func TestFromRequest_NoCaller(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, FromRequest(req).Anonymous())
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		caller   Caller
		required Role
		wantCode int
	}{
		{"admin passes admin gate", Caller{ID: "a", Role: RoleAdmin}, RoleAdmin, http.StatusOK},
		{"contributor fails admin gate", Caller{ID: "c", Role: RoleContributor}, RoleAdmin, http.StatusForbidden},
		{"user fails admin gate", Caller{ID: "u", Role: RoleUser}, RoleAdmin, http.StatusForbidden},
		{"anonymous fails admin gate", Caller{}, RoleAdmin, http.StatusForbidden},
		{"admin passes contributor gate", Caller{ID: "a", Role: RoleAdmin}, RoleContributor, http.StatusOK},
		{"contributor passes contributor gate", Caller{ID: "c", Role: RoleContributor}, RoleContributor, http.StatusOK},
		{"user fails contributor gate", Caller{ID: "u", Role: RoleUser}, RoleContributor, http.StatusForbidden},
		{"any authenticated passes user gate", Caller{ID: "u", Role: RoleUser}, RoleUser, http.StatusOK},
		{"anonymous fails user gate", Caller{}, RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireRole(tt.required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = WithCaller(req, tt.caller)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

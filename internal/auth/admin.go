package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminConfig holds admin configuration.
type AdminConfig struct {
	token string
}

// NewAdminConfig creates admin config from a shared token. An empty token
// leaves admin routes open.
func NewAdminConfig(token string) *AdminConfig {
	return &AdminConfig{token: strings.TrimSpace(token)}
}

// Enabled reports whether a token is required.
func (c *AdminConfig) Enabled() bool {
	return c != nil && c.token != ""
}

// IsAdmin checks a request's bearer token.
func (c *AdminConfig) IsAdmin(r *http.Request) bool {
	if !c.Enabled() {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(c.token)) == 1
}

// AdminMiddleware creates middleware that requires admin access.
func AdminMiddleware(cfg *AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" && cfg.Enabled() {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !cfg.IsAdmin(r) {
				http.Error(w, "Forbidden: Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

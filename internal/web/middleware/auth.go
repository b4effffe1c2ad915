package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/koitrade/backoffice/internal/config"
	"github.com/koitrade/backoffice/internal/logging"
)

// APIKeyAuth guards the import API with an X-API-Key header check. The
// operator frontend is the only intended caller, so a shared key is enough;
// with RequireAPIKey off the middleware is a pass-through. Enabling it
// without configuring any keys locks the API shut rather than open.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			if key == "" {
				logging.FromContext(r.Context()).Warn("import API request without API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, "missing API key", "AUTH001", http.StatusUnauthorized)
				return
			}

			if !keyMatches(key, cfg.APIKeys) {
				logging.FromContext(r.Context()).Warn("import API request with unknown API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, "invalid API key", "AUTH002", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError emits an error body in the API's JSON shape. The web
// package's responder lives above this one, so the body is built here.
func writeAuthError(w http.ResponseWriter, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":false,"message":"` + message + `","code":"` + code + `"}`))
}

// keyMatches compares the presented key against every configured key in
// constant time, including the non-matching ones, so response timing reveals
// nothing about which key (if any) matched.
func keyMatches(key string, validKeys []string) bool {
	matched := 0
	for _, valid := range validKeys {
		matched |= subtle.ConstantTimeCompare([]byte(key), []byte(valid))
	}
	return matched == 1
}

// ABOUTME: HTTP middleware enforcing the license gate on AI routes
// ABOUTME: Reads the x-license-key header and rejects with a kid-friendly 403

package license

import (
	"encoding/json"
	"net/http"
)

// Middleware creates an HTTP middleware that enforces the gate using the
// x-license-key request header. Denied requests get a 403 whose body the
// UI can render directly as a chat bubble.
func Middleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Check(r.Header.Get(HeaderName)); err != nil {
				gate.logger.Debug("request denied", "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"response": ForbiddenMessage})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

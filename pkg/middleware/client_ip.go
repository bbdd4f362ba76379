package middleware

import (
	"net"
	"net/http"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/audit"
)

// ClientIP stores the caller's host in the request context for security audit events.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		next.ServeHTTP(w, r.WithContext(audit.WithClientIP(r.Context(), host)))
	})
}

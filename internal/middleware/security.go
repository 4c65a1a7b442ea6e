// internal/middleware/security.go
//
// Security-header middleware.
//
// Sets conservative headers on every response:
//
//   • Strict-Transport-Security  (two years)
//   • Content-Security-Policy    (nothing may load; responses are JSON)
//   • X-Frame-Options, X-Content-Type-Options, Referrer-Policy
//
// Notes
// -----
// • Headers are set before next.ServeHTTP because anything added after the
//   first Write is discarded.  A handler may still override them.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains"
		csp   = "default-src 'none'; frame-ancestors 'none'"
		xfo   = "DENY"
		nosn  = "nosniff"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", xfo)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)

		next.ServeHTTP(w, r)
	})
}

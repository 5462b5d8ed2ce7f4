package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kevinaaaquil/watchlist/session"
)

// CSRFField is the form field carrying the session's CSRF token.
const CSRFField = "csrf_token"

// SecureHeaders sets response headers for server-rendered pages. Referrer-Policy
// keeps reset tokens in the URL from leaking to linked sites.
func SecureHeaders() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "same-origin")
			next.ServeHTTP(w, r)
		})
	}
}

// CSRF rejects state-changing requests whose form token does not match the
// session. Bodies larger than maxBody are refused.
func CSRF(maxBody int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			var err error
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				err = r.ParseMultipartForm(maxBody)
			} else {
				err = r.ParseForm()
			}
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			sess, ok := session.FromContext(r.Context())
			if !ok || !sess.ValidCSRF(r.PostFormValue(CSRFField)) {
				slog.WarnContext(r.Context(), "csrf token mismatch", "path", r.URL.Path)
				http.Error(w, "The CSRF token is missing or invalid.", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

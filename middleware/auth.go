package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/watchlist/session"
)

// SessionStore loads and persists browser sessions.
type SessionStore interface {
	Load(r *http.Request) (*session.Session, error)
	Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error
}

// Sessions loads the caller's session into the request context and saves it
// just before the response headers are written.
func Sessions(store SessionStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if err != nil {
				slog.ErrorContext(r.Context(), "session load failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ctx := session.NewContext(r.Context(), sess)
			sw := &sessionWriter{ResponseWriter: w, save: func() {
				if err := store.Save(ctx, w, sess); err != nil {
					slog.ErrorContext(ctx, "session save failed", "error", err)
				}
			}}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.commit()
		})
	}
}

type sessionWriter struct {
	http.ResponseWriter
	save  func()
	saved bool
}

func (w *sessionWriter) commit() {
	if !w.saved {
		w.saved = true
		w.save()
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// RequireLogin redirects anonymous visitors to loginPath instead of running the handler.
func RequireLogin(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok || !sess.Authenticated() {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AnonymousOnly sends logged-in users to homePath, for pages such as login and register.
func AnonymousOnly(homePath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := session.FromContext(r.Context()); ok && sess.Authenticated() {
				http.Redirect(w, r, homePath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

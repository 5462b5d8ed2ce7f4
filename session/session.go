// Package session keeps per-browser state server-side in Redis. The browser only
// holds a random session id in a cookie.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "session"
	keyPrefix  = "session:"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type data struct {
	UserID  string  `json:"user_id,omitempty"`
	Email   string  `json:"email,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	CSRF    string  `json:"csrf,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Session is the state of one browser session for the duration of a request.
// It is not safe for concurrent use.
type Session struct {
	id     string
	data   data
	stored bool
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.data.UserID }
func (s *Session) Email() string  { return s.data.Email }
func (s *Session) Theme() string  { return s.data.Theme }

// Authenticated reports whether a user is logged in on this session.
func (s *Session) Authenticated() bool {
	return s.data.UserID != "" && s.data.Email != ""
}

func (s *Session) SetIdentity(userID, email string) {
	s.data.UserID = userID
	s.data.Email = email
}

func (s *Session) SetEmail(email string) { s.data.Email = email }
func (s *Session) SetTheme(theme string) { s.data.Theme = theme }

// ToggleTheme flips between dark and light; an unset theme becomes dark.
func (s *Session) ToggleTheme() {
	if s.data.Theme == ThemeDark {
		s.data.Theme = ThemeLight
	} else {
		s.data.Theme = ThemeDark
	}
}

// Logout clears everything except the theme preference.
func (s *Session) Logout() {
	s.data = data{Theme: s.data.Theme}
}

func (s *Session) AddFlash(category, message string) {
	s.data.Flashes = append(s.data.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns pending flash messages and removes them from the session.
func (s *Session) PopFlashes() []Flash {
	f := s.data.Flashes
	s.data.Flashes = nil
	return f
}

// CSRFToken returns the session's form token, creating it on first use.
func (s *Session) CSRFToken() string {
	if s.data.CSRF == "" {
		s.data.CSRF = newToken()
	}
	return s.data.CSRF
}

// ValidCSRF reports whether token matches the session's form token.
func (s *Session) ValidCSRF(token string) bool {
	if s.data.CSRF == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.data.CSRF), []byte(token)) == 1
}

func (s *Session) empty() bool {
	d := s.data
	return d.UserID == "" && d.Email == "" && d.Theme == "" && d.CSRF == "" && len(d.Flashes) == 0
}

// RedisStore loads and saves sessions as JSON values under session:<id>.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

func NewRedisStore(client *redis.Client, ttl time.Duration, secureCookie bool) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, secure: secureCookie}
}

// Load returns the session named by the request cookie, or a fresh session when
// the cookie is absent, unknown, expired or unreadable.
func (st *RedisStore) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return &Session{id: newToken()}, nil
	}
	raw, err := st.client.Get(r.Context(), keyPrefix+c.Value).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{id: newToken()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess := &Session{id: c.Value, stored: true}
	if err := json.Unmarshal(raw, &sess.data); err != nil {
		slog.WarnContext(r.Context(), "discarding unreadable session", "error", err)
		return &Session{id: newToken()}, nil
	}
	return sess, nil
}

// Save writes the session to Redis and sets the cookie. A new session that
// never received any data is not persisted.
func (st *RedisStore) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if !sess.stored && sess.empty() {
		return nil
	}
	raw, err := json.Marshal(sess.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := st.client.Set(ctx, keyPrefix+sess.id, raw, st.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sess.stored = true
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(st.ttl.Seconds()),
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew moves the session to a new id, deleting the old key. Called on login
// so a session id planted before authentication cannot be reused.
func (st *RedisStore) Renew(ctx context.Context, sess *Session) error {
	if sess.stored {
		if err := st.client.Del(ctx, keyPrefix+sess.id).Err(); err != nil {
			return fmt.Errorf("renew session: %w", err)
		}
	}
	sess.id = newToken()
	sess.stored = false
	return nil
}

func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("session: crypto/rand failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

type contextKey struct{}

func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok
}

package handlers

import (
	"context"
	"encoding/hex"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/watchlist/middleware"
	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/session"
)

// UserStore is the subset of store.DB the account flows need.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, id string, email *string, hashedPassword *string) error
	AppendMovie(ctx context.Context, userID, movieID string) error
}

// MovieStore is the subset of store.DB the movie pages need.
type MovieStore interface {
	MovieByID(ctx context.Context, id string) (*models.Movie, error)
	MoviesByIDs(ctx context.Context, ids []string) ([]models.Movie, error)
	InsertMovie(ctx context.Context, movie *models.Movie) error
	UpdateMovie(ctx context.Context, id string, movie *models.Movie) error
	SetMovieRating(ctx context.Context, id string, rating int) error
	SetMovieLastWatched(ctx context.Context, id string, at time.Time) error
	SetMoviePoster(ctx context.Context, id, posterKey string) error
}

// PosterStorage keeps poster images outside the database.
type PosterStorage interface {
	UploadPoster(ctx context.Context, movieID string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// SessionStore loads, saves and re-keys browser sessions.
type SessionStore interface {
	middleware.SessionStore
	Renew(ctx context.Context, sess *session.Session) error
}

// ResetTokenCodec issues and checks password reset tokens.
type ResetTokenCodec interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// EmailLogStore records outgoing emails.
type EmailLogStore interface {
	InsertEmailLog(ctx context.Context, log *models.EmailLog) error
}

// newID returns a random 32 character hex identifier.
func newID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

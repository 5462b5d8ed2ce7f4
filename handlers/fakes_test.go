package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/store"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]models.User
	order  []string
	unique bool // reject duplicate emails the way the unique index does
	// barrier, when set, holds every email lookup until all expected callers arrive
	barrier *sync.WaitGroup
}

func newFakeUsers(unique bool) *fakeUsers {
	return &fakeUsers{byID: map[string]models.User{}, unique: unique}
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	barrier := f.barrier
	f.mu.Unlock()
	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if u := f.byID[id]; u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	u.Movies = append([]string(nil), u.Movies...)
	return &u, nil
}

func (f *fakeUsers) emailTakenLocked(email, exceptID string) bool {
	for id, u := range f.byID {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (f *fakeUsers) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unique && f.emailTakenLocked(user.Email, "") {
		return store.ErrDuplicateEmail
	}
	u := *user
	if u.Movies == nil {
		u.Movies = []string{}
	}
	f.byID[u.ID] = u
	f.order = append(f.order, u.ID)
	return nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, id string, email *string, hashedPassword *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if email != nil {
		if f.unique && f.emailTakenLocked(*email, id) {
			return store.ErrDuplicateEmail
		}
		u.Email = *email
	}
	if hashedPassword != nil {
		u.Password = *hashedPassword
	}
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) AppendMovie(_ context.Context, userID, movieID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.Movies = append(u.Movies, movieID)
	f.byID[userID] = u
	return nil
}

func (f *fakeUsers) put(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.order = append(f.order, u.ID)
}

func (f *fakeUsers) count(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.byID {
		if u.Email == email {
			n++
		}
	}
	return n
}

func (f *fakeUsers) get(id string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type fakeMovies struct {
	mu   sync.Mutex
	byID map[string]models.Movie
}

func newFakeMovies() *fakeMovies {
	return &fakeMovies{byID: map[string]models.Movie{}}
}

func (f *fakeMovies) MovieByID(_ context.Context, id string) (*models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMovies) MoviesByIDs(_ context.Context, ids []string) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Movie{}
	for _, id := range ids {
		if m, ok := f.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovies) InsertMovie(_ context.Context, movie *models.Movie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[movie.ID] = *movie
	return nil
}

func (f *fakeMovies) UpdateMovie(_ context.Context, id string, movie *models.Movie) error {
	return f.update(id, func(m *models.Movie) {
		poster := m.PosterKey
		*m = *movie
		m.ID = id
		m.PosterKey = poster
	})
}

func (f *fakeMovies) SetMovieRating(_ context.Context, id string, rating int) error {
	return f.update(id, func(m *models.Movie) { m.Rating = rating })
}

func (f *fakeMovies) SetMovieLastWatched(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(m *models.Movie) { m.LastWatched = &at })
}

func (f *fakeMovies) SetMoviePoster(_ context.Context, id, posterKey string) error {
	return f.update(id, func(m *models.Movie) { m.PosterKey = posterKey })
}

func (f *fakeMovies) update(id string, fn func(*models.Movie)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&m)
	f.byID[id] = m
	return nil
}

func (f *fakeMovies) get(id string) models.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id]
}

type sentMail struct {
	to, link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, link: resetURL})
	return nil
}

func (f *fakeMailer) messages() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

type fakeEmailLog struct {
	mu      sync.Mutex
	entries []models.EmailLog
}

func (f *fakeEmailLog) InsertEmailLog(_ context.Context, log *models.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *log)
	return nil
}

type fakePosters struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	seq     int
}

func newFakePosters() *fakePosters {
	return &fakePosters{objects: map[string][]byte{}}
}

func (f *fakePosters) UploadPoster(_ context.Context, movieID string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	key := fmt.Sprintf("posters/%s/%d", movieID, f.seq)
	f.objects[key] = data
	return key, nil
}

func (f *fakePosters) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakePosters) PresignedGetURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://posters.example.com/%s?expires=%d", key, int(expiry.Seconds())), nil
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/store"
)

type MoviesHandler struct {
	Users          UserStore
	Movies         MovieStore
	Posters        PosterStorage // nil when poster uploads are disabled
	MaxPosterBytes int64
	Render         *Renderer
	Now            func() time.Time
}

func (h *MoviesHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// currentUser loads the logged-in user. A session pointing at a user that no
// longer exists is logged out and redirected.
func (h *MoviesHandler) currentUser(w http.ResponseWriter, r *http.Request) *models.User {
	sess := currentSession(r)
	user, err := h.Users.UserByID(r.Context(), sess.UserID())
	if err != nil {
		h.Render.ServerError(w, r, err)
		return nil
	}
	if user == nil {
		sess.Logout()
		redirect(w, r, "/login")
		return nil
	}
	return user
}

// ownedMovieID returns the {id} URL parameter when that movie is on the
// current user's list. Otherwise it writes a response and returns "".
func (h *MoviesHandler) ownedMovieID(w http.ResponseWriter, r *http.Request) string {
	user := h.currentUser(w, r)
	if user == nil {
		return ""
	}
	id := chi.URLParam(r, "id")
	if !user.HasMovie(id) {
		h.Render.NotFound(w, r)
		return ""
	}
	return id
}

// Index lists the current user's movies.
func (h *MoviesHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	movies, err := h.Movies.MoviesByIDs(r.Context(), user.Movies)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	h.Render.HTML(w, r, http.StatusOK, "index", &PageData{Title: siteTitle, Movies: movies})
}

func (h *MoviesHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	h.Render.HTML(w, r, http.StatusOK, "new_movie", &PageData{
		Title: siteTitle + " - Add Movie",
		Form:  MovieForm{},
	})
}

// Add creates a movie and appends it to the current user's list. The two
// writes are independent; if the second fails the movie is left unlisted.
func (h *MoviesHandler) Add(w http.ResponseWriter, r *http.Request) {
	form := parseMovieForm(r)
	if errs := validateForm(form); errs != nil {
		h.Render.HTML(w, r, http.StatusOK, "new_movie", &PageData{
			Title:  siteTitle + " - Add Movie",
			Form:   form,
			Errors: errs,
		})
		return
	}
	year, _ := parseYear(form.Year)
	movie := &models.Movie{
		ID:       newID(),
		Title:    form.Title,
		Director: form.Director,
		Year:     year,
	}
	if err := h.Movies.InsertMovie(r.Context(), movie); err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if err := h.Users.AppendMovie(r.Context(), currentSession(r).UserID(), movie.ID); err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	redirect(w, r, "/added/"+movie.ID)
}

// movie loads the {id} URL parameter's movie, rendering 404 when it is missing.
func (h *MoviesHandler) movie(w http.ResponseWriter, r *http.Request) *models.Movie {
	movie, err := h.Movies.MovieByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Render.ServerError(w, r, err)
		return nil
	}
	if movie == nil {
		h.Render.NotFound(w, r)
		return nil
	}
	return movie
}

func (h *MoviesHandler) Added(w http.ResponseWriter, r *http.Request) {
	movie := h.movie(w, r)
	if movie == nil {
		return
	}
	h.Render.HTML(w, r, http.StatusOK, "movie_added", &PageData{
		Title: siteTitle + " - " + movie.Title,
		Movie: movie,
	})
}

// Movie shows a movie to anyone. Owners also get rating and editing links.
func (h *MoviesHandler) Movie(w http.ResponseWriter, r *http.Request) {
	movie := h.movie(w, r)
	if movie == nil {
		return
	}
	owned := false
	if sess := currentSession(r); sess.Authenticated() {
		user, err := h.Users.UserByID(r.Context(), sess.UserID())
		if err != nil {
			h.Render.ServerError(w, r, err)
			return
		}
		owned = user != nil && user.HasMovie(movie.ID)
	}
	h.Render.HTML(w, r, http.StatusOK, "movie_details", &PageData{
		Title: siteTitle + " - " + movie.Title,
		Movie: movie,
		Owned: owned,
	})
}

func (h *MoviesHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	if h.ownedMovieID(w, r) == "" {
		return
	}
	movie := h.movie(w, r)
	if movie == nil {
		return
	}
	h.renderEdit(w, r, movie, extendedFormFromMovie(movie), nil)
}

func (h *MoviesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h.ownedMovieID(w, r) == "" {
		return
	}
	movie := h.movie(w, r)
	if movie == nil {
		return
	}
	form := parseExtendedMovieForm(r)
	if errs := validateForm(form); errs != nil {
		h.renderEdit(w, r, movie, form, errs)
		return
	}
	form.apply(movie)
	if err := h.Movies.UpdateMovie(r.Context(), movie.ID, movie); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Render.NotFound(w, r)
			return
		}
		h.Render.ServerError(w, r, err)
		return
	}
	redirect(w, r, "/movie/"+movie.ID)
}

func (h *MoviesHandler) renderEdit(w http.ResponseWriter, r *http.Request, movie *models.Movie, form ExtendedMovieForm, errs FormErrors) {
	h.Render.HTML(w, r, http.StatusOK, "movie_form", &PageData{
		Title:          siteTitle + " - Edit " + movie.Title,
		Movie:          movie,
		Form:           form,
		Errors:         errs,
		PostersEnabled: h.Posters != nil,
	})
}

// Rate sets the rating from the query string; 0 clears it.
func (h *MoviesHandler) Rate(w http.ResponseWriter, r *http.Request) {
	rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
	if err != nil || rating < 0 || rating > models.MaxRating {
		h.Render.Error(w, r, http.StatusBadRequest, "Rating must be a whole number from 0 to 5.")
		return
	}
	id := h.ownedMovieID(w, r)
	if id == "" {
		return
	}
	h.finishUpdate(w, r, id, h.Movies.SetMovieRating(r.Context(), id, rating))
}

// Watch records that the movie was watched now.
func (h *MoviesHandler) Watch(w http.ResponseWriter, r *http.Request) {
	id := h.ownedMovieID(w, r)
	if id == "" {
		return
	}
	h.finishUpdate(w, r, id, h.Movies.SetMovieLastWatched(r.Context(), id, h.now()))
}

func (h *MoviesHandler) finishUpdate(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.Render.NotFound(w, r)
	case err != nil:
		h.Render.ServerError(w, r, err)
	default:
		redirect(w, r, "/movie/"+id)
	}
}

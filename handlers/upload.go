package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kevinaaaquil/watchlist/service"
)

const posterURLExpiry = 15 * time.Minute

// UploadPoster stores a poster image for a movie on the user's list. The
// previous poster object is removed.
func (h *MoviesHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	if h.Posters == nil {
		h.Render.Error(w, r, http.StatusServiceUnavailable, "Poster uploads are not configured.")
		return
	}
	id := h.ownedMovieID(w, r)
	if id == "" {
		return
	}
	movie := h.movie(w, r)
	if movie == nil {
		return
	}

	file, header, err := r.FormFile("poster")
	if err != nil {
		h.Render.Error(w, r, http.StatusBadRequest, "Choose an image file to upload.")
		return
	}
	defer file.Close()
	if h.MaxPosterBytes > 0 && header.Size > h.MaxPosterBytes {
		h.Render.Error(w, r, http.StatusRequestEntityTooLarge, "That image is too large.")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		h.Render.Error(w, r, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if _, ok := service.PosterContentTypes[contentType]; !ok {
		h.Render.Error(w, r, http.StatusUnsupportedMediaType, "Posters must be JPEG, PNG or WebP images.")
		return
	}

	key, err := h.Posters.UploadPoster(r.Context(), id, io.MultiReader(bytes.NewReader(head), file), contentType)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if err := h.Movies.SetMoviePoster(r.Context(), id, key); err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if movie.PosterKey != "" {
		if err := h.Posters.Delete(r.Context(), movie.PosterKey); err != nil {
			slog.WarnContext(r.Context(), "delete old poster", "movie_id", id, "key", movie.PosterKey, "error", err)
		}
	}
	redirect(w, r, "/movie/"+id)
}

// Poster redirects to a short-lived signed URL for the movie's poster.
func (h *MoviesHandler) Poster(w http.ResponseWriter, r *http.Request) {
	if h.Posters == nil {
		h.Render.Error(w, r, http.StatusServiceUnavailable, "Posters are not configured.")
		return
	}
	movie := h.movie(w, r)
	if movie == nil {
		return
	}
	if movie.PosterKey == "" {
		h.Render.NotFound(w, r)
		return
	}
	url, err := h.Posters.PresignedGetURL(r.Context(), movie.PosterKey, posterURLExpiry)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	redirect(w, r, url)
}

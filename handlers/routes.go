package handlers

import (
	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/watchlist/middleware"
)

// multipartOverhead is allowed on top of the poster size limit for form fields and boundaries.
const multipartOverhead = 1 << 20

type RouterConfig struct {
	Users          UserStore
	Movies         MovieStore
	Posters        PosterStorage
	Sessions       SessionStore
	Tokens         ResetTokenCodec
	Mailer         ResetMailer
	EmailLog       EmailLogStore
	BaseURL        string
	MaxPosterBytes int64
}

// NewRouter wires every page of the site behind session loading and CSRF checks.
func NewRouter(cfg RouterConfig) (chi.Router, error) {
	render, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	auth := &AuthHandler{
		Users:    cfg.Users,
		Sessions: cfg.Sessions,
		Tokens:   cfg.Tokens,
		Mailer:   cfg.Mailer,
		EmailLog: cfg.EmailLog,
		BaseURL:  cfg.BaseURL,
		Render:   render,
	}
	movies := &MoviesHandler{
		Users:          cfg.Users,
		Movies:         cfg.Movies,
		Posters:        cfg.Posters,
		MaxPosterBytes: cfg.MaxPosterBytes,
		Render:         render,
	}

	r := chi.NewRouter()
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.Sessions(cfg.Sessions))
	r.Use(middleware.CSRF(cfg.MaxPosterBytes + multipartOverhead))
	r.NotFound(render.NotFound)

	r.Get("/logout", auth.Logout)
	r.Get("/toggle-theme", ToggleTheme)
	r.Get("/added/{id}", movies.Added)
	r.Get("/movie/{id}", movies.Movie)
	r.Get("/movie/{id}/poster", movies.Poster)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AnonymousOnly("/"))
		r.Get("/register", auth.RegisterPage)
		r.Post("/register", auth.Register)
		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.Login)
		r.Get("/reset_request", auth.ResetRequestPage)
		r.Post("/reset_request", auth.ResetRequest)
		r.Get("/reset_request/{token}", auth.ResetToken)
		r.Post("/reset_request/{token}", auth.ResetToken)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin("/login"))
		r.Get("/", movies.Index)
		r.Get("/account", auth.AccountPage)
		r.Post("/account", auth.UpdateAccount)
		r.Get("/add", movies.AddPage)
		r.Post("/add", movies.Add)
		r.Get("/edit/{id}", movies.EditPage)
		r.Post("/edit/{id}", movies.Edit)
		r.Get("/movie/{id}/rate", movies.Rate)
		r.Get("/movie/{id}/watch", movies.Watch)
		r.Post("/movie/{id}/poster", movies.UploadPoster)
	})

	return r, nil
}

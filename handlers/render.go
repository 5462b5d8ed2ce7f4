package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/session"
	"github.com/kevinaaaquil/watchlist/web"
)

const siteTitle = "Movies Watchlist"

var pages = []string{
	"index", "register", "login", "account", "reset_request", "reset_token",
	"new_movie", "movie_added", "movie_form", "movie_details", "error",
}

// PageData is the value every template executes against. The renderer fills
// the session-derived fields.
type PageData struct {
	Title       string
	Theme       string
	Email       string
	Flashes     []session.Flash
	CSRFToken   string
	CurrentPath string
	CurrentYear int

	Form    any
	Errors  FormErrors
	Message string

	Movie          *models.Movie
	Movies         []models.Movie
	Owned          bool
	PostersEnabled bool
}

type Renderer struct {
	pages map[string]*template.Template
	now   func() time.Time
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
	"stars": func(n int) string {
		if n <= 0 {
			return "Not rated"
		}
		n = min(n, models.MaxRating)
		return strings.Repeat("★", n) + strings.Repeat("☆", models.MaxRating-n)
	},
	"ratings": func() []int {
		out := make([]int, 0, models.MaxRating)
		for i := 1; i <= models.MaxRating; i++ {
			out = append(out, i)
		}
		return out
	},
}

// NewRenderer parses the base layout together with each page template.
func NewRenderer() (*Renderer, error) {
	rd := &Renderer{pages: make(map[string]*template.Template, len(pages)), now: time.Now}
	for _, name := range pages {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(web.Templates,
			"templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// HTML renders page with status. Flash messages are consumed from the session.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	t, ok := rd.pages[page]
	if !ok {
		rd.ServerError(w, r, fmt.Errorf("unknown template %q", page))
		return
	}
	if data == nil {
		data = &PageData{}
	}
	if data.Title == "" {
		data.Title = siteTitle
	}
	sess := currentSession(r)
	data.Theme = sess.Theme()
	data.Email = sess.Email()
	data.CSRFToken = sess.CSRFToken()
	data.CurrentPath = r.URL.RequestURI()
	data.CurrentYear = rd.now().Year()
	data.Flashes = sess.PopFlashes()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.ErrorContext(r.Context(), "render template", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.HTML(w, r, status, "error", &PageData{
		Title:   fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Message: message,
	})
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Error(w, r, http.StatusNotFound, "The page you were looking for does not exist.")
}

// ServerError logs err and renders a generic 500 page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	rd.Error(w, r, http.StatusInternalServerError, "Something went wrong on our side. Please try again later.")
}

func currentSession(r *http.Request) *session.Session {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess
	}
	return &session.Session{}
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

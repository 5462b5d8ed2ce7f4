package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/store"
	"github.com/kevinaaaquil/watchlist/utils"
)

const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashWarning = "warning"
	flashInfo    = "info"

	msgRegistered  = "User registered successfully!"
	msgLoginFailed = "Login failed. Please check your email and password."
)

type AuthHandler struct {
	Users    UserStore
	Sessions SessionStore
	Tokens   ResetTokenCodec
	Mailer   ResetMailer
	EmailLog EmailLogStore // optional
	// BaseURL prefixes links sent by email, e.g. https://watchlist.example.com
	BaseURL string
	Render  *Renderer
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.Render.HTML(w, r, http.StatusOK, "register", &PageData{
		Title: siteTitle + " - Register",
		Form:  RegisterForm{},
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := parseRegisterForm(r)
	errs := validateForm(form)
	if errs == nil {
		existing, err := h.Users.UserByEmail(r.Context(), form.Email)
		if err != nil {
			h.Render.ServerError(w, r, err)
			return
		}
		if existing != nil {
			errs = FormErrors{"email": msgEmailTaken}
		}
	}
	if errs != nil {
		h.renderRegister(w, r, form, errs)
		return
	}

	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	user := &models.User{ID: newID(), Email: form.Email, Password: hash}
	if err := h.Users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			h.renderRegister(w, r, form, FormErrors{"email": msgEmailTaken})
			return
		}
		h.Render.ServerError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID)
	currentSession(r).AddFlash(flashSuccess, msgRegistered)
	redirect(w, r, "/login")
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, form RegisterForm, errs FormErrors) {
	form.Password, form.ConfirmPassword = "", ""
	h.Render.HTML(w, r, http.StatusOK, "register", &PageData{
		Title:  siteTitle + " - Register",
		Form:   form,
		Errors: errs,
	})
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.Render.HTML(w, r, http.StatusOK, "login", &PageData{
		Title: siteTitle + " - Login",
		Form:  LoginForm{},
	})
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the same flash message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := parseLoginForm(r)
	if errs := validateForm(form); errs != nil {
		form.Password = ""
		h.Render.HTML(w, r, http.StatusOK, "login", &PageData{
			Title:  siteTitle + " - Login",
			Form:   form,
			Errors: errs,
		})
		return
	}

	user, err := h.Users.UserByEmail(r.Context(), form.Email)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	sess := currentSession(r)
	if user == nil || !utils.CheckPasswordHash(form.Password, user.Password) {
		slog.InfoContext(r.Context(), "login failed")
		sess.AddFlash(flashDanger, msgLoginFailed)
		redirect(w, r, "/login")
		return
	}

	if err := h.Sessions.Renew(r.Context(), sess); err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	sess.SetIdentity(user.ID, user.Email)
	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	redirect(w, r, "/")
}

// Logout drops the identity but keeps the theme preference.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	currentSession(r).Logout()
	redirect(w, r, "/login")
}

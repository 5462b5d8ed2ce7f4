package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/store"
	"github.com/kevinaaaquil/watchlist/utils"
)

const (
	msgAccountUpdated  = "Your account has been updated!"
	msgWrongPassword   = "Incorrect password. Please try again."
	msgResetSent       = "An email has been sent with instructions to reset your password."
	msgInvalidToken    = "That is an invalid or expired token"
	msgPasswordUpdated = "Your password has been updated! You can now log in."
)

func (h *AuthHandler) AccountPage(w http.ResponseWriter, r *http.Request) {
	h.renderAccount(w, r, UpdateAccountForm{Email: currentSession(r).Email()}, nil)
}

// UpdateAccount changes the user's email after re-checking the current password.
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	form := parseUpdateAccountForm(r)
	if errs := validateForm(form); errs != nil {
		h.renderAccount(w, r, form, errs)
		return
	}

	sess := currentSession(r)
	user, err := h.Users.UserByID(r.Context(), sess.UserID())
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if user == nil {
		sess.Logout()
		redirect(w, r, "/login")
		return
	}
	if !utils.CheckPasswordHash(form.Password, user.Password) {
		sess.AddFlash(flashDanger, msgWrongPassword)
		h.renderAccount(w, r, form, nil)
		return
	}
	if form.Email != user.Email {
		other, err := h.Users.UserByEmail(r.Context(), form.Email)
		if err != nil {
			h.Render.ServerError(w, r, err)
			return
		}
		if other != nil && other.ID != user.ID {
			h.renderAccount(w, r, form, FormErrors{"email": msgEmailTaken})
			return
		}
	}

	switch err := h.Users.UpdateUser(r.Context(), user.ID, &form.Email, nil); {
	case errors.Is(err, store.ErrDuplicateEmail):
		h.renderAccount(w, r, form, FormErrors{"email": msgEmailTaken})
		return
	case errors.Is(err, store.ErrNotFound):
		sess.Logout()
		redirect(w, r, "/login")
		return
	case err != nil:
		h.Render.ServerError(w, r, err)
		return
	}
	sess.SetEmail(form.Email)
	sess.AddFlash(flashSuccess, msgAccountUpdated)
	redirect(w, r, "/account")
}

func (h *AuthHandler) renderAccount(w http.ResponseWriter, r *http.Request, form UpdateAccountForm, errs FormErrors) {
	form.Password = ""
	h.Render.HTML(w, r, http.StatusOK, "account", &PageData{
		Title:  "Account",
		Form:   form,
		Errors: errs,
	})
}

func (h *AuthHandler) ResetRequestPage(w http.ResponseWriter, r *http.Request) {
	h.Render.HTML(w, r, http.StatusOK, "reset_request", &PageData{
		Title: "Reset Password",
		Form:  RequestResetForm{},
	})
}

// ResetRequest mails a reset link when the address belongs to a user. The
// response is the same whether or not it does.
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	form := RequestResetForm{Email: normaliseEmail(r.PostFormValue("email"))}
	if errs := validateForm(form); errs != nil {
		h.Render.HTML(w, r, http.StatusOK, "reset_request", &PageData{
			Title:  "Reset Password",
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
	if user != nil {
		token, err := h.Tokens.Issue(user.ID)
		if err != nil {
			h.Render.ServerError(w, r, err)
			return
		}
		link := strings.TrimRight(h.BaseURL, "/") + "/reset_request/" + token
		if err := h.Mailer.SendPasswordReset(r.Context(), user.Email, link); err != nil {
			h.Render.ServerError(w, r, err)
			return
		}
		slog.InfoContext(r.Context(), "password reset email sent", "user_id", user.ID)
		h.recordEmail(r, user.ID, user.Email)
	}
	currentSession(r).AddFlash(flashInfo, msgResetSent)
	redirect(w, r, "/login")
}

func (h *AuthHandler) recordEmail(r *http.Request, userID, to string) {
	if h.EmailLog == nil {
		return
	}
	entry := &models.EmailLog{
		ID:      newID(),
		UserID:  userID,
		ToEmail: to,
		Kind:    models.EmailKindPasswordReset,
		SentAt:  time.Now().UTC(),
	}
	if err := h.EmailLog.InsertEmailLog(r.Context(), entry); err != nil {
		slog.WarnContext(r.Context(), "record email log", "user_id", userID, "error", err)
	}
}

// ResetToken serves and handles the new-password form behind an emailed token.
func (h *AuthHandler) ResetToken(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	invalid := func() {
		sess.AddFlash(flashWarning, msgInvalidToken)
		redirect(w, r, "/reset_request")
	}

	userID, err := h.Tokens.Verify(chi.URLParam(r, "token"))
	if err != nil {
		invalid()
		return
	}
	user, err := h.Users.UserByID(r.Context(), userID)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if user == nil {
		invalid()
		return
	}

	if r.Method != http.MethodPost {
		h.renderResetToken(w, r, nil)
		return
	}
	form := parseResetPasswordForm(r)
	if errs := validateForm(form); errs != nil {
		h.renderResetToken(w, r, errs)
		return
	}
	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		h.Render.ServerError(w, r, err)
		return
	}
	if err := h.Users.UpdateUser(r.Context(), user.ID, nil, &hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			invalid()
			return
		}
		h.Render.ServerError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "password reset", "user_id", user.ID)
	sess.AddFlash(flashSuccess, msgPasswordUpdated)
	redirect(w, r, "/login")
}

func (h *AuthHandler) renderResetToken(w http.ResponseWriter, r *http.Request, errs FormErrors) {
	h.Render.HTML(w, r, http.StatusOK, "reset_token", &PageData{
		Title:  "Reset Password",
		Form:   ResetPasswordForm{},
		Errors: errs,
	})
}

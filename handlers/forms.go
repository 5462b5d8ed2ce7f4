package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kevinaaaquil/watchlist/models"
	"github.com/kevinaaaquil/watchlist/utils"
)

// FormErrors maps a form field name to the first message that applies to it.
type FormErrors map[string]string

const (
	msgEmailTaken   = "That email is already registered."
	msgYearFormat   = "Please enter a year in the format YYYY."
	msgPasswordMin  = "Password must be at least 8 characters long."
	msgPasswordLong = "Password must be at most 72 bytes long."
)

var fieldMessages = map[string]string{
	"password.min":             msgPasswordMin,
	"password.bcryptlen":       msgPasswordLong,
	"confirm_password.eqfield": "Passwords must match.",
	"year.movieyear":           msgYearFormat,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt limits input bytes, not runes
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	})
	_ = v.RegisterValidation("movieyear", func(fl validator.FieldLevel) bool {
		_, ok := parseYear(fl.Field().String())
		return ok
	})
	return v
}

func parseYear(s string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year < models.MinMovieYear {
		return 0, false
	}
	return year, true
}

// validateForm runs the struct tags of form and returns nil when it is valid.
func validateForm(form any) FormErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FormErrors{"": err.Error()}
	}
	errs := FormErrors{}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = fieldMessage(fe)
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "min":
		return "Field must be at least " + fe.Param() + " characters long."
	case "max":
		return "Field cannot be longer than " + fe.Param() + " characters."
	}
	return "Invalid value."
}

func normaliseEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type RegisterForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8,bcryptlen"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func parseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Email:           normaliseEmail(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Email:    normaliseEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

type UpdateAccountForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func parseUpdateAccountForm(r *http.Request) UpdateAccountForm {
	return UpdateAccountForm{
		Email:    normaliseEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

type RequestResetForm struct {
	Email string `form:"email" validate:"required,email"`
}

type ResetPasswordForm struct {
	Password        string `form:"password" validate:"required,min=8,bcryptlen"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func parseResetPasswordForm(r *http.Request) ResetPasswordForm {
	return ResetPasswordForm{
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
}

// MovieForm holds the fields needed to add a movie. Year is kept as text so
// the form can be re-rendered with whatever the user typed.
type MovieForm struct {
	Title    string `form:"title" validate:"required"`
	Director string `form:"director" validate:"required"`
	Year     string `form:"year" validate:"required,movieyear"`
}

func parseMovieForm(r *http.Request) MovieForm {
	return MovieForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Director: strings.TrimSpace(r.PostFormValue("director")),
		Year:     strings.TrimSpace(r.PostFormValue("year")),
	}
}

// ExtendedMovieForm is the edit form. List fields hold one entry per line.
type ExtendedMovieForm struct {
	MovieForm
	Cast        string `form:"cast"`
	Series      string `form:"series"`
	Tags        string `form:"tags"`
	Description string `form:"description"`
	VideoLink   string `form:"video_link" validate:"omitempty,url"`
	ImageLink   string `form:"image_link" validate:"omitempty,url"`
}

func parseExtendedMovieForm(r *http.Request) ExtendedMovieForm {
	return ExtendedMovieForm{
		MovieForm:   parseMovieForm(r),
		Cast:        r.PostFormValue("cast"),
		Series:      r.PostFormValue("series"),
		Tags:        r.PostFormValue("tags"),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		VideoLink:   strings.TrimSpace(r.PostFormValue("video_link")),
		ImageLink:   strings.TrimSpace(r.PostFormValue("image_link")),
	}
}

func extendedFormFromMovie(m *models.Movie) ExtendedMovieForm {
	return ExtendedMovieForm{
		MovieForm: MovieForm{
			Title:    m.Title,
			Director: m.Director,
			Year:     strconv.Itoa(m.Year),
		},
		Cast:        strings.Join(m.Cast, "\n"),
		Series:      strings.Join(m.Series, "\n"),
		Tags:        strings.Join(m.Tags, "\n"),
		Description: m.Description,
		VideoLink:   m.VideoLink,
		ImageLink:   m.ImageLink,
	}
}

// apply copies a validated form onto m.
func (f ExtendedMovieForm) apply(m *models.Movie) {
	m.Title = f.Title
	m.Director = f.Director
	m.Year, _ = parseYear(f.Year)
	m.Cast = splitLines(f.Cast)
	m.Series = splitLines(f.Series)
	m.Tags = splitLines(f.Tags)
	m.Description = f.Description
	m.VideoLink = f.VideoLink
	m.ImageLink = f.ImageLink
}

// splitLines returns the trimmed, non-empty lines of s.
func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

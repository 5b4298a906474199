package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"yatube/app/forms"
	"yatube/app/middleware"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// UserController handles sign up, login and password management
type UserController struct {
	base
	userService    *services.UserService
	sessionService *services.SessionService
	cookie         CookieConfig
	baseURL        string
}

// NewUserController creates a new UserController. baseURL prefixes links
// sent by e-mail.
func NewUserController(userService *services.UserService, sessionService *services.SessionService, cookie CookieConfig, baseURL string, router *mux.Router, renderer *views.Renderer, logger *zap.Logger) *UserController {
	return &UserController{
		base:           base{router: router, renderer: renderer, logger: logger},
		userService:    userService,
		sessionService: sessionService,
		cookie:         cookie,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

// SignUp registers a new user
func (uc *UserController) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		uc.render(w, r, "users/signup.html", views.Context{"Form": forms.NewSignUpForm(nil)})
		return
	}
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewSignUpForm(r.PostForm)
	if _, err := uc.userService.SignUp(form); err != nil {
		if _, ok := forms.AsValidationError(err); ok {
			uc.render(w, r, "users/signup.html", views.Context{"Form": form})
			return
		}
		uc.serverError(w, r, err)
		return
	}
	uc.redirect(w, r, "posts:index")
}

// Login authenticates a user and starts a session
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		uc.render(w, r, "users/login.html", views.Context{
			"Form": forms.NewLoginForm(nil),
			"Next": r.URL.Query().Get("next"),
		})
		return
	}
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	next := r.PostForm.Get("next")
	if next == "" {
		next = r.URL.Query().Get("next")
	}
	form := forms.NewLoginForm(r.PostForm)
	user, err := uc.userService.Authenticate(form)
	if errors.Is(err, services.ErrInvalidCredentials) {
		form.Errors.Add(forms.NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		err = &forms.ValidationError{Errors: form.Errors}
	}
	if err != nil {
		if _, ok := forms.AsValidationError(err); ok {
			uc.render(w, r, "users/login.html", views.Context{"Form": form, "Next": next})
			return
		}
		uc.serverError(w, r, err)
		return
	}

	session, err := uc.sessionService.Login(user)
	if err != nil {
		uc.serverError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     uc.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   uc.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	uc.logger.Info("user logged in", zap.Int("user_id", user.ID))

	if safeRedirect(next) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	uc.redirect(w, r, "posts:index")
}

// Logout ends the session
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(uc.cookie.Name); err == nil {
		if err := uc.sessionService.Logout(cookie.Value); err != nil {
			uc.serverError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: uc.cookie.Name, Value: "", Path: "/", MaxAge: -1})
	uc.render(w, r.WithContext(middleware.WithUser(r.Context(), nil)), "users/logged_out.html", nil)
}

// PasswordChange changes the password of the logged-in user
func (uc *UserController) PasswordChange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		uc.render(w, r, "users/password_change_form.html", views.Context{"Form": forms.NewPasswordChangeForm(nil)})
		return
	}
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewPasswordChangeForm(r.PostForm)
	user := middleware.CurrentUser(r.Context())
	if err := uc.userService.ChangePassword(user, form); err != nil {
		if _, ok := forms.AsValidationError(err); ok {
			uc.render(w, r, "users/password_change_form.html", views.Context{"Form": form})
			return
		}
		uc.serverError(w, r, err)
		return
	}
	var keep string
	if cookie, err := r.Cookie(uc.cookie.Name); err == nil {
		keep = cookie.Value
	}
	if err := uc.sessionService.EndOtherSessions(user, keep); err != nil {
		uc.serverError(w, r, err)
		return
	}
	uc.redirect(w, r, "users:password_change_done")
}

// PasswordChangeDone confirms a password change
func (uc *UserController) PasswordChangeDone(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, "users/password_change_done.html", nil)
}

// PasswordReset mails a reset link
func (uc *UserController) PasswordReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		uc.render(w, r, "users/password_reset_form.html", views.Context{"Form": forms.NewPasswordResetForm(nil)})
		return
	}
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewPasswordResetForm(r.PostForm)
	err := uc.userService.RequestPasswordReset(form, uc.resetLink)
	if err != nil {
		if _, ok := forms.AsValidationError(err); ok {
			uc.render(w, r, "users/password_reset_form.html", views.Context{"Form": form})
			return
		}
		uc.serverError(w, r, err)
		return
	}
	uc.redirect(w, r, "users:password_reset_done")
}

// PasswordResetDone tells the user to check their mail
func (uc *UserController) PasswordResetDone(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, "users/password_reset_done.html", nil)
}

// PasswordResetConfirm sets a new password from a reset link
func (uc *UserController) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	data := views.Context{"Token": token, "ValidLink": true}

	if _, err := uc.userService.ValidateResetToken(token); err != nil {
		if !errors.Is(err, services.ErrInvalidToken) {
			uc.serverError(w, r, err)
			return
		}
		data["ValidLink"] = false
		data["Form"] = forms.NewSetPasswordForm(nil)
		uc.render(w, r, "users/password_reset_confirm.html", data)
		return
	}

	if r.Method != http.MethodPost {
		data["Form"] = forms.NewSetPasswordForm(nil)
		uc.render(w, r, "users/password_reset_confirm.html", data)
		return
	}
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := forms.NewSetPasswordForm(r.PostForm)
	data["Form"] = form
	user, err := uc.userService.ResetPassword(token, form)
	switch {
	case err == nil:
		if err := uc.sessionService.EndOtherSessions(user, ""); err != nil {
			uc.serverError(w, r, err)
			return
		}
		uc.redirect(w, r, "users:password_reset_complete")
	case errors.Is(err, services.ErrInvalidToken):
		data["ValidLink"] = false
		uc.render(w, r, "users/password_reset_confirm.html", data)
	default:
		if _, ok := forms.AsValidationError(err); ok {
			uc.render(w, r, "users/password_reset_confirm.html", data)
			return
		}
		uc.serverError(w, r, err)
	}
}

// PasswordResetComplete confirms a password reset
func (uc *UserController) PasswordResetComplete(w http.ResponseWriter, r *http.Request) {
	uc.render(w, r, "users/password_reset_complete.html", nil)
}

func (uc *UserController) resetLink(token string) string {
	path, err := views.Reverse(uc.router, "users:password_reset_confirm", "token", token)
	if err != nil {
		uc.logger.Error("failed to build reset link", zap.Error(err))
		return uc.baseURL
	}
	return uc.baseURL + path
}

// safeRedirect accepts only local absolute paths
func safeRedirect(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\")
}

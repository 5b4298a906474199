package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/app/models"
	"yatube/app/services"

	"go.uber.org/zap"
)

// LoginURL is where anonymous users are sent by RequireLogin.
const LoginURL = "/auth/login/"

type contextKey string

const userKey contextKey = "user"

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser is the logged-in user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// Session resolves the session cookie to a user and stores it in the
// request context. Stale cookies are cleared.
func Session(sessions *services.SessionService, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := sessions.Current(cookie.Value)
			if err != nil {
				if !errors.Is(err, services.ErrNotFound) {
					logger.Error("failed to load session", zap.Error(err))
				}
				http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireLogin redirects anonymous users to the login page, remembering
// the requested path in ?next=.
func RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			target := LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(r.URL.RequestURI()), "%2F", "/")
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next(w, r)
	}
}

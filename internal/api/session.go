package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/session"
)

// PrincipalLoader resolves a session subject to the current user record, so a
// role change (e.g. promotion to hotelier) applies without a fresh login.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (*Principal, error)
}

// SessionAuth attaches the caller's Principal when a valid session cookie is
// present. Anonymous requests pass through; use RequireAuth or Require to gate.
func SessionAuth(cfg config.SessionConfig, users PrincipalLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cfg.CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			vs, err := session.Verify(c.Value, cfg.Secret, time.Now())
			if err != nil {
				logger.FromContext(r.Context()).Debug("session rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			p, err := users.LoadPrincipal(r.Context(), vs.UserID)
			if err != nil {
				if !errors.Is(err, db.ErrNotFound) {
					WriteFailure(w, r, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()) == nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Require(c role.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if !p.Can(c) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "missing capability: "+string(c))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func SetSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite(cfg),
	})
}

func ClearSessionCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite(cfg),
	})
}

// Cross-site cookies require SameSite=None, which browsers only accept with Secure.
func sameSite(cfg config.SessionConfig) http.SameSite {
	if cfg.CookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

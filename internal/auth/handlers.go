package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SwarupDevkota/ghumna-sub000/internal/api"
	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/user"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/session"
)

type Users interface {
	Create(ctx context.Context, in user.NewUser) (*user.User, error)
	Get(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type Handlers struct {
	Session config.SessionConfig
	Users   Users
	// Now is overridable in tests.
	Now func() time.Time
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteFailure(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}

	u, err := h.Users.Create(r.Context(), user.NewUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Role:         role.User,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			api.WriteFailure(w, r, api.Invalid("email already registered", "email"))
			return
		}
		api.WriteFailure(w, r, err)
		return
	}

	if !h.startSession(w, r, u) {
		return
	}
	api.WriteJSON(w, http.StatusCreated, u)
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteFailure(w, r, err)
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		api.WriteFailure(w, r, err)
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}

	if !h.startSession(w, r, u) {
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	api.ClearSessionCookie(w, h.Session)
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteFailure(w, r, api.ErrUnauthenticated)
		return
	}
	u, err := h.Users.Get(r.Context(), p.UserID)
	if err != nil {
		api.WriteFailure(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

func (h Handlers) startSession(w http.ResponseWriter, r *http.Request, u *user.User) bool {
	tok, err := session.Sign(h.Session.Secret, u.ID, u.Role, h.now(), h.Session.TTL)
	if err != nil {
		api.WriteFailure(w, r, err)
		return false
	}
	api.SetSessionCookie(w, h.Session, tok)
	logger.FromContext(r.Context()).Info("session started", "user_id", u.ID, "role", u.Role)
	return true
}

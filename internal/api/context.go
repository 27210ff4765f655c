package api

import (
	"context"
	"errors"

	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
)

type ctxKey string

const (
	ctxKeyPrincipal    ctxKey = "principal"
	ctxKeyExposeErrors ctxKey = "expose_errors"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Principal is the authenticated caller, attached by SessionAuth.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   role.Role
}

func (p *Principal) Can(c role.Capability) bool {
	return p != nil && p.Role.Can(c)
}

// Owns reports whether the caller is userID or holds the override capability.
func (p *Principal) Owns(userID string, override role.Capability) bool {
	if p == nil {
		return false
	}
	return p.UserID == userID || p.Role.Can(override)
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxKeyPrincipal).(*Principal)
	return p
}

func exposeErrors(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyExposeErrors).(bool)
	return v
}

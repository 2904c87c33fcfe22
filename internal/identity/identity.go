package identity

import (
	"context"
	"errors"
)

// ErrAuth wraps authentication failures (bad credentials, duplicate account)
// with the provider-supplied message.
var ErrAuth = errors.New("authentication failed")

// Identity is the authenticated user context used to key remote storage.
// A nil *Identity means signed-out.
type Identity struct {
	UID   string
	Email string
}

// Provider abstracts the authentication backend. OnChange callbacks receive
// the current identity, or nil after a logout.
//
//go:generate mockgen -source=identity.go -destination=identity_mock.go -package=identity
type Provider interface {
	Register(ctx context.Context, email, password string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, error)
	Logout(ctx context.Context) error
	OnChange(fn func(*Identity))
}

package auth

import (
	"context"

	"github.com/joewaine/best-self-ai/internal"
)

type Provider interface {
	Register(ctx context.Context, email, name, password string) (*internal.User, *internal.Session, error)
	Login(ctx context.Context, email, password string) (*internal.User, *internal.Session, error)
	Logout(ctx context.Context, token string) error
	// ValidateSession resolves a session token to its user, rejecting
	// unknown and expired sessions.
	ValidateSession(ctx context.Context, token string) (*internal.User, error)
}

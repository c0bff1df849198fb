package storage

import (
	"context"
	"errors"

	"github.com/joewaine/best-self-ai/internal"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

type ConversationRepository interface {
	CreateConversation(ctx context.Context, convo *internal.Conversation) error
	// GetConversation returns the conversation with its messages ordered by
	// created_at ascending, or ErrNotFound.
	GetConversation(ctx context.Context, id string) (*internal.Conversation, error)
	// ListConversations returns the user's conversations newest first,
	// without messages.
	ListConversations(ctx context.Context, userID string) ([]internal.Conversation, error)
	AddMessage(ctx context.Context, conversationID string, msg *internal.Message) error
	// DeleteConversation removes the conversation and cascades to its messages.
	DeleteConversation(ctx context.Context, id string) error
	UpdateConversationTitle(ctx context.Context, id, title string) error
}

type SettingsRepository interface {
	SetOuraToken(ctx context.Context, userID, token string) error
	// GetOuraToken returns "" (no error) when the user has not saved a token.
	GetOuraToken(ctx context.Context, userID string) (string, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *internal.Session) error
	GetSession(ctx context.Context, token string) (*internal.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Store is the full persistence surface; both backends implement all of it.
type Store interface {
	ConversationRepository
	SettingsRepository
	UserRepository
	SessionRepository
	Close() error
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joewaine/best-self-ai/internal"
	"github.com/joewaine/best-self-ai/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL matches the cookie lifetime the frontend expects.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidSession     = errors.New("auth: invalid session")
)

// SessionAuth implements email+password auth with opaque session tokens
// persisted in the session repository.
type SessionAuth struct {
	users    storage.UserRepository
	sessions storage.SessionRepository
	logger   internal.Logger
	now      func() time.Time
}

func NewSessionAuth(users storage.UserRepository, sessions storage.SessionRepository, logger internal.Logger, now func() time.Time) *SessionAuth {
	if now == nil {
		now = time.Now
	}
	return &SessionAuth{users: users, sessions: sessions, logger: logger, now: now}
}

func (a *SessionAuth) Register(ctx context.Context, email, name, password string) (*internal.User, *internal.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := a.users.GetUserByEmail(ctx, email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	user := &internal.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    a.now(),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}
	session, err := a.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Infof("registered user %s", user.ID)
	return user, session, nil
}

func (a *SessionAuth) Login(ctx context.Context, email, password string) (*internal.User, *internal.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	session, err := a.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (a *SessionAuth) Logout(ctx context.Context, token string) error {
	return a.sessions.DeleteSession(ctx, token)
}

func (a *SessionAuth) ValidateSession(ctx context.Context, token string) (*internal.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := a.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if !a.now().Before(session.ExpiresAt) {
		// Expired sessions are removed so the table does not accumulate.
		_ = a.sessions.DeleteSession(ctx, token)
		return nil, ErrInvalidSession
	}
	user, err := a.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return user, nil
}

func (a *SessionAuth) createSession(ctx context.Context, userID string) (*internal.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	session := &internal.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: a.now().Add(SessionTTL),
		CreatedAt: a.now(),
	}
	if err := a.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var _ Provider = (*SessionAuth)(nil)

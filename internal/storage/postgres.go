package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joewaine/best-self-ai/internal"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
CREATE TABLE IF NOT EXISTS user_settings (
	user_id    TEXT PRIMARY KEY,
	oura_token TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL
);
`

func NewPostgresStore(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		logger.Errorf("failed to ensure schema: %v", err)
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// --- ConversationRepository ---

func (p *PostgresStore) CreateConversation(ctx context.Context, convo *internal.Conversation) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		convo.ID, convo.UserID, convo.Title, convo.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert conversation: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) GetConversation(ctx context.Context, id string) (*internal.Conversation, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE id = $1`, id)
	var c internal.Conversation
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query conversation: %v", err)
		return nil, err
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		p.logger.Errorf("failed to query messages: %v", err)
		return nil, err
	}
	defer rows.Close()

	c.Messages = []internal.Message{}
	for rows.Next() {
		var m internal.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, m)
	}
	return &c, rows.Err()
}

func (p *PostgresStore) ListConversations(ctx context.Context, userID string) ([]internal.Conversation, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query conversations: %v", err)
		return nil, err
	}
	defer rows.Close()

	convos := []internal.Conversation{}
	for rows.Next() {
		var c internal.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Messages = []internal.Message{}
		convos = append(convos, c)
	}
	return convos, rows.Err()
}

func (p *PostgresStore) AddMessage(ctx context.Context, conversationID string, msg *internal.Message) error {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, conversationID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, conversationID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert message: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) DeleteConversation(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete conversation: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) UpdateConversationTitle(ctx context.Context, id, title string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE conversations SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		p.logger.Errorf("failed to update conversation title: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- SettingsRepository ---

func (p *PostgresStore) SetOuraToken(ctx context.Context, userID, token string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, oura_token, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET oura_token = EXCLUDED.oura_token, updated_at = EXCLUDED.updated_at`,
		userID, token, time.Now().UTC())
	if err != nil {
		p.logger.Errorf("failed to upsert oura token: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) GetOuraToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := p.pool.QueryRow(ctx,
		`SELECT oura_token FROM user_settings WHERE user_id = $1`, userID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		p.logger.Errorf("failed to query oura token: %v", err)
		return "", err
	}
	return token, nil
}

// --- UserRepository ---

func (p *PostgresStore) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`, email))
}

func (p *PostgresStore) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`, id))
}

func (p *PostgresStore) scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- SessionRepository ---

func (p *PostgresStore) CreateSession(ctx context.Context, session *internal.Session) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert session: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStore) GetSession(ctx context.Context, token string) (*internal.Session, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`, token)
	var s internal.Session
	if err := row.Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStore)(nil)

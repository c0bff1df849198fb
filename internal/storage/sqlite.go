package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/joewaine/best-self-ai/internal"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the zero-infrastructure backend: a single file, pure-Go
// driver. Timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db     *sql.DB
	logger internal.Logger
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT UNIQUE NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
CREATE TABLE IF NOT EXISTS user_settings (
	user_id    TEXT PRIMARY KEY,
	oura_token TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);
`

func NewSQLiteStore(path string, logger internal.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Errorf("failed to open sqlite database: %v", err)
		return nil, err
	}
	// modernc's driver is single-writer; serialize access through one conn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		logger.Errorf("failed to ensure schema: %v", err)
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// sqliteTimeLayout keeps a fixed-width fraction so text ordering matches
// chronological ordering (RFC3339Nano trims trailing zeros and does not).
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func decodeTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- ConversationRepository ---

func (s *SQLiteStore) CreateConversation(ctx context.Context, convo *internal.Conversation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at) VALUES (?, ?, ?, ?)`,
		convo.ID, convo.UserID, convo.Title, encodeTime(convo.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert conversation: %v", err)
	}
	return err
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*internal.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE id = ?`, id)
	var (
		c       internal.Conversation
		created string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.CreatedAt = decodeTime(created)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Messages = []internal.Message{}
	for rows.Next() {
		var (
			m  internal.Message
			ts string
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &ts); err != nil {
			return nil, err
		}
		m.CreatedAt = decodeTime(ts)
		c.Messages = append(c.Messages, m)
	}
	return &c, rows.Err()
}

func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]internal.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at FROM conversations WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convos := []internal.Conversation{}
	for rows.Next() {
		var (
			c       internal.Conversation
			created string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = decodeTime(created)
		c.Messages = []internal.Message{}
		convos = append(convos, c)
	}
	return convos, rows.Err()
}

func (s *SQLiteStore) AddMessage(ctx context.Context, conversationID string, msg *internal.Message) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, conversationID, msg.Role, msg.Content, encodeTime(msg.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert message: %v", err)
	}
	return err
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateConversationTitle(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE conversations SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- SettingsRepository ---

func (s *SQLiteStore) SetOuraToken(ctx context.Context, userID, token string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, oura_token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET oura_token = excluded.oura_token, updated_at = excluded.updated_at`,
		userID, token, encodeTime(time.Now()))
	if err != nil {
		s.logger.Errorf("failed to upsert oura token: %v", err)
	}
	return err
}

func (s *SQLiteStore) GetOuraToken(ctx context.Context, userID string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT oura_token FROM user_settings WHERE user_id = ?`, userID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// --- UserRepository ---

func (s *SQLiteStore) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, encodeTime(user.CreatedAt))
	if err != nil {
		s.logger.Errorf("failed to insert user: %v", err)
	}
	return err
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*internal.User, error) {
	var (
		u       internal.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.CreatedAt = decodeTime(created)
	return &u, nil
}

// --- SessionRepository ---

func (s *SQLiteStore) CreateSession(ctx context.Context, session *internal.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, encodeTime(session.ExpiresAt), encodeTime(session.CreatedAt))
	return err
}

func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*internal.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`, token)
	var (
		sess             internal.Session
		expires, created string
	)
	if err := row.Scan(&sess.Token, &sess.UserID, &expires, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.ExpiresAt = decodeTime(expires)
	sess.CreatedAt = decodeTime(created)
	return &sess, nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStore)(nil)

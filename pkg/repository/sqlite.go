package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements Repository on a local SQLite database file
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS queries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    problem TEXT NOT NULL,
    solution_guide TEXT,
    formula TEXT,
    explanation TEXT,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_queries_user ON queries (user_id, created_at);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS password_resets (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

// NewSQLite opens (or creates) the database at path and prepares the schema
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, goerr.Wrap(err, "failed to prepare sqlite schema")
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database handle
func (r *SQLite) Close() error {
	return r.db.Close()
}

// Timestamps are stored as RFC3339 strings so they survive the TEXT affinity
const timeFormat = time.RFC3339Nano

func (r *SQLite) PutQuery(ctx context.Context, query *model.Query) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO queries (id, user_id, problem, solution_guide, formula, explanation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(query.ID), string(query.UserID), query.Problem,
		query.SolutionGuide, query.Formula, query.Explanation,
		query.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert query", goerr.V("query_id", query.ID))
	}
	return nil
}

func (r *SQLite) ListQueriesByUser(ctx context.Context, userID model.UserID) ([]*model.Query, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, problem, solution_guide, formula, explanation, created_at
		 FROM queries
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		string(userID),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query history", goerr.V("user_id", userID))
	}
	defer rows.Close()

	var queries []*model.Query
	for rows.Next() {
		var q model.Query
		var createdAt string
		if err := rows.Scan(&q.ID, &q.UserID, &q.Problem, &q.SolutionGuide, &q.Formula, &q.Explanation, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan query row")
		}
		q.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid created_at in queries table", goerr.V("value", createdAt))
		}
		queries = append(queries, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate query rows")
	}

	return queries, nil
}

func (r *SQLite) DeleteQueriesByUser(ctx context.Context, userID model.UserID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queries WHERE user_id = ?`, string(userID)); err != nil {
		return goerr.Wrap(err, "failed to delete query history", goerr.V("user_id", userID))
	}
	return nil
}

func (r *SQLite) PutUser(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		string(user.ID), user.Email, user.PasswordHash, user.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert user", goerr.V("email", user.Email))
	}
	return nil
}

func (r *SQLite) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, string(id))
}

func (r *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *SQLite) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user")
	}
	u.CreatedAt, err = time.Parse(timeFormat, createdAt)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid created_at in users table", goerr.V("value", createdAt))
	}
	return &u, nil
}

func (r *SQLite) UpdateUserPassword(ctx context.Context, id model.UserID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to update password", goerr.V("user_id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.New("user not found", goerr.V("user_id", id))
	}
	return nil
}

func (r *SQLite) PutSession(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		string(session.Token), string(session.UserID),
		session.ExpiresAt.UTC().Format(timeFormat), session.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert session")
	}
	return nil
}

func (r *SQLite) GetSession(ctx context.Context, token model.SessionToken) (*model.Session, error) {
	var s model.Session
	var expiresAt, createdAt string
	err := r.db.QueryRowContext(ctx,
		`SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?`,
		string(token),
	).Scan(&s.Token, &s.UserID, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session")
	}
	if s.ExpiresAt, err = time.Parse(timeFormat, expiresAt); err != nil {
		return nil, goerr.Wrap(err, "invalid expires_at in sessions table", goerr.V("value", expiresAt))
	}
	if s.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, goerr.Wrap(err, "invalid created_at in sessions table", goerr.V("value", createdAt))
	}
	return &s, nil
}

func (r *SQLite) DeleteSession(ctx context.Context, token model.SessionToken) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, string(token)); err != nil {
		return goerr.Wrap(err, "failed to delete session")
	}
	return nil
}

func (r *SQLite) PutPasswordReset(ctx context.Context, reset *model.PasswordReset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO password_resets (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		reset.Token, string(reset.UserID),
		reset.ExpiresAt.UTC().Format(timeFormat), reset.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert password reset")
	}
	return nil
}

func (r *SQLite) ConsumePasswordReset(ctx context.Context, token string) (*model.PasswordReset, error) {
	var p model.PasswordReset
	var expiresAt, createdAt string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM password_resets WHERE token = ? RETURNING token, user_id, expires_at, created_at`,
		token,
	).Scan(&p.Token, &p.UserID, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to consume password reset")
	}
	if p.ExpiresAt, err = time.Parse(timeFormat, expiresAt); err != nil {
		return nil, goerr.Wrap(err, "invalid expires_at in password_resets table", goerr.V("value", expiresAt))
	}
	if p.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, goerr.Wrap(err, "invalid created_at in password_resets table", goerr.V("value", createdAt))
	}
	return &p, nil
}

package repository

import (
	"context"

	"github.com/sheetsage/sheetsage/pkg/model"
)

// Repository defines the interface for persisting users, sessions and
// query history. Lookup methods return (nil, nil) when no record exists;
// errors are reserved for backend failures.
type Repository interface {
	// PutQuery saves one problem/solution record
	PutQuery(ctx context.Context, query *model.Query) error

	// ListQueriesByUser retrieves all records of one user, newest first
	ListQueriesByUser(ctx context.Context, userID model.UserID) ([]*model.Query, error)

	// DeleteQueriesByUser removes every record of one user
	DeleteQueriesByUser(ctx context.Context, userID model.UserID) error

	// PutUser saves a new user account
	PutUser(ctx context.Context, user *model.User) error

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// GetUserByEmail retrieves a user by email address
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateUserPassword replaces the stored password hash of a user
	UpdateUserPassword(ctx context.Context, id model.UserID, passwordHash string) error

	// PutSession saves a login session
	PutSession(ctx context.Context, session *model.Session) error

	// GetSession retrieves a session by its token
	GetSession(ctx context.Context, token model.SessionToken) (*model.Session, error)

	// DeleteSession removes a session
	DeleteSession(ctx context.Context, token model.SessionToken) error

	// PutPasswordReset saves a password reset token
	PutPasswordReset(ctx context.Context, reset *model.PasswordReset) error

	// ConsumePasswordReset retrieves and removes a reset token so it can be
	// used at most once
	ConsumePasswordReset(ctx context.Context, token string) (*model.PasswordReset, error)
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type UserID string

// NewUserID generates a new unique UserID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

type User struct {
	ID           UserID    `firestore:"id" json:"id"`
	Email        string    `firestore:"email" json:"email"`
	PasswordHash string    `firestore:"password_hash" json:"-"`
	CreatedAt    time.Time `firestore:"created_at" json:"created_at"`
}

type SessionToken string

// NewSessionToken generates a new opaque session token
func NewSessionToken() SessionToken {
	return SessionToken(uuid.New().String())
}

// Session is an issued login session. The token is opaque to the client and
// carried in a cookie.
type Session struct {
	Token     SessionToken `firestore:"token" json:"-"`
	UserID    UserID       `firestore:"user_id" json:"user_id"`
	ExpiresAt time.Time    `firestore:"expires_at" json:"expires_at"`
	CreatedAt time.Time    `firestore:"created_at" json:"created_at"`
}

// Expired reports whether the session is no longer valid at the given time
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PasswordReset is a single-use expiring token for password recovery.
// Delivery of the token to the user (e.g. by email) is out of scope.
type PasswordReset struct {
	Token     string    `firestore:"token" json:"-"`
	UserID    UserID    `firestore:"user_id" json:"user_id"`
	ExpiresAt time.Time `firestore:"expires_at" json:"expires_at"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

// NewResetToken generates a new opaque password reset token
func NewResetToken() string {
	return uuid.New().String()
}

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/repository"
	"github.com/sheetsage/sheetsage/pkg/utils/logging"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// UseCase implements account lifecycle and session management. Password
// hashes use bcrypt; session and reset tokens are opaque single values
// stored server-side.
type UseCase struct {
	repo       repository.Repository
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

type Option func(*UseCase)

func WithSessionTTL(ttl time.Duration) Option {
	return func(u *UseCase) {
		u.sessionTTL = ttl
	}
}

func WithResetTTL(ttl time.Duration) Option {
	return func(u *UseCase) {
		u.resetTTL = ttl
	}
}

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(u *UseCase) {
		u.now = now
	}
}

func New(repo repository.Repository, opts ...Option) *UseCase {
	u := &UseCase{
		repo:       repo,
		sessionTTL: 7 * 24 * time.Hour,
		resetTTL:   time.Hour,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return goerr.Wrap(model.ErrInvalidInput, "a valid email address is required")
	}
	if len(password) < minPasswordLength {
		return goerr.Wrap(model.ErrInvalidInput, "password must be at least 8 characters")
	}
	return nil
}

// SignUp registers a new account with a unique email
func (u *UseCase) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	existing, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up existing account")
	}
	if existing != nil {
		return nil, goerr.Wrap(model.ErrEmailTaken, "account already exists", goerr.V("email", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}

	user := &model.User{
		ID:           model.NewUserID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    u.now().UTC(),
	}

	if err := u.repo.PutUser(ctx, user); err != nil {
		return nil, goerr.Wrap(err, "failed to create account")
	}

	return user, nil
}

// LogIn verifies credentials and issues a new session. Unknown email and
// wrong password are indistinguishable to the caller.
func (u *UseCase) LogIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up account")
	}
	if user == nil {
		return nil, goerr.Wrap(model.ErrInvalidCredential, "login rejected")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidCredential, "login rejected")
	}

	session := &model.Session{
		Token:     model.NewSessionToken(),
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.sessionTTL).UTC(),
		CreatedAt: u.now().UTC(),
	}

	if err := u.repo.PutSession(ctx, session); err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}

	return session, nil
}

// LogOut invalidates a session token. Unknown tokens are ignored.
func (u *UseCase) LogOut(ctx context.Context, token model.SessionToken) error {
	if token == "" {
		return nil
	}
	if err := u.repo.DeleteSession(ctx, token); err != nil {
		return goerr.Wrap(err, "failed to delete session")
	}
	return nil
}

// Resolve turns a session token into the current user, or nil for an
// anonymous or expired session. It is called once per request at the
// boundary; core logic receives the result explicitly.
func (u *UseCase) Resolve(ctx context.Context, token model.SessionToken) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	session, err := u.repo.GetSession(ctx, token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session")
	}
	if session == nil || session.Expired(u.now()) {
		return nil, nil
	}

	user, err := u.repo.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session user")
	}
	return user, nil
}

// RequestPasswordReset issues a single-use expiring token for the account.
// The token is surfaced to the operator log only; delivering it to the user
// is an external concern and the HTTP layer must never echo it. Unknown
// emails return (nil, nil) so the endpoint does not reveal which addresses
// have accounts.
func (u *UseCase) RequestPasswordReset(ctx context.Context, email string) (*model.PasswordReset, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := u.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up account")
	}
	if user == nil {
		return nil, nil
	}

	reset := &model.PasswordReset{
		Token:     model.NewResetToken(),
		UserID:    user.ID,
		ExpiresAt: u.now().Add(u.resetTTL).UTC(),
		CreatedAt: u.now().UTC(),
	}

	if err := u.repo.PutPasswordReset(ctx, reset); err != nil {
		return nil, goerr.Wrap(err, "failed to save password reset")
	}

	logging.From(ctx).Info("password reset requested",
		"user_id", user.ID,
		"reset_token", reset.Token,
		"expires_at", reset.ExpiresAt,
	)

	return reset, nil
}

// ResetPassword consumes a reset token and replaces the account password
func (u *UseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return goerr.Wrap(model.ErrInvalidInput, "password must be at least 8 characters")
	}

	reset, err := u.repo.ConsumePasswordReset(ctx, token)
	if err != nil {
		return goerr.Wrap(err, "failed to consume password reset")
	}
	if reset == nil || u.now().After(reset.ExpiresAt) {
		return goerr.Wrap(model.ErrResetTokenInvalid, "reset rejected")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return goerr.Wrap(err, "failed to hash password")
	}

	if err := u.repo.UpdateUserPassword(ctx, reset.UserID, string(hash)); err != nil {
		return goerr.Wrap(err, "failed to update password")
	}

	return nil
}

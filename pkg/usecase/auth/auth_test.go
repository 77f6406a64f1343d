package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/repository"
	"github.com/sheetsage/sheetsage/pkg/usecase/auth"
)

func setupRepo(t *testing.T) *repository.SQLite {
	repo, err := repository.NewSQLite(filepath.Join(t.TempDir(), "auth.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestSignUpAndLogIn(t *testing.T) {
	repo := setupRepo(t)
	uc := auth.New(repo)
	ctx := context.Background()

	user, err := uc.SignUp(ctx, "Alice@Example.com", "correct horse battery")
	gt.NoError(t, err)
	gt.Equal(t, user.Email, "alice@example.com")
	gt.V(t, user.PasswordHash).NotEqual("correct horse battery")

	session, err := uc.LogIn(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)
	gt.Equal(t, session.UserID, user.ID)

	resolved, err := uc.Resolve(ctx, session.Token)
	gt.NoError(t, err)
	gt.V(t, resolved).NotNil()
	gt.Equal(t, resolved.ID, user.ID)
}

func TestSignUpValidation(t *testing.T) {
	repo := setupRepo(t)
	uc := auth.New(repo)
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "not-an-email", "long enough password")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidInput))

	_, err = uc.SignUp(ctx, "alice@example.com", "short")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)
	uc := auth.New(repo)
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)

	_, err = uc.SignUp(ctx, "ALICE@example.com", "another password")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrEmailTaken))
}

func TestLogInRejected(t *testing.T) {
	repo := setupRepo(t)
	uc := auth.New(repo)
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)

	// Wrong password and unknown email fail the same way
	_, err = uc.LogIn(ctx, "alice@example.com", "wrong password!")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidCredential))

	_, err = uc.LogIn(ctx, "nobody@example.com", "correct horse battery")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidCredential))
}

func TestResolveAnonymousAndExpired(t *testing.T) {
	repo := setupRepo(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := auth.New(repo,
		auth.WithSessionTTL(time.Hour),
		auth.WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	// Empty token resolves to anonymous, not an error
	user, err := uc.Resolve(ctx, "")
	gt.NoError(t, err)
	gt.V(t, user).Nil()

	_, err = uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)
	session, err := uc.LogIn(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)

	resolved, err := uc.Resolve(ctx, session.Token)
	gt.NoError(t, err)
	gt.V(t, resolved).NotNil()

	// Past the TTL the session silently resolves to anonymous
	current = current.Add(2 * time.Hour)
	resolved, err = uc.Resolve(ctx, session.Token)
	gt.NoError(t, err)
	gt.V(t, resolved).Nil()
}

func TestLogOut(t *testing.T) {
	repo := setupRepo(t)
	uc := auth.New(repo)
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)
	session, err := uc.LogIn(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)

	gt.NoError(t, uc.LogOut(ctx, session.Token))

	resolved, err := uc.Resolve(ctx, session.Token)
	gt.NoError(t, err)
	gt.V(t, resolved).Nil()

	// Unknown token is ignored
	gt.NoError(t, uc.LogOut(ctx, session.Token))
}

func TestPasswordReset(t *testing.T) {
	repo := setupRepo(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := auth.New(repo, auth.WithClock(func() time.Time { return current }))
	ctx := context.Background()

	user, err := uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)

	// Unknown email succeeds silently with no token issued
	none, err := uc.RequestPasswordReset(ctx, "nobody@example.com")
	gt.NoError(t, err)
	gt.V(t, none).Nil()

	reset, err := uc.RequestPasswordReset(ctx, "alice@example.com")
	gt.NoError(t, err)
	gt.V(t, reset).NotNil()
	gt.Equal(t, reset.UserID, user.ID)

	gt.NoError(t, uc.ResetPassword(ctx, reset.Token, "new password here"))

	_, err = uc.LogIn(ctx, "alice@example.com", "correct horse battery")
	gt.Error(t, err)
	session, err := uc.LogIn(ctx, "alice@example.com", "new password here")
	gt.NoError(t, err)
	gt.Equal(t, session.UserID, user.ID)

	// Consumed token cannot be replayed
	err = uc.ResetPassword(ctx, reset.Token, "yet another password")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrResetTokenInvalid))
}

func TestPasswordResetExpiry(t *testing.T) {
	repo := setupRepo(t)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := auth.New(repo,
		auth.WithResetTTL(time.Hour),
		auth.WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	_, err := uc.SignUp(ctx, "alice@example.com", "correct horse battery")
	gt.NoError(t, err)
	reset, err := uc.RequestPasswordReset(ctx, "alice@example.com")
	gt.NoError(t, err)
	gt.V(t, reset).NotNil()

	current = current.Add(2 * time.Hour)
	err = uc.ResetPassword(ctx, reset.Token, "new password here")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrResetTokenInvalid))
}

package history

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/repository"
)

// List returns the user's past queries, newest first. The user is the
// externally-resolved principal; authorization is by filter only and no
// operation can touch another user's records.
func List(ctx context.Context, repo repository.Repository, user *model.User) ([]*model.Query, error) {
	if user == nil {
		return nil, goerr.Wrap(model.ErrAuthRequired, "login is required to view history")
	}

	queries, err := repo.ListQueriesByUser(ctx, user.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list query history")
	}

	return queries, nil
}

// Clear deletes all of the user's records. There is no selective delete;
// calling it with nothing stored is a no-op.
func Clear(ctx context.Context, repo repository.Repository, user *model.User) error {
	if user == nil {
		return goerr.Wrap(model.ErrAuthRequired, "login is required to clear history")
	}

	if err := repo.DeleteQueriesByUser(ctx, user.ID); err != nil {
		return goerr.Wrap(err, "failed to clear query history")
	}

	return nil
}

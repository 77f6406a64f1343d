package solve

import (
	"context"
	"time"

	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/repository"
	"github.com/sheetsage/sheetsage/pkg/utils/logging"
)

// Submitter runs the generate-then-maybe-persist pipeline for one
// submission. Generation and persistence are decoupled failure domains: a
// storage failure never hides a generated solution from the user.
type Submitter struct {
	flow *Flow
	repo repository.Repository
}

func NewSubmitter(flow *Flow, repo repository.Repository) *Submitter {
	return &Submitter{flow: flow, repo: repo}
}

// Result is the outcome of one submission. QueryID is set and Saved is true
// only when a history record was persisted; clients use Saved as the signal
// that any cached history listing is stale.
type Result struct {
	Solution *model.Solution `json:"solution"`
	QueryID  model.QueryID   `json:"queryId,omitempty"`
	Saved    bool            `json:"saved"`
}

// Submit generates a solution and, for an authenticated user, records it in
// the history store. user is nil for anonymous submissions; that is the
// expected path, not an error.
func (s *Submitter) Submit(ctx context.Context, problem string, user *model.User) (*Result, error) {
	solution, err := s.flow.Generate(ctx, problem)
	if err != nil {
		return nil, err
	}

	result := &Result{Solution: solution}

	if user == nil {
		return result, nil
	}

	query := &model.Query{
		ID:            model.NewQueryID(),
		UserID:        user.ID,
		Problem:       problem,
		SolutionGuide: solution.StepByStepGuide,
		Formula:       solution.Formula,
		Explanation:   solution.Explanation,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.PutQuery(ctx, query); err != nil {
		// Operator-visible, user-invisible: the solution is still returned
		logging.From(ctx).Error("failed to save query history",
			"error", err,
			"user_id", user.ID,
			"query_id", query.ID,
		)
		return result, nil
	}

	result.QueryID = query.ID
	result.Saved = true
	return result, nil
}

package solve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/sheetsage/sheetsage/pkg/model"
	"github.com/sheetsage/sheetsage/pkg/usecase/solve"
)

// Mock Repository: only the query methods matter for submission
type mockRepository struct {
	queries   []*model.Query
	putErr    error
	putCalled int
}

func (m *mockRepository) PutQuery(ctx context.Context, query *model.Query) error {
	m.putCalled++
	if m.putErr != nil {
		return m.putErr
	}
	m.queries = append(m.queries, query)
	return nil
}

func (m *mockRepository) ListQueriesByUser(ctx context.Context, userID model.UserID) ([]*model.Query, error) {
	var result []*model.Query
	for _, q := range m.queries {
		if q.UserID == userID {
			result = append(result, q)
		}
	}
	return result, nil
}

func (m *mockRepository) DeleteQueriesByUser(ctx context.Context, userID model.UserID) error {
	var kept []*model.Query
	for _, q := range m.queries {
		if q.UserID != userID {
			kept = append(kept, q)
		}
	}
	m.queries = kept
	return nil
}

func (m *mockRepository) PutUser(ctx context.Context, user *model.User) error { return nil }
func (m *mockRepository) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return nil, nil
}
func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockRepository) UpdateUserPassword(ctx context.Context, id model.UserID, passwordHash string) error {
	return nil
}
func (m *mockRepository) PutSession(ctx context.Context, session *model.Session) error { return nil }
func (m *mockRepository) GetSession(ctx context.Context, token model.SessionToken) (*model.Session, error) {
	return nil, nil
}
func (m *mockRepository) DeleteSession(ctx context.Context, token model.SessionToken) error {
	return nil
}
func (m *mockRepository) PutPasswordReset(ctx context.Context, reset *model.PasswordReset) error {
	return nil
}
func (m *mockRepository) ConsumePasswordReset(ctx context.Context, token string) (*model.PasswordReset, error) {
	return nil, nil
}

const validResponse = `{
	"stepByStepGuide": "<p>Use SUMIF</p>",
	"formula": "=SUMIF(B:B,\"Sales\",A:A)",
	"explanation": "<p>It sums matches.</p>"
}`

func TestSubmitAuthenticated(t *testing.T) {
	repo := &mockRepository{}
	submitter := solve.NewSubmitter(solve.NewFlow(&mockGemini{response: textResponse(validResponse)}), repo)

	user := &model.User{ID: model.NewUserID(), Email: "alice@example.com"}
	problem := "How do I sum values in column A if column B says 'Sales'?"

	result, err := submitter.Submit(context.Background(), problem, user)
	gt.NoError(t, err)
	gt.NotNil(t, result.Solution)
	gt.True(t, result.Saved)
	gt.V(t, result.QueryID).NotEqual(model.QueryID(""))

	gt.A(t, repo.queries).Length(1)
	saved := repo.queries[0]
	gt.Equal(t, saved.UserID, user.ID)
	gt.Equal(t, saved.Problem, problem)
	gt.Equal(t, saved.Formula, `=SUMIF(B:B,"Sales",A:A)`)
	gt.Equal(t, saved.SolutionGuide, "<p>Use SUMIF</p>")
}

func TestSubmitAnonymous(t *testing.T) {
	repo := &mockRepository{}
	submitter := solve.NewSubmitter(solve.NewFlow(&mockGemini{response: textResponse(validResponse)}), repo)

	// No persistence attempt for anonymous use; this is not an error path
	result, err := submitter.Submit(context.Background(), "sum a column", nil)
	gt.NoError(t, err)
	gt.NotNil(t, result.Solution)
	gt.False(t, result.Saved)
	gt.V(t, result.QueryID).Equal(model.QueryID(""))
	gt.V(t, repo.putCalled).Equal(0)
}

func TestSubmitPersistenceFailureIsNonFatal(t *testing.T) {
	repo := &mockRepository{putErr: goerr.New("backend unavailable")}
	submitter := solve.NewSubmitter(solve.NewFlow(&mockGemini{response: textResponse(validResponse)}), repo)

	user := &model.User{ID: model.NewUserID(), Email: "alice@example.com"}

	// The insert failure must never surface as the top-level error
	result, err := submitter.Submit(context.Background(), "sum a column", user)
	gt.NoError(t, err)
	gt.NotNil(t, result.Solution)
	gt.False(t, result.Saved)
	gt.V(t, result.QueryID).Equal(model.QueryID(""))
	gt.V(t, repo.putCalled).Equal(1)
}

func TestSubmitGenerationFailure(t *testing.T) {
	repo := &mockRepository{}
	submitter := solve.NewSubmitter(solve.NewFlow(&mockGemini{err: errors.New("quota exceeded")}), repo)

	user := &model.User{ID: model.NewUserID(), Email: "alice@example.com"}

	_, err := submitter.Submit(context.Background(), "sum a column", user)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrGeneration))
	gt.V(t, repo.putCalled).Equal(0)
}

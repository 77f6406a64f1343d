package model

import (
	"time"

	"github.com/google/uuid"
)

type QueryID string

// NewQueryID generates a new unique QueryID
func NewQueryID() QueryID {
	return QueryID(uuid.New().String())
}

// Query is one persisted problem/solution pair, scoped to a single user.
// Solution fields keep the shape returned by the generation flow: the guide
// and explanation are HTML fragments, the formula is plain text.
type Query struct {
	ID            QueryID   `firestore:"id" json:"id"`
	UserID        UserID    `firestore:"user_id" json:"user_id"`
	Problem       string    `firestore:"problem" json:"problem"`
	SolutionGuide string    `firestore:"solution_guide" json:"solution_guide"`
	Formula       string    `firestore:"formula" json:"formula"`
	Explanation   string    `firestore:"explanation" json:"explanation"`
	CreatedAt     time.Time `firestore:"created_at" json:"created_at"`
}

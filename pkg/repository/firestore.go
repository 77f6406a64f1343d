package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements Repository using Cloud Firestore as the hosted backend
type Firestore struct {
	client *firestore.Client
}

const (
	collectionQueries        = "queries"
	collectionUsers          = "users"
	collectionSessions       = "sessions"
	collectionPasswordResets = "password_resets"
)

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close closes the underlying Firestore client
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutQuery(ctx context.Context, query *model.Query) error {
	_, err := r.client.Collection(collectionQueries).Doc(string(query.ID)).Set(ctx, query)
	if err != nil {
		return goerr.Wrap(err, "failed to save query", goerr.V("query_id", query.ID))
	}
	return nil
}

func (r *Firestore) ListQueriesByUser(ctx context.Context, userID model.UserID) ([]*model.Query, error) {
	iter := r.client.Collection(collectionQueries).
		Where("user_id", "==", string(userID)).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var queries []*model.Query
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate queries", goerr.V("user_id", userID))
		}

		var q model.Query
		if err := doc.DataTo(&q); err != nil {
			return nil, goerr.Wrap(err, "failed to decode query document", goerr.V("doc", doc.Ref.ID))
		}
		queries = append(queries, &q)
	}

	return queries, nil
}

func (r *Firestore) DeleteQueriesByUser(ctx context.Context, userID model.UserID) error {
	iter := r.client.Collection(collectionQueries).
		Where("user_id", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate queries for deletion", goerr.V("user_id", userID))
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to schedule query deletion", goerr.V("doc", doc.Ref.ID))
		}
	}
	bw.End()

	return nil
}

func (r *Firestore) PutUser(ctx context.Context, user *model.User) error {
	_, err := r.client.Collection(collectionUsers).Doc(string(user.ID)).Set(ctx, user)
	if err != nil {
		return goerr.Wrap(err, "failed to save user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (r *Firestore) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	doc, err := r.client.Collection(collectionUsers).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("user_id", id))
	}
	return &u, nil
}

func (r *Firestore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	iter := r.client.Collection(collectionUsers).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up user by email")
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user document", goerr.V("doc", doc.Ref.ID))
	}
	return &u, nil
}

func (r *Firestore) UpdateUserPassword(ctx context.Context, id model.UserID, passwordHash string) error {
	_, err := r.client.Collection(collectionUsers).Doc(string(id)).Update(ctx, []firestore.Update{
		{Path: "password_hash", Value: passwordHash},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to update password", goerr.V("user_id", id))
	}
	return nil
}

func (r *Firestore) PutSession(ctx context.Context, session *model.Session) error {
	_, err := r.client.Collection(collectionSessions).Doc(string(session.Token)).Set(ctx, session)
	if err != nil {
		return goerr.Wrap(err, "failed to save session")
	}
	return nil
}

func (r *Firestore) GetSession(ctx context.Context, token model.SessionToken) (*model.Session, error) {
	doc, err := r.client.Collection(collectionSessions).Doc(string(token)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session")
	}

	var s model.Session
	if err := doc.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session document")
	}
	s.Token = token
	return &s, nil
}

func (r *Firestore) DeleteSession(ctx context.Context, token model.SessionToken) error {
	if _, err := r.client.Collection(collectionSessions).Doc(string(token)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session")
	}
	return nil
}

func (r *Firestore) PutPasswordReset(ctx context.Context, reset *model.PasswordReset) error {
	_, err := r.client.Collection(collectionPasswordResets).Doc(reset.Token).Set(ctx, reset)
	if err != nil {
		return goerr.Wrap(err, "failed to save password reset")
	}
	return nil
}

func (r *Firestore) ConsumePasswordReset(ctx context.Context, token string) (*model.PasswordReset, error) {
	ref := r.client.Collection(collectionPasswordResets).Doc(token)

	// Get and delete in one transaction so a token can only be consumed once
	var reset *model.PasswordReset
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			reset = nil
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to get password reset")
		}

		var p model.PasswordReset
		if err := doc.DataTo(&p); err != nil {
			return goerr.Wrap(err, "failed to decode password reset document")
		}
		p.Token = token
		reset = &p

		return tx.Delete(ref)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to consume password reset")
	}

	return reset, nil
}

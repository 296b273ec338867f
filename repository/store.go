// Package repository is the MongoDB persistence layer for users, events and
// cancellation requests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection        = "users"
	EventsCollection       = "events"
	CancelEventsCollection = "cancel_events"

	opTimeout = 5 * time.Second
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store groups the collection repositories over one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users         *UserRepository
	Events        *EventRepository
	Cancellations *CancelEventRepository
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		client:        db.Client(),
		db:            db,
		Users:         &UserRepository{col: db.Collection(UsersCollection)},
		Events:        &EventRepository{col: db.Collection(EventsCollection)},
		Cancellations: &CancelEventRepository{col: db.Collection(CancelEventsCollection)},
	}
}

// WithTransaction runs fn inside a multi-document transaction. Repository
// calls made with the ctx passed to fn join the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

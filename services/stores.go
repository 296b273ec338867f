// Package services holds the account, event and cancellation logic. It
// depends on small store interfaces so the MongoDB repositories can be
// swapped for mocks in tests.
package services

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/event-booking-go/models"
	repository "github.com/phillip/event-booking-go/repository"
	utils "github.com/phillip/event-booking-go/utils"
)

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[string]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type EventStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindBySlot(ctx context.Context, venue, date, clock string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Find(ctx context.Context, filter bson.M) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByType(ctx context.Context) (map[string]int, error)
}

type CancelEventStore interface {
	Create(ctx context.Context, req *models.CancelEvent) error
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*models.CancelEvent, error)
	ListNewestFirst(ctx context.Context) ([]models.CancelEvent, error)
	DeleteByEventID(ctx context.Context, eventID primitive.ObjectID) error
}

// Transactor runs fn atomically; stores called with the ctx given to fn
// take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type MediaStore interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type Mailer interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

// Actor is the authenticated caller.
type Actor struct {
	UserID string
	Admin  bool
}

// CanActFor reports whether the actor may operate on userID's records.
func (a Actor) CanActFor(userID string) bool {
	return a.Admin || (a.UserID != "" && a.UserID == userID)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}

// parseID turns a hex id into an ObjectID, reporting missing and malformed
// ids as bad requests.
func parseID(raw, label string) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, utils.BadRequest(label + " is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("invalid " + label)
	}
	return id, nil
}

// asAPIError passes ApiErrors through and wraps anything else as internal.
func asAPIError(err error, message string) error {
	var apiErr *utils.ApiError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return utils.Internal(message, err)
}

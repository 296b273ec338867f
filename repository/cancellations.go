package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/event-booking-go/models"
)

type CancelEventRepository struct {
	col *mongo.Collection
}

func (r *CancelEventRepository) Create(ctx context.Context, req *models.CancelEvent) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	if req.Progress == "" {
		req.Progress = models.ProgressUnderProcess
	}
	req.CreatedAt = now
	req.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("insert cancel request: %w", mapErr(err))
	}
	return nil
}

func (r *CancelEventRepository) FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*models.CancelEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var req models.CancelEvent
	if err := r.col.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&req); err != nil {
		return nil, mapErr(err)
	}
	return &req, nil
}

func (r *CancelEventRepository) ListNewestFirst(ctx context.Context) ([]models.CancelEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cancel requests: %w", err)
	}

	reqs := []models.CancelEvent{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("decode cancel requests: %w", err)
	}
	return reqs, nil
}

func (r *CancelEventRepository) DeleteByEventID(ctx context.Context, eventID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return fmt.Errorf("delete cancel requests: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

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

type EventRepository struct {
	col *mongo.Collection
}

func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var event models.Event
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

// FindBySlot returns the event booked at venue on date and time, if any.
func (r *EventRepository) FindBySlot(ctx context.Context, venue, date, clock string) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"venue": venue, "event_date": date, "event_time": clock}

	var event models.Event
	if err := r.col.FindOne(ctx, filter).Decode(&event); err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert event: %w", mapErr(err))
	}
	return nil
}

// Find lists events matching filter, oldest first.
func (r *EventRepository) Find(ctx context.Context, filter bson.M) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range set {
		doc[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event models.Event
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": doc}, opts).Decode(&event)
	if err != nil {
		return nil, mapErr(err)
	}
	return &event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByType groups events by event_type. Missing types come back as "".
func (r *EventRepository) CountByType(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$event_type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate event counts: %w", err)
	}

	var rows []struct {
		Type  *string `bson:"_id"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode event counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		key := ""
		if row.Type != nil {
			key = *row.Type
		}
		counts[key] += row.Count
	}
	return counts, nil
}

package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique constraints the services rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_email"),
			},
		},
		EventsCollection: {
			{
				Keys: bson.D{
					{Key: "venue", Value: 1},
					{Key: "event_date", Value: 1},
					{Key: "event_time", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("uniq_venue_slot"),
			},
			{
				Keys:    bson.D{{Key: "user", Value: 1}},
				Options: options.Index().SetName("by_user"),
			},
			{
				Keys:    bson.D{{Key: "event_type", Value: 1}},
				Options: options.Index().SetName("by_event_type"),
			},
		},
		CancelEventsCollection: {
			{
				Keys:    bson.D{{Key: "event_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_pending_event"),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("by_created_at"),
			},
		},
	}

	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

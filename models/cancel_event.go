package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgressUnderProcess is the only state a stored request has; approval
// deletes the request instead of advancing it.
const ProgressUnderProcess = "underprocess"

type CancelEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"event_id" json:"event_id"`
	Progress  string             `bson:"progress" json:"progress"`
	Reason    *string            `bson:"reason,omitempty" json:"reason"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

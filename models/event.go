package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user" json:"user"` // Owner
	EventType    string             `bson:"event_type" json:"event_type"`
	EventDate    string             `bson:"event_date" json:"event_date"` // YYYY-MM-DD
	EventTime    string             `bson:"event_time" json:"event_time"` // matched as an exact string
	NumOfMembers int                `bson:"num_of_members" json:"num_of_members"`
	Venue        string             `bson:"venue" json:"venue"`
	TotalPrice   float64            `bson:"total_price" json:"total_price"`
	Images       []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// EventView is an event with the owner's contact fields copied up.
type EventView struct {
	ID           primitive.ObjectID `json:"id"`
	UserID       primitive.ObjectID `json:"user"`
	Name         string             `json:"name,omitempty"`
	Email        string             `json:"email,omitempty"`
	Phone        string             `json:"phone,omitempty"`
	Address      string             `json:"address,omitempty"`
	EventType    string             `json:"event_type"`
	EventDate    string             `json:"event_date"`
	EventTime    string             `json:"event_time"`
	NumOfMembers int                `json:"num_of_members"`
	Venue        string             `json:"venue"`
	TotalPrice   float64            `json:"total_price"`
	Images       []string           `json:"images,omitempty"`
}

// AllEvents is the category sentinel that disables filtering and labels the total count.
const AllEvents = "All Events"

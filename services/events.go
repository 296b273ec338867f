package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	metrics "github.com/phillip/event-booking-go/metrics"
	models "github.com/phillip/event-booking-go/models"
	utils "github.com/phillip/event-booking-go/utils"
)

const slotTakenMessage = "This time slot is already booked at this venue"

// EventRegistry manages venue bookings.
type EventRegistry struct {
	users  UserStore
	events EventStore
	tx     Transactor
	media  MediaStore
	logger zerolog.Logger
}

// NewEventRegistry builds a registry. media may be nil when image hosting is
// not configured.
func NewEventRegistry(users UserStore, events EventStore, tx Transactor, media MediaStore, logger zerolog.Logger) *EventRegistry {
	return &EventRegistry{users: users, events: events, tx: tx, media: media, logger: logger}
}

type CreateEventInput struct {
	UserID       string   `json:"user_id" form:"user_id" validate:"required"`
	Address      string   `json:"address" form:"address"`
	EventType    string   `json:"event_type" form:"event_type" validate:"required"`
	EventDate    string   `json:"event_date" form:"event_date" validate:"required,datetime=2006-01-02"`
	EventTime    string   `json:"event_time" form:"event_time" validate:"required"`
	NumOfMembers int      `json:"num_of_members" form:"num_of_members" validate:"required,gt=0"`
	Venue        string   `json:"venue" form:"venue" validate:"required"`
	TotalPrice   float64  `json:"total_price" form:"total_price" validate:"required,gt=0"`
	Images       []string `json:"-" form:"-"`
}

// EventWithOwner pairs an event with its owner. Owner is nil when the owning
// user no longer exists.
type EventWithOwner struct {
	Event models.Event
	Owner *models.User
}

func (r *EventRegistry) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	input.EventType = strings.TrimSpace(input.EventType)
	input.Venue = strings.TrimSpace(input.Venue)
	input.EventTime = strings.TrimSpace(input.EventTime)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	userID, err := parseID(input.UserID, "user id")
	if err != nil {
		return nil, err
	}

	if _, err := r.users.FindByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("User does not exist")
		}
		return nil, utils.Internal("could not load user", err)
	}

	if input.Address != "" {
		if _, err := r.users.Update(ctx, userID, bson.M{"address": input.Address}); err != nil {
			return nil, utils.Internal("could not update user address", err)
		}
	}

	existing, err := r.events.FindBySlot(ctx, input.Venue, input.EventDate, input.EventTime)
	if err != nil && !isNotFound(err) {
		return nil, utils.Internal("could not check venue availability", err)
	}
	if existing != nil {
		metrics.BookingConflicts.Inc()
		return nil, utils.Conflict(slotTakenMessage)
	}

	event := &models.Event{
		UserID:       userID,
		EventType:    input.EventType,
		EventDate:    input.EventDate,
		EventTime:    input.EventTime,
		NumOfMembers: input.NumOfMembers,
		Venue:        input.Venue,
		TotalPrice:   input.TotalPrice,
		Images:       input.Images,
	}
	if err := r.events.Create(ctx, event); err != nil {
		// lost the race to a concurrent booking of the same slot
		if isDuplicate(err) {
			metrics.BookingConflicts.Inc()
			return nil, utils.Conflict(slotTakenMessage)
		}
		return nil, utils.Internal("could not create event", err)
	}

	metrics.BookingsCreated.Inc()
	zerolog.Ctx(ctx).Info().
		Str("event_id", event.ID.Hex()).
		Str("venue", event.Venue).
		Str("date", event.EventDate).
		Str("time", event.EventTime).
		Msg("event booked")
	return event, nil
}

func (r *EventRegistry) GetEvent(ctx context.Context, rawID string) (*EventWithOwner, error) {
	id, err := parseID(rawID, "Event ID")
	if err != nil {
		return nil, err
	}

	event, err := r.events.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Event not found")
		}
		return nil, utils.Internal("could not load event", err)
	}

	owners, err := r.users.FindByIDs(ctx, []primitive.ObjectID{event.UserID})
	if err != nil {
		return nil, utils.Internal("could not load event owner", err)
	}
	return withOwner(*event, owners), nil
}

// EventsByCategory lists events of one type. An empty category or AllEvents
// lists everything.
func (r *EventRegistry) EventsByCategory(ctx context.Context, category string) ([]EventWithOwner, error) {
	filter := bson.M{}
	if category = strings.TrimSpace(category); category != "" && category != models.AllEvents {
		filter["event_type"] = category
	}

	events, err := r.events.Find(ctx, filter)
	if err != nil {
		return nil, utils.Internal("could not fetch events", err)
	}
	if len(events) == 0 {
		return nil, utils.NotFound("No events found for this category")
	}

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, ev := range events {
		if !seen[ev.UserID] {
			seen[ev.UserID] = true
			ids = append(ids, ev.UserID)
		}
	}
	owners, err := r.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, utils.Internal("could not load event owners", err)
	}

	out := make([]EventWithOwner, 0, len(events))
	for _, ev := range events {
		out = append(out, *withOwner(ev, owners))
	}
	return out, nil
}

func (r *EventRegistry) EventsOfUser(ctx context.Context, rawUserID string) ([]models.Event, error) {
	userID, err := parseID(rawUserID, "User ID")
	if err != nil {
		return nil, err
	}

	if _, err := r.users.FindByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("User does not exist")
		}
		return nil, utils.Internal("could not load user", err)
	}

	events, err := r.events.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, utils.Internal("could not fetch events", err)
	}
	if len(events) == 0 {
		return nil, utils.NotFound("No events found for this user")
	}
	return events, nil
}

// EventCounts maps each event type to its number of events. Events without
// a type count as "Uncategorized"; AllEvents holds the overall total.
func (r *EventRegistry) EventCounts(ctx context.Context) (map[string]int, error) {
	raw, err := r.events.CountByType(ctx)
	if err != nil {
		return nil, utils.Internal("could not count events", err)
	}

	counts := make(map[string]int, len(raw)+1)
	total := 0
	for category, n := range raw {
		if category == "" {
			category = "Uncategorized"
		}
		counts[category] += n
		total += n
	}
	counts[models.AllEvents] = total
	return counts, nil
}

type UpdateEventInput struct {
	EventID      string  `json:"-"`
	UserID       string  `json:"user_id" form:"user_id" validate:"required"`
	Name         string  `json:"name" form:"name"`
	Email        string  `json:"email" form:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone" form:"phone"`
	Address      string  `json:"address" form:"address"`
	EventType    string  `json:"event_type" form:"event_type"`
	EventDate    string  `json:"event_date" form:"event_date" validate:"omitempty,datetime=2006-01-02"`
	EventTime    string  `json:"event_time" form:"event_time"`
	NumOfMembers int     `json:"num_of_members" form:"num_of_members" validate:"omitempty,gt=0"`
	Venue        string  `json:"venue" form:"venue"`
	TotalPrice   float64 `json:"total_price" form:"total_price" validate:"omitempty,gt=0"`
}

type UpdateEventResult struct {
	User  models.User  `json:"user"`
	Event models.Event `json:"event"`
}

// UpdateEvent applies the non-empty user fields and event fields of input.
// Both records must exist and, unless actor is an admin, both must belong to
// actor before anything is written. The two writes share one transaction.
func (r *EventRegistry) UpdateEvent(ctx context.Context, actor Actor, input UpdateEventInput) (*UpdateEventResult, error) {
	if input.UserID == "" {
		return nil, utils.BadRequest("User ID is required")
	}
	if input.EventID == "" {
		return nil, utils.BadRequest("Event ID is required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	userID, err := parseID(input.UserID, "User ID")
	if err != nil {
		return nil, err
	}
	eventID, err := parseID(input.EventID, "Event ID")
	if err != nil {
		return nil, err
	}

	user, err := r.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("User does not exist")
		}
		return nil, utils.Internal("could not load user", err)
	}
	event, err := r.events.FindByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Event does not exist")
		}
		return nil, utils.Internal("could not load event", err)
	}
	if !actor.CanActFor(userID.Hex()) || !actor.CanActFor(event.UserID.Hex()) {
		return nil, utils.Forbidden("Access denied")
	}

	userSet := bson.M{}
	if input.Name != "" {
		userSet["name"] = input.Name
	}
	if input.Email != "" {
		userSet["email"] = input.Email
	}
	if input.Phone != "" {
		userSet["phone"] = input.Phone
	}
	if input.Address != "" {
		userSet["address"] = input.Address
	}

	eventSet := bson.M{}
	if input.EventType != "" {
		eventSet["event_type"] = input.EventType
	}
	if input.EventDate != "" {
		eventSet["event_date"] = input.EventDate
	}
	if input.EventTime != "" {
		eventSet["event_time"] = input.EventTime
	}
	if input.NumOfMembers > 0 {
		eventSet["num_of_members"] = input.NumOfMembers
	}
	if input.Venue != "" {
		eventSet["venue"] = input.Venue
	}
	if input.TotalPrice > 0 {
		eventSet["total_price"] = input.TotalPrice
	}

	result := &UpdateEventResult{User: user.Sanitized(), Event: *event}
	err = r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if len(userSet) > 0 {
			updated, err := r.users.Update(ctx, userID, userSet)
			if err != nil {
				if isDuplicate(err) {
					return utils.Conflict("Email already in use")
				}
				return utils.Internal("could not update user", err)
			}
			result.User = updated.Sanitized()
		}
		if len(eventSet) > 0 {
			updated, err := r.events.Update(ctx, eventID, eventSet)
			if err != nil {
				if isDuplicate(err) {
					return utils.Conflict(slotTakenMessage)
				}
				if isNotFound(err) {
					return utils.NotFound("Event does not exist")
				}
				return utils.Internal("could not update event", err)
			}
			result.Event = *updated
		}
		return nil
	})
	if err != nil {
		return nil, asAPIError(err, "could not update event")
	}
	return result, nil
}

func (r *EventRegistry) DeleteEvent(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "Event ID")
	if err != nil {
		return err
	}

	event, err := r.events.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return utils.NotFound("Event not found")
		}
		return utils.Internal("could not load event", err)
	}

	if err := r.events.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return utils.NotFound("Event not found")
		}
		return utils.Internal("failed to delete event", err)
	}

	r.removeImages(ctx, event.Images)
	return nil
}

// removeImages deletes hosted images best-effort; failures are only logged.
func (r *EventRegistry) removeImages(ctx context.Context, images []string) {
	if r.media == nil {
		return
	}
	for _, img := range images {
		if err := r.media.Delete(ctx, img); err != nil {
			r.logger.Warn().Err(err).Str("image", img).Msg("could not delete event image")
		}
	}
}

func withOwner(event models.Event, owners map[string]models.User) *EventWithOwner {
	out := &EventWithOwner{Event: event}
	if owner, ok := owners[event.UserID.Hex()]; ok {
		out.Owner = &owner
	}
	return out
}

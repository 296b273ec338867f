package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	metrics "github.com/phillip/event-booking-go/metrics"
	models "github.com/phillip/event-booking-go/models"
	utils "github.com/phillip/event-booking-go/utils"
)

// CancellationWorkflow handles cancel requests: a user files one, an admin
// approves it, and approval deletes both the event and the request.
type CancellationWorkflow struct {
	users   UserStore
	events  EventStore
	cancels CancelEventStore
	tx      Transactor
	mailer  Mailer
	logger  zerolog.Logger
}

// NewCancellationWorkflow builds the workflow. mailer may be nil.
func NewCancellationWorkflow(users UserStore, events EventStore, cancels CancelEventStore, tx Transactor, mailer Mailer, logger zerolog.Logger) *CancellationWorkflow {
	return &CancellationWorkflow{
		users:   users,
		events:  events,
		cancels: cancels,
		tx:      tx,
		mailer:  mailer,
		logger:  logger,
	}
}

// RequestCancellation files a pending request for the event. Only one
// request may be pending per event.
func (w *CancellationWorkflow) RequestCancellation(ctx context.Context, actor Actor, rawEventID, reason string) (*models.CancelEvent, error) {
	eventID, err := parseID(rawEventID, "Event ID")
	if err != nil {
		return nil, err
	}

	event, err := w.events.FindByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NotFound("Event does not exist")
		}
		return nil, utils.Internal("could not load event", err)
	}
	if !actor.CanActFor(event.UserID.Hex()) {
		return nil, utils.Forbidden("Access denied")
	}

	pending, err := w.cancels.FindByEventID(ctx, eventID)
	if err != nil && !isNotFound(err) {
		return nil, utils.Internal("could not check cancel requests", err)
	}
	if pending != nil {
		return nil, utils.Conflict("A cancel request is already pending for this event")
	}

	req := &models.CancelEvent{
		EventID:  eventID,
		Progress: models.ProgressUnderProcess,
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		req.Reason = &reason
	}

	if err := w.cancels.Create(ctx, req); err != nil {
		if isDuplicate(err) {
			return nil, utils.Conflict("A cancel request is already pending for this event")
		}
		return nil, utils.Internal("could not create cancel request", err)
	}

	metrics.CancellationsRequested.Inc()
	zerolog.Ctx(ctx).Info().Str("event_id", eventID.Hex()).Msg("cancel requested")
	return req, nil
}

// ApproveCancellation deletes the event and its pending request in one
// transaction, then notifies the owner.
func (w *CancellationWorkflow) ApproveCancellation(ctx context.Context, rawEventID string) error {
	eventID, err := parseID(rawEventID, "Event ID")
	if err != nil {
		return err
	}

	if _, err := w.cancels.FindByEventID(ctx, eventID); err != nil {
		if isNotFound(err) {
			return utils.NotFound("Cancel request not found for this event")
		}
		return utils.Internal("could not load cancel request", err)
	}

	event, err := w.events.FindByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return utils.NotFound("Event does not exist")
		}
		return utils.Internal("could not load event", err)
	}

	err = w.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := w.events.Delete(ctx, eventID); err != nil {
			if isNotFound(err) {
				return utils.NotFound("Event does not exist")
			}
			return utils.Internal("could not delete event", err)
		}
		if err := w.cancels.DeleteByEventID(ctx, eventID); err != nil {
			if isNotFound(err) {
				return utils.NotFound("Cancel request not found for this event")
			}
			return utils.Internal("could not delete cancel request", err)
		}
		return nil
	})
	if err != nil {
		return asAPIError(err, "could not approve cancellation")
	}

	metrics.CancellationsApproved.Inc()
	zerolog.Ctx(ctx).Info().Str("event_id", eventID.Hex()).Msg("cancellation approved")
	w.notifyOwner(ctx, event)
	return nil
}

func (w *CancellationWorkflow) ListPending(ctx context.Context) ([]models.CancelEvent, error) {
	reqs, err := w.cancels.ListNewestFirst(ctx)
	if err != nil {
		return nil, utils.Internal("could not fetch cancel requests", err)
	}
	if len(reqs) == 0 {
		return nil, utils.NotFound("No cancel events found")
	}
	return reqs, nil
}

func (w *CancellationWorkflow) notifyOwner(ctx context.Context, event *models.Event) {
	if w.mailer == nil {
		return
	}
	owner, err := w.users.FindByID(ctx, event.UserID)
	if err != nil {
		w.logger.Warn().Err(err).Str("event_id", event.ID.Hex()).Msg("could not load owner for cancellation notice")
		return
	}

	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s booking at %s on %s %s has been cancelled.</p>",
		html.EscapeString(owner.Name),
		html.EscapeString(event.EventType),
		html.EscapeString(event.Venue),
		html.EscapeString(event.EventDate),
		html.EscapeString(event.EventTime),
	)
	if err := w.mailer.Send(ctx, owner.Email, owner.Name, "Your booking has been cancelled", body); err != nil {
		w.logger.Warn().Err(err).Str("to", owner.Email).Msg("cancellation notice failed")
	}
}

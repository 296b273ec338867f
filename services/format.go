package services

import models "github.com/phillip/event-booking-go/models"

// FormatEvent flattens the owner's contact fields into the event view.
func FormatEvent(e EventWithOwner) models.EventView {
	view := models.EventView{
		ID:           e.Event.ID,
		UserID:       e.Event.UserID,
		EventType:    e.Event.EventType,
		EventDate:    e.Event.EventDate,
		EventTime:    e.Event.EventTime,
		NumOfMembers: e.Event.NumOfMembers,
		Venue:        e.Event.Venue,
		TotalPrice:   e.Event.TotalPrice,
		Images:       e.Event.Images,
	}
	if e.Owner != nil {
		view.Name = e.Owner.Name
		view.Email = e.Owner.Email
		view.Phone = e.Owner.Phone
		view.Address = e.Owner.Address
	}
	return view
}

func FormatEvents(events []EventWithOwner) []models.EventView {
	out := make([]models.EventView, 0, len(events))
	for _, e := range events {
		out = append(out, FormatEvent(e))
	}
	return out
}

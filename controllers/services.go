package controllers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	models "github.com/phillip/event-booking-go/models"
	services "github.com/phillip/event-booking-go/services"
)

type EventService interface {
	CreateEvent(ctx context.Context, input services.CreateEventInput) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*services.EventWithOwner, error)
	EventsByCategory(ctx context.Context, category string) ([]services.EventWithOwner, error)
	EventsOfUser(ctx context.Context, userID string) ([]models.Event, error)
	EventCounts(ctx context.Context) (map[string]int, error)
	UpdateEvent(ctx context.Context, actor services.Actor, input services.UpdateEventInput) (*services.UpdateEventResult, error)
	DeleteEvent(ctx context.Context, id string) error
}

type CancellationService interface {
	RequestCancellation(ctx context.Context, actor services.Actor, eventID, reason string) (*models.CancelEvent, error)
	ApproveCancellation(ctx context.Context, eventID string) error
	ListPending(ctx context.Context) ([]models.CancelEvent, error)
}

type AccountService interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, token string) (*services.TokenPair, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, input services.UpdateUserInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCookies describes how the token cookies are written.
type SessionCookies struct {
	Secure        bool
	Domain        string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID: c.GetString("user_id"),
		Admin:  c.GetString("role") == models.RoleAdmin,
	}
}

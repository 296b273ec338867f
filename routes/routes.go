package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	config "github.com/phillip/event-booking-go/config"
	controllers "github.com/phillip/event-booking-go/controllers"
	metrics "github.com/phillip/event-booking-go/metrics"
	middleware "github.com/phillip/event-booking-go/middleware"
	utils "github.com/phillip/event-booking-go/utils"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Uploader is optional.
type Dependencies struct {
	Config        *config.Config
	Logger        zerolog.Logger
	AccessTokens  *utils.TokenManager
	Accounts      controllers.AccountService
	Events        controllers.EventService
	Cancellations controllers.CancellationService
	Uploader      controllers.ImageUploader
	Health        controllers.Pinger
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	cookies := controllers.SessionCookies{
		Secure:        cfg.Cookies.Secure,
		Domain:        cfg.Cookies.Domain,
		AccessMaxAge:  cfg.Auth.AccessTokenExpiry,
		RefreshMaxAge: cfg.Auth.RefreshTokenExpiry,
	}
	limited := middleware.RateLimit(cfg.RateLimit.AuthPerMinute)

	// public
	r.GET("/healthz", controllers.HealthCheck(deps.Health))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	r.POST("/auth/register", controllers.Register(deps.Accounts))
	r.POST("/auth/login", limited, controllers.Login(deps.Accounts, cookies))
	r.POST("/auth/refresh", limited, controllers.RefreshToken(deps.Accounts, cookies))

	// protected
	auth := middleware.AuthMiddleware(deps.AccessTokens)
	admin := middleware.RequireAdmin()

	session := r.Group("/auth")
	session.Use(auth)
	{
		session.POST("/logout", controllers.Logout(deps.Accounts, cookies))
		session.GET("/me", controllers.Me(deps.Accounts))
	}

	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", admin, controllers.ListUsers(deps.Accounts))
		users.PATCH("/:id", admin, controllers.UpdateUser(deps.Accounts))
		users.DELETE("/:id", admin, controllers.DeleteUser(deps.Accounts))
		users.GET("/:id/events", controllers.UserEvents(deps.Events))
	}

	events := r.Group("/events")
	events.Use(auth)
	{
		events.POST("", controllers.CreateEvent(deps.Events, deps.Uploader))
		events.GET("", controllers.ListEvents(deps.Events))
		events.GET("/counts", controllers.EventCounts(deps.Events))
		events.GET("/:id", controllers.GetEvent(deps.Events))
		events.PATCH("/:id", controllers.UpdateEvent(deps.Events))
		events.DELETE("/:id", admin, controllers.DeleteEvent(deps.Events))

		events.POST("/:id/cancellations", controllers.RequestCancellation(deps.Cancellations))
		events.POST("/:id/cancellations/approve", admin, controllers.ApproveCancellation(deps.Cancellations))
	}

	cancellations := r.Group("/cancellations")
	cancellations.Use(auth, admin)
	{
		cancellations.GET("", controllers.ListCancellations(deps.Cancellations))
	}
}

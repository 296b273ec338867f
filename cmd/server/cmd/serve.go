package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	config "github.com/phillip/event-booking-go/config"
	repository "github.com/phillip/event-booking-go/repository"
	routes "github.com/phillip/event-booking-go/routes"
	services "github.com/phillip/event-booking-go/services"
	utils "github.com/phillip/event-booking-go/utils"
)

// Server flags (override config/env)
var serverPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server.

The server connects to MongoDB, ensures indexes, bootstraps the admin user
when ADMIN_EMAIL and ADMIN_PASSWORD are set, and shuts down gracefully on
SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverPort, "port", "", "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting event booking server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := cfg.Connect(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		if err := cfg.MongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("mongo disconnect error")
		}
	}()

	store := repository.NewStore(cfg.Database())
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	access := utils.NewTokenManager(cfg.Auth.AccessTokenSecret, cfg.Auth.AccessTokenExpiry, cfg.Auth.Issuer)
	refresh := utils.NewTokenManager(cfg.Auth.RefreshTokenSecret, cfg.Auth.RefreshTokenExpiry, cfg.Auth.Issuer)

	deps := routes.Dependencies{
		Config:       cfg,
		Logger:       logger,
		AccessTokens: access,
		Health:       store,
	}

	var media services.MediaStore
	if cfg.Cloudinary.Enabled() {
		mediaStore, err := utils.NewMediaStore(cfg.Cloudinary)
		if err != nil {
			return fmt.Errorf("cloudinary setup failed: %w", err)
		}
		media = mediaStore
		deps.Uploader = mediaStore
	} else {
		logger.Warn().Msg("cloudinary not configured; image uploads disabled")
	}

	mailer := utils.NewMailer(cfg.Email, logger)
	if !cfg.Email.Enabled() {
		logger.Warn().Msg("email not configured; cancellation notices disabled")
	}

	accounts := services.NewAccountManager(store.Users, access, refresh, logger)
	deps.Accounts = accounts
	deps.Events = services.NewEventRegistry(store.Users, store.Events, store, media, logger)
	deps.Cancellations = services.NewCancellationWorkflow(store.Users, store.Events, store.Cancellations, store, mailer, logger)

	if err := accounts.BootstrapAdmin(ctx, cfg.Admin); err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, deps)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

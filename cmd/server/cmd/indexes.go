package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	config "github.com/phillip/event-booking-go/config"
	repository "github.com/phillip/event-booking-go/repository"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		logger := config.NewLogger(cfg.Logging)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := cfg.Connect(ctx); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer cfg.MongoClient.Disconnect(context.Background())

		if err := repository.NewStore(cfg.Database()).EnsureIndexes(ctx); err != nil {
			return err
		}

		logger.Info().Str("db", cfg.DBName).Msg("indexes ensured")
		return nil
	},
}

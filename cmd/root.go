package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	config "task-market.com/task-market/internal/configs"
	"task-market.com/task-market/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "task-market",
	Short:         "Campus task marketplace engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, sets up logging and opens the database.
func bootstrap() (config.Config, *gorm.DB, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Setup(cfg.LogLevel, cfg.LogPretty)
	if envErr != nil {
		log.Info().Msg(".env file not found, using environment variables")
	}

	db, err := config.NewDatabaseClient(cfg.DatabaseDSN)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, db, nil
}

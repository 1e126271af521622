package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	config "task-market.com/task-market/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}

		if err := config.Migrate(db); err != nil {
			return err
		}

		log.Info().Str("dsn", cfg.DatabaseDSN).Msg("database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

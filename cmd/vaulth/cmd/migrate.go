package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vaulth/vaulth/pkg/config"
	"github.com/vaulth/vaulth/pkg/db"
	"github.com/vaulth/vaulth/pkg/vlog"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [config]",
	Short: "Run database migrations",
	Args:  cobra.MaximumNArgs(1),
	Run:   migrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrate(cmd *cobra.Command, args []string) {
	logger := vlog.NewDefault()

	env, err := config.ReadEnv()
	if err != nil {
		logger.Fatal("failed to read environment", "error", err)
	}

	cfg, err := config.Read(loadConfigPath(args, env.Config))
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vaulth/vaulth/pkg/config"
	"github.com/vaulth/vaulth/pkg/db"
	"github.com/vaulth/vaulth/pkg/store"
	"github.com/vaulth/vaulth/pkg/vapi"
	"github.com/vaulth/vaulth/pkg/vapi/routes"
	"github.com/vaulth/vaulth/pkg/vapi/services"
	"github.com/vaulth/vaulth/pkg/vapi/services/oauthflow"
	"github.com/vaulth/vaulth/pkg/vjwt"
	"github.com/vaulth/vaulth/pkg/vlog"
)

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Start the broker",
	Args:  cobra.MaximumNArgs(1),
	Run:   run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) {
	logger := vlog.NewDefault()

	env, err := config.ReadEnv()
	if err != nil {
		logger.Fatal("failed to read environment", "error", err)
	}

	cfg, err := config.Read(loadConfigPath(args, env.Config))
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	// VAULTH_LOG wins over the logLevel config key
	level := cfg.LogLevel
	if env.Log != "" {
		level = env.Log
	}
	logger = vlog.NewLogger(vlog.ParseLevel(level), os.Stdout)

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	defer database.Close()

	jwtSvc, err := vjwt.New(cfg.Token)
	if err != nil {
		logger.Fatal("failed to load token keys", "error", err)
	}

	client := oauthflow.NewHTTPClient(cfg.UserAgent)
	svcs := services.New(cfg, jwtSvc, store.New(database), client, logger)

	api := vapi.NewApi()
	routes.RegisterAPI(api, svcs)

	// Loopback only; a fronting proxy is expected
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	logger.Info("vaulth listening",
		"addr", addr,
		"providers", strings.Join(cfg.ConfiguredProviders(), ","),
		"tls", cfg.TLS != nil)

	if cfg.TLS != nil {
		err = http.ListenAndServeTLS(addr, cfg.TLS.Cert, cfg.TLS.Key, api.Router)
	} else {
		err = http.ListenAndServe(addr, api.Router)
	}
	logger.Fatal("server exited", "error", err)
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vaulth/vaulth/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "vaulth",
	Short: "Vaulth delegated-authentication broker",
	Long: `Vaulth lets first-party clients authenticate end users through
third-party OAuth2 providers and issues its own signed bearer tokens tied
to locally stored user records.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfigPath resolves the config file path: first CLI argument, then
// VAULTH_CONFIG, then vaulth.json.
func loadConfigPath(args []string, envPath string) string {
	if len(args) > 0 {
		return args[0]
	}
	if envPath != "" {
		return envPath
	}
	return config.DefaultPath
}

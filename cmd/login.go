package cmd

import (
	"context"
	"fmt"

	"roster-sync/core/config"
	"roster-sync/core/logger"
	"roster-sync/feature/directory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// loginCmd performs the directory login and stores the session cookies.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the VRChat directory and persist the session",
	Long: `Login authenticates against the VRChat API with the configured credentials,
answers a TOTP two-factor challenge when required and saves the session cookies
to DIRECTORY_COOKIE_FILE so later runs skip the handshake.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		l, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer l.Sync()

		client, err := directory.NewClient(cfg.Directory, l)
		if err != nil {
			return fmt.Errorf("failed to create directory client: %w", err)
		}

		name, err := client.Login(context.Background())
		if err != nil {
			return fmt.Errorf("directory login failed: %w", err)
		}

		l.Info("Logged in to directory",
			zap.String("display_name", name),
			zap.String("cookie_file", cfg.Directory.CookieFile),
		)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(loginCmd)
}

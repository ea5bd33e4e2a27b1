package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "lockflow",
	Short:         "lockflow CLI",
	Long:          `lockflow signs in through an identity provider's hosted login page in the system browser`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return config.Validate(cfg)
	},
}

func Execute(c *config.Config) {
	cfg = c
	// Keep the opener's output off stdout, which carries command results.
	browser.Stdout = os.Stderr
	logger.Debug("Starting CLI", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("CLI error", "error", err)
		stop()
		os.Exit(1)
	}
}

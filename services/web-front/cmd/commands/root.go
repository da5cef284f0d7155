package commands

import (
	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Without a subcommand the web front is served.
func NewRootCmd() *cobra.Command {
	serve := NewServeCommand()
	rootCmd := &cobra.Command{
		Use:   "web-front",
		Short: "Web front of the guestbook",
		Args:  cobra.NoArgs,
		RunE:  serve.RunE,
	}

	rootCmd.AddCommand(
		serve,
		NewExportCommand(),
		NewImportCommand(),
	)

	return rootCmd
}

func setup() (*config.WebConfig, *logger.Logger) {
	cfg := config.LoadWebConfig()
	return cfg, logger.New(cfg.LogLevel)
}

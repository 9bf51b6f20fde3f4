package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scoresight/internal/config"
	"scoresight/internal/devserver"
)

func newDevserverCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local backend with canned answers",
		Long:  "Serves the chat, auth, teams and half-time endpoints from in-memory fixtures for local development.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port != "" {
				cfg.HTTPPort = port
			}

			newLogger := zap.NewProduction
			if opts.verbose {
				newLogger = zap.NewDevelopment
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return devserver.New(cfg, logger).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default HTTP_PORT)")
	return cmd
}

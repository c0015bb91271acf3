package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-substitution-api/internal/app"
	"github.com/noah-isme/sma-substitution-api/pkg/logger"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logr, err := logger.New(opts.cfg)
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			svc, err := app.New(cmd.Context(), opts.cfg, logr)
			if err != nil {
				return err
			}
			return svc.Run(cmd.Context())
		},
	}
}

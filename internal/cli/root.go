// Package cli implements the subplan command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-substitution-api/internal/app"
	"github.com/noah-isme/sma-substitution-api/internal/service"
	"github.com/noah-isme/sma-substitution-api/pkg/config"
	"github.com/noah-isme/sma-substitution-api/pkg/export"
	"github.com/noah-isme/sma-substitution-api/pkg/logger"
)

type rootOptions struct {
	source   string
	rules    string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the subplan command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "subplan",
		Short:         "Plan substitute teachers for absent staff",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if opts.source != "" {
				cfg.Timetable.Source = opts.source
			}
			if opts.rules != "" {
				cfg.Timetable.RulesFile = opts.rules
			}
			opts.cfg = cfg

			logr, err := logger.NewCLI(opts.logLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.logger = logr
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.source, "source", "", "timetable source: embedded, postgres or a .txt/.csv/.xlsx path (default from TIMETABLE_SOURCE)")
	flags.StringVar(&opts.rules, "rules", "", "availability rules YAML (default: bundled rules)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level written to stderr")

	root.AddCommand(
		newGenerateCommand(opts),
		newFreeCommand(opts),
		newTeachersCommand(opts),
		newTokenCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the CLI against ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) engine(ctx context.Context) (*service.Engine, error) {
	engine, _, err := app.LoadEngine(ctx, o.cfg.Timetable, o.cfg.Database, nil, o.logger)
	return engine, err
}

func splitNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func writeTable(w io.Writer, data export.Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(data.Headers, "\t"))
	for _, row := range data.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeDataset(w io.Writer, format string, data export.Dataset) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeTable(w, data)
	case "csv":
		payload, err := export.NewCSVExporter().Render(data)
		if err != nil {
			return err
		}
		_, err = w.Write(payload)
		return err
	default:
		return fmt.Errorf("unknown format %q, expected table or csv", format)
	}
}

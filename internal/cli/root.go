// Package cli implements the servicegrid command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/andreybell91/ignite/internal/config"
	"github.com/andreybell91/ignite/internal/domain"
	"github.com/andreybell91/ignite/internal/logging"
)

var Version = "dev" // Overridden by ldflags

// Options carries what the commands share: the loaded configuration,
// the logger and the descriptor codec. It is filled in by the root
// command's PersistentPreRunE.
type Options struct {
	Codec domain.DescriptorCodec

	configPath string
	database   string
	logLevel   string

	Config config.Config
	Logger hclog.Logger
}

// NewRootCommand builds the command tree. The codec decides which
// service kinds are rebuilt as concrete types; kinds it does not know
// are kept opaque.
func NewRootCommand(codec domain.DescriptorCodec) *cobra.Command {
	opts := &Options{Codec: codec}

	rootCmd := &cobra.Command{
		Use:   "servicegrid",
		Short: "Deploy replicated services described by service descriptors",
		Long: `servicegrid validates service deployment descriptors, compares them with
what is already deployed, resolves the nodes each one may run on and keeps
a history of every decision.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.database != "" {
				cfg.Database = opts.database
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.Config = cfg
			opts.Logger = logging.New(cfg.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&opts.database, "database", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newDiffCommand(opts))
	rootCmd.AddCommand(newDeployCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newUndeployCommand(opts))
	rootCmd.AddCommand(newNodeCommand(opts))
	rootCmd.AddCommand(newServeMetricsCommand(opts))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context, codec domain.DescriptorCodec) {
	if err := NewRootCommand(codec).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withApp opens the application for the duration of fn.
func (o *Options) withApp(cmd *cobra.Command, fn func(app *App) error) error {
	app, err := OpenApp(cmd.Context(), o.Config, o.Logger, o.Codec)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			o.Logger.Warn("close", "error", err)
		}
	}()
	return fn(app)
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

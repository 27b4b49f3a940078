// Package cli implements dsctl, a command-line view of the datasets the
// server exposes.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/JonMunkholm/datasets/internal/loader"
	"github.com/JonMunkholm/datasets/internal/logging"
	"github.com/spf13/cobra"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Version is set at build time.
var Version = "0.1.0"

// options holds the persistent flags shared by every subcommand.
type options struct {
	dataDir  string
	tables   []string
	output   string
	logLevel string
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "dsctl",
		Short: "Summarize and group the dataset tables",
		Long: `dsctl loads the dataset tables from a data directory the same way the
server does and prints summaries or group counts.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch opts.output {
			case OutputTable, OutputJSON:
				return nil
			default:
				return fmt.Errorf("invalid --output %q (want %s or %s)", opts.output, OutputTable, OutputJSON)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.dataDir, "data-dir", "d", envOr("DATA_DIR", "data"), "Directory holding <table>.csv and <table>.parquet files")
	rootCmd.PersistentFlags().StringSliceVar(&opts.tables, "tables", core.DefaultTables(), "Tables to load")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", OutputTable, "Output format (table|json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level for load diagnostics")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputTable, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newSummaryCommand(opts))
	rootCmd.AddCommand(newGroupCommand(opts))
	rootCmd.AddCommand(newTablesCommand(opts))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// loadStore builds a Store from the data directory. Diagnostics go to
// stderr so they never mix with command output.
func (o *options) loadStore(ctx context.Context, stderr io.Writer) *core.Store {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(logging.NewHandler(stderr, o.logLevel, "text"))
	return loader.Load(ctx, loader.Options{
		Tables:  o.tables,
		Sources: loader.DefaultSources(o.dataDir, nil),
		Logger:  logger,
	})
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

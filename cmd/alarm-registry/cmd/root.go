package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VoidAutomata/alarm-registry/internal/service/shell"
	"github.com/VoidAutomata/alarm-registry/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// pollInterval overrides the expiry worker's idle wait.
	pollInterval time.Duration
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command running the interactive alarm shell.
	rootCmd = &cobra.Command{
		Use:   "alarm-registry",
		Short: "Run the interactive alarm registry shell.",
		Long: `Starts an interactive shell managing timed alarms while a background
worker fires them as they expire.

Commands read from standard input:
  Start_Alarm(<id>): T<type> <seconds> <message>
  Change_Alarm(<id>): T<type> <seconds> <message>
  Cancel_Alarm(<id>)
  View_Alarms()

Alarms live in memory only and are dropped without firing on exit.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &shell.Options{
				ConfigPath:   configPath,
				PollInterval: pollInterval,
				LogLevel:     logLevel,
			}

			return shell.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-registry CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().
		DurationVarP(&pollInterval, "poll-interval", "p", 0, "idle poll interval of the expiry worker")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error, fatal)")
}

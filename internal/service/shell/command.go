package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/VoidAutomata/alarm-registry/internal/config"
	"github.com/VoidAutomata/alarm-registry/internal/domain/alarm"
	"github.com/VoidAutomata/alarm-registry/internal/logger"
	"github.com/VoidAutomata/alarm-registry/internal/registry"
	"github.com/VoidAutomata/alarm-registry/internal/service/expiry"
)

// Options controls the interactive alarm shell.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// PollInterval overrides the configured expiry poll interval when positive.
	PollInterval time.Duration
	// LogLevel overrides the configured log level when set.
	LogLevel string
	// Input is the command source; defaults to stdin.
	Input io.Reader
	// Output is where prompts, outcomes and firings go; defaults to stdout.
	Output io.Writer
}

// Run starts the expiry worker, then reads and serves commands until the
// input ends or the context is cancelled. Remaining alarms are dropped
// without firing on the way out.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-registry")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	applyLogLevel(ctx, cfg.LogLevel, opts.LogLevel)

	pollInterval := cfg.PollInterval
	if opts.PollInterval > 0 {
		pollInterval = opts.PollInterval
	}

	input := opts.Input
	if input == nil {
		input = os.Stdin
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	reg := registry.New()
	handlers := NewHandlers(reg)

	// The worker gets its own cancellation so EOF on input stops it too.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	worker := expiry.NewWorker(reg, printSink(output), pollInterval)

	workerDone := make(chan struct{})

	go func() {
		worker.Run(workerCtx)
		close(workerDone)
	}()

	logger.InfoKV(ctx, "Alarm shell started", "poll_interval", pollInterval)

	serveCommands(ctx, handlers, input, output, cfg.Prompt)

	stopWorker()
	<-workerDone

	dropped := reg.Drain()
	logger.InfoKV(ctx, "Alarm shell stopped", "dropped_alarms", dropped)

	return nil
}

// serveCommands is the prompt/read/dispatch loop. It returns on EOF or
// context cancellation. The reader goroutine may stay blocked on a final
// read; the process is exiting at that point.
func serveCommands(ctx context.Context, handlers *Handlers, input io.Reader, output io.Writer, prompt string) {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			logger.ErrorKV(ctx, "Failed to read command input", "error", err)
		}
	}()

	for {
		_, _ = fmt.Fprint(output, prompt)

		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			if len(line) == 0 {
				continue
			}

			cmd, err := Parse(line)
			if err != nil {
				logger.WarnKV(ctx, "Bad command", "line", line)
				_, _ = fmt.Fprintln(output, "Bad command")

				continue
			}

			_, _ = fmt.Fprintln(output, handlers.Dispatch(ctx, cmd))
		}
	}
}

// printSink writes fired alarms to the shell output and logs them.
func printSink(output io.Writer) expiry.Sink {
	return expiry.SinkFunc(func(ctx context.Context, firing *alarm.Firing) error {
		if _, err := fmt.Fprintf(output, "Alarm(%d) fired: T%s (%d) %s\n",
			firing.ID, firing.Type, firing.Seconds, firing.Message); err != nil {
			return fmt.Errorf("write firing: %w", err)
		}

		logger.InfoKV(ctx, "Alarm fired",
			"id", firing.ID, "type", firing.Type, "seconds", firing.Seconds, "fired_at", firing.FiredAt)

		return nil
	})
}

// applyLogLevel sets the global level from the flag override or the config.
func applyLogLevel(ctx context.Context, configured, override string) {
	chosen := configured
	if override != "" {
		chosen = override
	}

	level, ok := logger.ParseLogLevel(chosen)
	if !ok {
		logger.WarnKV(ctx, "Unknown log level, keeping current", "level", chosen)

		return
	}

	logger.SetLevel(level)
}

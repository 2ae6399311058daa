package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/CodeBeast357/downdrag"
	"github.com/CodeBeast357/downdrag/yaml"
	"github.com/alecthomas/kong"
	"github.com/google/uuid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Now returns the reference time of a run when --now is not given.
	Now func() time.Time

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Now: time.Now}
}

// Close releases everything opened by Run.
func (m *Main) Close() error {
	var err error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if cerr := m.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.closers = nil
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("downdrag"),
		kong.Description("Scrape listing sites into typed records"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'downdrag --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := yaml.Load(cli.Config)
	if err != nil {
		if downdrag.IsConfigError(err) {
			fmt.Fprintf(stderr, "error: %s\n", downdrag.ErrorMessage(err))
		}
		return fmt.Errorf("failed to load configuration %q: %w", cli.Config, err)
	}
	deps.Config = cfg
	deps.Now = m.Now()

	defer m.Close()

	if kongCtx.Command() == "run" {
		if cli.Run.Now != "" {
			now, err := time.Parse(time.RFC3339, cli.Run.Now)
			if err != nil {
				return fmt.Errorf("invalid --now %q: expected RFC3339", cli.Run.Now)
			}
			deps.Now = now
		}

		logger, err := m.openLogger(cli.Run.LogFile, cli.Run.Debug, deps.Now, stderr)
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		deps.Logger = logger

		pipeline, sink, err := m.wire(cfg, deps.Now, logger)
		if err != nil {
			if downdrag.IsConfigError(err) {
				fmt.Fprintf(stderr, "error: %s\n", downdrag.ErrorMessage(err))
			}
			if cfg.Querier.Mode == downdrag.ModeDynamic {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or set querier.driver")
			}
			return err
		}
		deps.Pipeline = pipeline
		deps.Sink = sink
	}

	return kongCtx.Run(deps)
}

// openLogger returns a text logger tagged with a fresh run id. path "-"
// logs to stderr; the empty path logs to downdrag_<timestamp>.log.
func (m *Main) openLogger(path string, debug bool, now time.Time, stderr io.Writer) (*slog.Logger, error) {
	var w io.Writer = stderr
	if path != "-" {
		if path == "" {
			path = fmt.Sprintf("downdrag_%s.log", now.Format("20060102_150405"))
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		m.closers = append(m.closers, f)
		w = f
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger.With("run", uuid.NewString()), nil
}

// Package cli wires the carryover commands onto urfave/cli and maps their
// errors to exit codes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/daily"
	"github.com/amirbrooks/carryover/internal/notes"
	"github.com/amirbrooks/carryover/internal/quotes"
	"github.com/amirbrooks/carryover/internal/render"
	"github.com/amirbrooks/carryover/internal/store"
	"github.com/amirbrooks/carryover/pkg/logutils"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitDate     = 5
	ExitInternal = 10
)

// Version is reported by --version. Populated at build time via -ldflags.
var Version = "dev"

var timeNow = func() time.Time { return time.Now() }

// Flags holds the global options. Config and Log are set in the Before hook
// and available to every command.
type Flags struct {
	Vault      string
	ConfigPath string
	LogLevel   string
	LogFile    string
	Debug      bool

	Config *config.Config
	Log    zerolog.Logger

	stdout io.Writer
	stderr io.Writer
	closer func()
}

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Run executes the command line args (args[0] is the program name) and
// returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := &Flags{stdout: stdout, stderr: stderr}
	app := NewApp(flags)
	defer flags.close()

	err := app.Run(ctx, args)
	if err != nil {
		fmt.Fprintln(stderr, "carryover:", err)
	}
	return exitCode(err)
}

// NewApp builds the command tree. The root command generates daily notes.
func NewApp(flags *Flags) *cli.Command {
	app := &cli.Command{
		Name:      "carryover",
		Usage:     "Carry unfinished todos from one daily note into the next",
		UsageText: "carryover [global options] [command] [options]",
		Description: `carryover reads yesterday's daily note, plans every open todo
(start, shame, stick, defer or archive) and writes the next daily note and the
archive note. Carried items are marked as moved ([>]) in the source note.

Run 'carryover' with no command to generate tomorrow's note.
Run 'carryover plan' to preview what would be carried.`,
		Version:   Version,
		Writer:    flags.stdout,
		ErrWriter: flags.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "vault",
				Usage:       "path to the notes vault (overrides the config file)",
				Sources:     cli.EnvVars("CARRYOVER_VAULT"),
				Destination: &flags.Vault,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to config file (.yaml or .toml)",
				Sources:     cli.EnvVars("CARRYOVER_CONFIG"),
				Value:       config.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("CARRYOVER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "write JSON logs to this file instead of the console",
				Sources:     cli.EnvVars("CARRYOVER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.BoolFlag{
				Name:        "debug-mode",
				Aliases:     []string{"z"},
				Usage:       "log at debug level",
				Destination: &flags.Debug,
			},
		},
		Before: flags.before,
		// errors are mapped to exit codes by Run
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	NewGenerateCmd(flags).Register(app)
	NewInitCmd(flags).Register(app)
	NewPlanCmd(flags).Register(app)
	NewConfigCmd(flags).Register(app)

	setUsageErrorHandler(app)
	return app
}

func setUsageErrorHandler(cmd *cli.Command) {
	cmd.OnUsageError = func(_ context.Context, _ *cli.Command, err error, _ bool) error {
		return &usageError{err: err}
	}
	for _, sub := range cmd.Commands {
		setUsageErrorHandler(sub)
	}
}

func (f *Flags) before(ctx context.Context, c *cli.Command) (context.Context, error) {
	level := f.LogLevel
	if f.Debug {
		level = "debug"
	}
	logger, closer, err := logutils.NewWithWriter(level, f.LogFile, f.stderr)
	if err != nil {
		return ctx, usage("setup logger: %w", err)
	}
	f.Log = logger
	f.closer = closer

	cfg, err := config.Load(f.ConfigPath, f.Vault)
	if err != nil {
		return ctx, usage("load config: %w", err)
	}
	f.Config = cfg
	f.Log.Debug().Str("config", f.ConfigPath).Str("vault", cfg.Vault).Msg("config loaded")
	return ctx, nil
}

func (f *Flags) close() {
	if f.closer != nil {
		f.closer()
	}
}

// generator wires the pipeline for the loaded config. mutate adjusts a copy of
// the config for this invocation only.
func (f *Flags) generator(dryRun bool, mutate ...func(*config.Config)) (*daily.Generator, *store.Vault, error) {
	cfg := *f.Config
	for _, m := range mutate {
		m(&cfg)
	}

	vault, err := store.Open(&cfg, f.Log)
	if err != nil {
		return nil, nil, err
	}
	vault.SetDryRun(dryRun)

	renderer, err := render.New(cfg.TemplatesPath(), cfg.Templates.Daily, cfg.Templates.Archive)
	if err != nil {
		return nil, nil, err
	}

	var qs daily.QuoteSource
	if cfg.Quotes.Enabled {
		qs = quotes.New(cfg.Quotes, cfg.QuotesCachePath(), f.Log)
	}
	return daily.New(&cfg, vault, renderer, qs, f.Log), vault, nil
}

// target resolves the --target value against today.
func (f *Flags) target(namer *notes.Namer, s string) (time.Time, error) {
	return namer.ParseTarget(s, timeNow())
}

func exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ue), errors.Is(err, daily.ErrConflictingWrites):
		return ExitUsage
	case errors.Is(err, store.ErrSourceUnavailable):
		return ExitNotFound
	case errors.Is(err, notes.ErrDateNotFoundInName),
		errors.Is(err, notes.ErrUnsupportedDateFormat),
		errors.Is(err, notes.ErrUnsupportedRelativeDay):
		return ExitDate
	default:
		return ExitInternal
	}
}

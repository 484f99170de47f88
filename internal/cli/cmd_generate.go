package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/daily"
	"github.com/amirbrooks/carryover/internal/todo"
)

// GenerateCmd is the root action: it writes the daily note for a target day.
type GenerateCmd struct {
	flags *Flags

	target      string
	catchUp     bool
	dryRun      bool
	onlyArchive bool
	onlyDaily   bool
	showFuture  bool
	jsonOutput  bool
}

func NewGenerateCmd(flags *Flags) *GenerateCmd {
	return &GenerateCmd{flags: flags}
}

// Register attaches the generate flags and action to the root command.
func (cmd *GenerateCmd) Register(app *cli.Command) *cli.Command {
	onlyArchive := &cli.BoolFlag{
		Name:        "only-write-to-archive",
		Aliases:     []string{"a"},
		Usage:       "write only the archive note",
		Local:       true,
		Destination: &cmd.onlyArchive,
	}
	onlyDaily := &cli.BoolFlag{
		Name:        "only-write-to-daily-notes",
		Aliases:     []string{"d"},
		Usage:       "write only the daily note",
		Local:       true,
		Destination: &cmd.onlyDaily,
	}

	app.Flags = append(app.Flags,
		&cli.StringFlag{
			Name:        "target",
			Aliases:     []string{"t"},
			Usage:       "day to generate: YYYY-MM-DD, a note name, today, tomorrow or yesterday",
			Value:       "tomorrow",
			Local:       true,
			Destination: &cmd.target,
		},
		&cli.BoolFlag{
			Name:        "catch-up",
			Aliases:     []string{"c"},
			Usage:       "also generate every missing day since the newest daily note",
			Local:       true,
			Destination: &cmd.catchUp,
		},
		&cli.BoolFlag{
			Name:        "no-write-out",
			Aliases:     []string{"n"},
			Usage:       "print the notes instead of writing them",
			Local:       true,
			Destination: &cmd.dryRun,
		},
		onlyArchive,
		onlyDaily,
		&cli.BoolFlag{
			Name:        "show-future",
			Usage:       "list deferred todos in the daily note",
			Local:       true,
			Destination: &cmd.showFuture,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print a JSON summary of each generated note",
			Local:       true,
			Destination: &cmd.jsonOutput,
		},
	)
	app.MutuallyExclusiveFlags = append(app.MutuallyExclusiveFlags, cli.MutuallyExclusiveFlags{
		Flags: [][]cli.Flag{{onlyArchive}, {onlyDaily}},
	})
	app.Action = cmd.run
	return app
}

func (cmd *GenerateCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Present() {
		return usage("unknown command %q", c.Args().First())
	}

	gen, vault, err := cmd.flags.generator(cmd.dryRun, func(cfg *config.Config) {
		if cmd.showFuture {
			show := false
			cfg.HideFuture = &show
		}
	})
	if err != nil {
		return err
	}

	target, err := cmd.flags.target(vault.Namer(), cmd.target)
	if err != nil {
		return err
	}

	opts := daily.Options{
		Target:      target,
		CatchUp:     cmd.catchUp,
		OnlyArchive: cmd.onlyArchive,
		OnlyDaily:   cmd.onlyDaily,
	}
	if err := opts.Validate(); err != nil {
		return &usageError{err: err}
	}

	results, err := gen.Run(ctx, opts)
	// report what was generated before a failing day
	if werr := cmd.report(c, results, vault.Pending()); werr != nil && err == nil {
		err = werr
	}
	return err
}

type resultView struct {
	Note        string              `json:"note"`
	Source      string              `json:"source"`
	Date        string              `json:"date"`
	DailyPath   string              `json:"daily_path,omitempty"`
	ArchivePath string              `json:"archive_path,omitempty"`
	Counts      map[todo.Action]int `json:"counts"`
	Backlinks   int                 `json:"backlinks"`
	Moved       int                 `json:"moved"`
	DryRun      bool                `json:"dry_run"`
}

func (cmd *GenerateCmd) report(c *cli.Command, results []daily.Result, pending map[string]string) error {
	out := c.Root().Writer

	if cmd.jsonOutput {
		views := make([]resultView, 0, len(results))
		for _, r := range results {
			views = append(views, resultView{
				Note:        r.Note,
				Source:      r.SourceNote,
				Date:        r.Date.Format("2006-01-02"),
				DailyPath:   r.DailyPath,
				ArchivePath: r.ArchivePath,
				Counts:      r.Counts,
				Backlinks:   r.Backlinks,
				Moved:       r.Moved,
				DryRun:      cmd.dryRun,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"results": views})
	}

	if cmd.dryRun {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			fmt.Fprintf(out, "==> %s <==\n%s", p, pending[p])
			if !strings.HasSuffix(pending[p], "\n") {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out)
		}
	}

	hideFuture := !cmd.showFuture && cmd.flags.Config.HidesFuture()
	for _, r := range results {
		verb := "wrote"
		if cmd.dryRun {
			verb = "would write"
		}
		deferred := 0
		if hideFuture {
			deferred = r.Counts[todo.ActionFuture]
		}
		fmt.Fprintf(out, "%s %s from %s: %d carried, %d deferred, %d archived, %d backlinks, %d moved\n",
			verb, r.Note, r.SourceNote, carried(r.Counts, hideFuture), deferred, r.Counts[todo.ActionArchive], r.Backlinks, r.Moved)
	}
	return nil
}

// carried counts the todos written into the daily note.
func carried(counts map[todo.Action]int, hideFuture bool) int {
	n := 0
	for a, c := range counts {
		switch {
		case a == todo.ActionArchive:
		case a == todo.ActionFuture && hideFuture:
		default:
			n += c
		}
	}
	return n
}

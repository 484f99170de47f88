package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/amirbrooks/carryover/internal/config"
	"github.com/amirbrooks/carryover/internal/daily"
)

type PlanCmd struct {
	flags *Flags

	// flags
	target     string
	showFuture bool
	jsonOutput bool
	plain      bool
	format     string
}

// NewPlanCmd creates a new plan command
func NewPlanCmd(flags *Flags) *PlanCmd {
	return &PlanCmd{flags: flags}
}

// Register adds the plan command to the application
func (cmd *PlanCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOutput,
	}
	plainFlag := &cli.BoolFlag{
		Name:        "plain",
		Usage:       "output as tab separated values without a header",
		Destination: &cmd.plain,
	}
	formatFlag := &cli.StringFlag{
		Name:        "format",
		Usage:       "output format: table or telegram",
		Value:       "table",
		Destination: &cmd.format,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "plan",
		Usage:     "Show what would be carried into a daily note",
		UsageText: "carryover plan [--target <day>] [--json | --plain | --format telegram]",
		Description: `Extracts and plans the open todos for the target day without writing
anything. Each row shows the action, where the todo lands (daily, hidden or
archive), the note it came from and the line that would be written.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "target",
				Aliases:     []string{"t"},
				Usage:       "day to plan: YYYY-MM-DD, a note name, today, tomorrow or yesterday",
				Value:       "tomorrow",
				Destination: &cmd.target,
			},
			&cli.BoolFlag{
				Name:        "show-future",
				Usage:       "plan deferred todos into the daily note",
				Destination: &cmd.showFuture,
			},
			jsonFlag,
			plainFlag,
			formatFlag,
		},
		MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{
			{Flags: [][]cli.Flag{{jsonFlag}, {plainFlag}, {formatFlag}}},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *PlanCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.format != "table" && !isTelegramFormat(cmd.format) {
		return usage("unsupported format %q (use table or telegram)", cmd.format)
	}

	gen, vault, err := cmd.flags.generator(false, func(cfg *config.Config) {
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

	p, err := gen.Plan(target)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	entries := p.Entries()

	switch {
	case cmd.jsonOutput:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"note":      p.Note,
			"source":    p.SourceNote,
			"date":      p.Date.Format("2006-01-02"),
			"backlinks": p.Backlinks,
			"entries":   entries,
		})
	case cmd.plain:
		for _, e := range entries {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", e.Action, e.Destination, e.Source, e.Line)
		}
		return nil
	case isTelegramFormat(cmd.format):
		fmt.Fprintln(out, renderTelegramPlan(p))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "Nothing to carry from %s into %s\n", p.SourceNote, p.Note)
		return nil
	}
	printEntries(out, entries)
	return nil
}

func printEntries(out io.Writer, entries []daily.Entry) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTION\tDEST\tSOURCE\tLINE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Action, e.Destination, e.Source, e.Line)
	}
	_ = w.Flush()
}

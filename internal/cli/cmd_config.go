package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/amirbrooks/carryover/internal/config"
)

type ConfigCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	plain      bool
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON",
		Destination: &cmd.jsonOutput,
	}
	plainFlag := &cli.BoolFlag{
		Name:        "plain",
		Usage:       "output as tab separated key/value pairs",
		Destination: &cmd.plain,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Inspect the configuration",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the effective configuration",
				UsageText: "carryover config show [--json | --plain]",
				Flags:     []cli.Flag{jsonFlag, plainFlag},
				MutuallyExclusiveFlags: []cli.MutuallyExclusiveFlags{
					{Flags: [][]cli.Flag{{jsonFlag}, {plainFlag}}},
				},
				Action: cmd.show,
			},
		},
	})
	return app
}

type configRow struct {
	key   string
	value string
}

func configRows(cfg *config.Config) []configRow {
	ignore := "(none)"
	if len(cfg.Ignore) > 0 {
		ignore = strings.Join(cfg.Ignore, ",")
	}
	return []configRow{
		{"vault", cfg.Vault},
		{"daily_dir", cfg.DailyPath()},
		{"templates_dir", cfg.TemplatesPath()},
		{"templates.daily", cfg.Templates.Daily},
		{"templates.archive", cfg.Templates.Archive},
		{"archive_note", cfg.ArchiveNote},
		{"note_format", cfg.NoteFormat},
		{"shame_glyph", cfg.ShameGlyph},
		{"shame_threshold", strconv.Itoa(cfg.ShameThreshold)},
		{"sticky_token", cfg.StickyToken},
		{"hide_future", strconv.FormatBool(cfg.HidesFuture())},
		{"annotation_policy", cfg.AnnotationPolicy},
		{"ignore", ignore},
		{"quotes.enabled", strconv.FormatBool(cfg.Quotes.Enabled)},
		{"quotes.cache_file", cfg.QuotesCachePath()},
		{"quotes.url", cfg.Quotes.URL},
		{"quotes.pages", strconv.Itoa(cfg.Quotes.Pages)},
		{"quotes.timeout", strconv.Itoa(cfg.Quotes.Timeout)},
	}
}

func (cmd *ConfigCmd) show(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	path := cmd.flags.ConfigPath
	_, err := os.Stat(path)
	exists := path != "" && err == nil

	out := c.Root().Writer

	if cmd.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"config_path": path,
			"exists":      exists,
			"config":      cfg,
		})
	}

	if cmd.plain {
		fmt.Fprintf(out, "config_path\t%s\n", path)
		fmt.Fprintf(out, "exists\t%t\n", exists)
		for _, r := range configRows(cfg) {
			fmt.Fprintf(out, "%s\t%s\n", r.key, r.value)
		}
		return nil
	}

	if exists {
		fmt.Fprintln(out, "Config file:", path)
	} else {
		fmt.Fprintln(out, "Config file:", path, "(not found; defaults shown)")
	}
	fmt.Fprintln(out)
	printConfigTable(out, configRows(cfg))
	return nil
}

func printConfigTable(out io.Writer, rows []configRow) {
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r.key, r.value)
	}
	_ = w.Flush()
}

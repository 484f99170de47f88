package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/amirbrooks/carryover/internal/render"
	"github.com/amirbrooks/carryover/internal/store"
)

type InitCmd struct {
	flags *Flags

	// flags
	noConfig bool
}

// NewInitCmd creates a new init command
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create the vault layout, default templates and config file",
		UsageText: "carryover init [--no-config]",
		Description: `Creates the vault root, the daily notes directory and the templates
directory holding the built-in daily and archive templates. Existing files are
never overwritten. The config file is written when it does not exist yet.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-config",
				Usage:       "do not write a config file",
				Destination: &cmd.noConfig,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	vault, err := store.Open(cfg, cmd.flags.Log)
	if err != nil {
		return err
	}

	defaults := render.Defaults()
	files := map[string][]byte{
		filepath.Join(cfg.TemplatesPath(), cfg.Templates.Daily):   defaults["daily.md"],
		filepath.Join(cfg.TemplatesPath(), cfg.Templates.Archive): defaults["archive.md"],
	}

	created, err := vault.Init(files)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}

	if !cmd.noConfig && cmd.flags.ConfigPath != "" {
		wrote, err := cmd.writeConfig(cmd.flags.ConfigPath)
		if err != nil {
			return err
		}
		if wrote {
			created = append(created, cmd.flags.ConfigPath)
		}
	}

	out := c.Root().Writer
	fmt.Fprintln(out, "Initialized vault at:", vault.Root)
	for _, p := range created {
		fmt.Fprintln(out, "  created", p)
	}
	return nil
}

func (cmd *InitCmd) writeConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		cmd.flags.Log.Debug().Str("config", path).Msg("config file exists")
		return false, nil
	}
	data, err := cmd.flags.Config.EncodeFor(path)
	if err != nil {
		return false, err
	}
	if err := store.WriteFileAtomic(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

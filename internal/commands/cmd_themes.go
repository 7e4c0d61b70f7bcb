package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type ThemesCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	jsonOutput  bool
	color       string
	description string
}

// NewThemesCmd creates a new themes command
func NewThemesCmd(flags *Flags, app *roost.App) *ThemesCmd {
	return &ThemesCmd{flags: flags, app: app}
}

// Register adds the themes command group to the application
func (cmd *ThemesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "themes",
		Usage:     "Manage classification themes",
		UsageText: "roost themes <command>",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List themes",
				UsageText: "roost themes ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.ls,
			},
			{
				Name:      "add",
				Usage:     "Create a theme",
				UsageText: "roost themes add <name> [--color <hex>] [--description <text>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "color",
						Usage:       "display color for the theme",
						Destination: &cmd.color,
					},
					&cli.StringFlag{
						Name:        "description",
						Usage:       "short description of the theme",
						Destination: &cmd.description,
					},
				},
				Action: cmd.add,
			},
			{
				Name:      "rm",
				Usage:     "Delete a theme",
				UsageText: "roost themes rm <name>",
				Action:    cmd.rm,
			},
		},
	})

	return app
}

func (cmd *ThemesCmd) ls(ctx context.Context, c *cli.Command) error {
	res := cmd.app.Service.ListThemes(ctx)
	if !res.Success {
		return fmt.Errorf("list themes: %s", res.Error)
	}

	themes, _ := res.Data.([]repo.Theme)
	if len(themes) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No themes defined\n")
		}
		return nil
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range themes {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode theme: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOLOR\tDESCRIPTION")
	for _, t := range themes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Color, t.Description)
	}
	return w.Flush()
}

func (cmd *ThemesCmd) add(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}

	theme := repo.Theme{
		Name:        name,
		Color:       cmd.color,
		Description: cmd.description,
	}
	return renderResult(c, cmd.app.Service.AddTheme(ctx, theme), false)
}

func (cmd *ThemesCmd) rm(ctx context.Context, c *cli.Command) error {
	name, err := requireArg(c, "name")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.RemoveTheme(ctx, name), false)
}

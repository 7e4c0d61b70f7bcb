package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *roost.App
}

// NewConfigCmd creates a new config command
func NewConfigCmd(flags *Flags, app *roost.App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command group to the application
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "config",
		Usage:     "Inspect and change roost settings",
		UsageText: "roost config <command>",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show current settings",
				UsageText: "roost config show",
				Action:    cmd.show,
			},
			{
				Name:      "set-root",
				Usage:     "Set the organization root directory",
				UsageText: "roost config set-root <path>",
				Action:    cmd.setRoot,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) show(ctx context.Context, c *cli.Command) error {
	res := cmd.app.Service.GetSettings(ctx)
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}

	settings, _ := res.Data.(repo.Settings)
	return iojson.WriteWith(c.Root().Writer, os.Stderr, settings)
}

func (cmd *ConfigCmd) setRoot(ctx context.Context, c *cli.Command) error {
	path, err := requireArg(c, "path")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.SetOrganizationRoot(ctx, path), false)
}

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

type DirsCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	jsonOutput bool
}

// NewDirsCmd creates a new dirs command
func NewDirsCmd(flags *Flags, app *roost.App) *DirsCmd {
	return &DirsCmd{flags: flags, app: app}
}

// Register adds the dirs command group to the application
func (cmd *DirsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dirs",
		Usage:     "Manage scan directories",
		UsageText: "roost dirs <command>",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List configured scan directories",
				UsageText: "roost dirs ls [--json]",
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
				Usage:     "Add a scan directory",
				UsageText: "roost dirs add <path>",
				Action:    cmd.add,
			},
			{
				Name:      "rm",
				Usage:     "Remove a scan directory",
				UsageText: "roost dirs rm <path>",
				Action:    cmd.rm,
			},
			{
				Name:      "enable",
				Usage:     "Enable a scan directory",
				UsageText: "roost dirs enable <path>",
				Action:    cmd.enable,
			},
			{
				Name:      "disable",
				Usage:     "Disable a scan directory without removing it",
				UsageText: "roost dirs disable <path>",
				Action:    cmd.disable,
			},
		},
	})

	return app
}

func (cmd *DirsCmd) ls(ctx context.Context, c *cli.Command) error {
	res := cmd.app.Service.ListScanDirs(ctx)
	if !res.Success {
		return fmt.Errorf("list scan directories: %s", res.Error)
	}

	dirs, _ := res.Data.([]repo.ScanDirectory)
	if len(dirs) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No scan directories configured\n")
		}
		return nil
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, dir := range dirs {
			if err := iojson.WriteLine(out, dir); err != nil {
				return fmt.Errorf("encode directory: %w", err)
			}
		}
		return nil
	}

	for _, dir := range dirs {
		marker := " "
		if !dir.Enabled {
			marker = "-"
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", marker, dir.Path)
	}
	return nil
}

func requireArg(c *cli.Command, name string) (string, error) {
	arg := c.Args().First()
	if arg == "" {
		return "", fmt.Errorf("missing required argument <%s>", name)
	}
	return arg, nil
}

func (cmd *DirsCmd) add(ctx context.Context, c *cli.Command) error {
	path, err := requireArg(c, "path")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.AddScanDir(ctx, path), false)
}

func (cmd *DirsCmd) rm(ctx context.Context, c *cli.Command) error {
	path, err := requireArg(c, "path")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.RemoveScanDir(ctx, path), false)
}

func (cmd *DirsCmd) enable(ctx context.Context, c *cli.Command) error {
	path, err := requireArg(c, "path")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.SetScanDirEnabled(ctx, path, true), false)
}

func (cmd *DirsCmd) disable(ctx context.Context, c *cli.Command) error {
	path, err := requireArg(c, "path")
	if err != nil {
		return err
	}
	return renderResult(c, cmd.app.Service.SetScanDirEnabled(ctx, path, false), false)
}

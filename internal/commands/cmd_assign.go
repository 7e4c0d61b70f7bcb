package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/roost"
)

type AssignCmd struct {
	flags *Flags
	app   *roost.App
}

// NewAssignCmd creates the assign, ignore, and reset commands
func NewAssignCmd(flags *Flags, app *roost.App) *AssignCmd {
	return &AssignCmd{flags: flags, app: app}
}

// Register adds the triage commands to the application
func (cmd *AssignCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "assign",
			Usage:     "Assign a theme to one or more repositories",
			UsageText: "roost assign <theme> <id>...",
			Description: `Sets the theme explicitly. A pending repository moves to manual
triage; repositories already triaged keep their status.`,
			Action: cmd.assign,
		},
		&cli.Command{
			Name:      "ignore",
			Usage:     "Exclude a repository from organization",
			UsageText: "roost ignore <id>",
			Action:    cmd.ignore,
		},
		&cli.Command{
			Name:      "reset",
			Usage:     "Return an ignored repository to the triage queue",
			UsageText: "roost reset <id>",
			Action:    cmd.reset,
		},
	)

	return app
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid repository id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (cmd *AssignCmd) assign(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: roost assign <theme> <id>...")
	}

	theme := args[0]
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}

	if len(ids) == 1 {
		return renderResult(c, cmd.app.Service.AssignTheme(ctx, ids[0], theme), false)
	}
	return renderResult(c, cmd.app.Service.BulkAssignTheme(ctx, ids, theme), false)
}

func (cmd *AssignCmd) ignore(ctx context.Context, c *cli.Command) error {
	arg, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid repository id %q", arg)
	}
	return renderResult(c, cmd.app.Service.IgnoreRepo(ctx, id), false)
}

func (cmd *AssignCmd) reset(ctx context.Context, c *cli.Command) error {
	arg, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid repository id %q", arg)
	}
	return renderResult(c, cmd.app.Service.ResetTriage(ctx, id), false)
}

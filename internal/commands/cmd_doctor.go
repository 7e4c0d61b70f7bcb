package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/doctor"
	"github.com/colonyops/roost/internal/roost"
)

type DoctorCmd struct {
	flags *Flags
	app   *roost.App
}

// NewDoctorCmd creates a new doctor command
func NewDoctorCmd(flags *Flags, app *roost.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

// Register adds the doctor command to the application
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Check the environment roost depends on",
		UsageText: "roost doctor",
		Description: `Verifies the git binary, configured scan directories, and the
organization root. Warnings indicate incomplete setup; failures
indicate something that will break a scan or move.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer
	results := doctor.RunAll(ctx, cmd.app.Checks)

	failed := false
	for _, result := range results {
		_, _ = fmt.Fprintf(out, "%s\n", result.Name)
		for _, item := range result.Items {
			if item.Detail != "" {
				_, _ = fmt.Fprintf(out, "  [%s] %s: %s\n", item.Status, item.Label, item.Detail)
			} else {
				_, _ = fmt.Fprintf(out, "  [%s] %s\n", item.Status, item.Label)
			}
		}
		if result.Failed() {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	jsonOutput bool
	status     string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *roost.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tracked repositories",
		UsageText: "roost ls [--status <status>] [--json]",
		Description: `Displays a table of tracked repositories with their theme, triage
status, and current path.

Use --json for line-oriented output suitable for scripting.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "status",
				Usage:       "filter by triage status (pending, manual, auto, ignored)",
				Destination: &cmd.status,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	res := cmd.app.Service.ListRepos(ctx)
	if !res.Success {
		return fmt.Errorf("list repositories: %s", res.Error)
	}

	repos, _ := res.Data.([]repo.Repository)

	if cmd.status != "" {
		status := repo.TriageStatus(cmd.status)
		if !status.Valid() {
			return fmt.Errorf("unknown triage status %q", cmd.status)
		}
		repos = slices.DeleteFunc(repos, func(r repo.Repository) bool {
			return r.TriageStatus != status
		})
	}

	if len(repos) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No repositories found, run 'roost scan'\n")
		}
		return nil
	}

	slices.SortFunc(repos, func(a, b repo.Repository) int {
		return strings.Compare(a.Name, b.Name)
	})

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range repos {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode repository: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTHEME\tSTATUS\tDIRTY\tPATH")

	for _, r := range repos {
		theme := "-"
		if r.Theme != nil {
			theme = *r.Theme
		}
		dirty := ""
		if r.IsDirty {
			dirty = "*"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, theme, r.TriageStatus, dirty, r.CurrentPath())
	}

	return w.Flush()
}

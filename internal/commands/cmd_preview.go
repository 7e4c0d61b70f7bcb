package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type PreviewCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	jsonOutput bool
}

// NewPreviewCmd creates a new preview command
func NewPreviewCmd(flags *Flags, app *roost.App) *PreviewCmd {
	return &PreviewCmd{flags: flags, app: app}
}

// Register adds the preview command to the application
func (cmd *PreviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "preview",
		Usage:     "Preview organization moves without changing anything",
		UsageText: "roost preview [id...] [--json]",
		Description: `Computes the target path for each repository, detecting conflicts and
warnings. With no ids, previews every repository that has not been
organized or ignored.

Pipe --json output to 'roost move -f -' to execute the previewed batch.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the preview entries as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// candidateIDs resolves which repositories to preview when none are
// named: everything still awaiting organization.
func (cmd *PreviewCmd) candidateIDs(ctx context.Context) ([]int64, error) {
	res := cmd.app.Service.ListRepos(ctx)
	if !res.Success {
		return nil, fmt.Errorf("list repositories: %s", res.Error)
	}

	repos, _ := res.Data.([]repo.Repository)
	var ids []int64
	for _, r := range repos {
		if r.TriageStatus == repo.StatusAuto || r.TriageStatus == repo.StatusIgnored {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (cmd *PreviewCmd) run(ctx context.Context, c *cli.Command) error {
	var ids []int64
	var err error

	if c.Args().Len() > 0 {
		ids, err = parseIDs(c.Args().Slice())
	} else {
		ids, err = cmd.candidateIDs(ctx)
	}
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "Nothing to preview\n")
		return nil
	}

	res := cmd.app.Service.GeneratePreview(ctx, ids)
	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}

	entries, _ := res.Data.([]organize.PreviewEntry)
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, entries)
	}

	for _, e := range entries {
		if len(e.Conflicts) > 0 {
			_, _ = fmt.Fprintf(out, "✗ %s: %s\n", e.Name, e.Conflicts[0])
			continue
		}
		_, _ = fmt.Fprintf(out, "  %s\n    %s -> %s\n", e.Name, e.From, e.To)
		for _, w := range e.Warnings {
			_, _ = fmt.Fprintf(out, "    ! %s\n", w)
		}
	}

	movable := 0
	for _, e := range entries {
		if len(e.Conflicts) == 0 {
			movable++
		}
	}
	_, _ = fmt.Fprintf(out, "\n%d of %d movable\n", movable, len(entries))
	return nil
}

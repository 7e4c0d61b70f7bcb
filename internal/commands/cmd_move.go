package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type MoveCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	fileReader iojson.FileReader[[]organize.PreviewEntry]
	onConflict string
	jsonOutput bool
}

// NewMoveCmd creates a new move command
func NewMoveCmd(flags *Flags, app *roost.App) *MoveCmd {
	return &MoveCmd{flags: flags, app: app}
}

// Register adds the move command to the application
func (cmd *MoveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "move",
		Usage:     "Execute organization moves",
		UsageText: "roost move [id...] | roost move -f <preview.json>",
		Description: `Moves repositories into <organization-root>/<theme>/<name>.

With ids, a fresh preview is computed and executed immediately. With
-f (or piped stdin), a previously generated preview batch is executed
as approved. Entries with conflicts are always skipped.`,
		Flags: []cli.Flag{
			cmd.fileReader.Flag(),
			&cli.StringFlag{
				Name:        "on-conflict",
				Usage:       "behavior when the target appears after preview (suffix, skip, fail)",
				Value:       string(organize.ConflictSuffix),
				Destination: &cmd.onConflict,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the batch result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *MoveCmd) entries(ctx context.Context, c *cli.Command) ([]organize.PreviewEntry, error) {
	if c.Args().Len() > 0 {
		ids, err := parseIDs(c.Args().Slice())
		if err != nil {
			return nil, err
		}

		res := cmd.app.Service.GeneratePreview(ctx, ids)
		if !res.Success {
			return nil, fmt.Errorf("%s", res.Error)
		}
		entries, _ := res.Data.([]organize.PreviewEntry)
		return entries, nil
	}

	return cmd.fileReader.Read()
}

func (cmd *MoveCmd) run(ctx context.Context, c *cli.Command) error {
	mode := organize.ConflictMode(cmd.onConflict)
	switch mode {
	case organize.ConflictSuffix, organize.ConflictSkip, organize.ConflictFail:
	default:
		return fmt.Errorf("unknown conflict mode %q", cmd.onConflict)
	}

	entries, err := cmd.entries(ctx, c)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "Nothing to move\n")
		return nil
	}

	res := cmd.app.Service.ExecuteMoves(ctx, entries, organize.ExecuteOptions{HandleConflicts: mode})
	batch, _ := res.Data.(organize.BatchResult)

	out := c.Root().Writer
	if cmd.jsonOutput {
		if err := iojson.WriteWith(out, os.Stderr, batch); err != nil {
			return err
		}
		if !res.Success {
			return cli.Exit("", 1)
		}
		return nil
	}

	for _, r := range batch.Results {
		if r.Success {
			_, _ = fmt.Fprintf(out, "moved %s -> %s\n", r.From, r.To)
		} else {
			_, _ = fmt.Fprintf(out, "FAILED %s: %s\n", r.Name, r.Error)
		}
	}

	if !res.Success {
		return fmt.Errorf("%s", res.Error)
	}
	_, _ = fmt.Fprintln(out, res.Message)
	return nil
}

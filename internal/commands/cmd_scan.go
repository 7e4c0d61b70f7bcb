package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/scan"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

type ScanCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	jsonOutput bool
	quiet      bool
}

// NewScanCmd creates a new scan command
func NewScanCmd(flags *Flags, app *roost.App) *ScanCmd {
	return &ScanCmd{flags: flags, app: app}
}

// Register adds the scan command to the application
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "Discover git repositories in the configured scan directories",
		UsageText: "roost scan [--json] [--quiet]",
		Description: `Walks every enabled scan directory, records new repositories, and
refreshes git signals for repositories seen before. Already-triaged
repositories keep their theme and triage status.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the scan summary as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "suppress per-directory progress output",
				Destination: &cmd.quiet,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ScanCmd) run(ctx context.Context, c *cli.Command) error {
	if !cmd.quiet && !cmd.jsonOutput {
		unsubscribe := cmd.app.Service.SubscribeProgress(func(p scan.Progress) {
			if p.Status == scan.StatusScanning && p.CurrentPath != "" {
				fmt.Fprintf(os.Stderr, "scanning %s (%d repos found)\n", p.CurrentPath, p.ReposFound)
			}
		})
		defer unsubscribe()
	}

	summary, err := cmd.app.Service.RunScan(ctx)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrNoScanDirs):
			return errors.New("no scan directories configured, run 'roost dirs add <path>'")
		case errors.Is(err, scan.ErrScanInProgress):
			return errors.New("a scan is already running")
		case errors.Is(err, scan.ErrCooldown):
			return errors.New("scanned too recently, try again in a few seconds")
		}
		return fmt.Errorf("scan: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, summary)
	}

	_, _ = fmt.Fprintf(out, "Scanned %d repositories: %d new, %d refreshed", summary.TotalScanned, summary.NewRepos, summary.UpdatedRepos)
	if summary.SkippedDirs > 0 {
		_, _ = fmt.Fprintf(out, " (%d directories skipped)", summary.SkippedDirs)
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

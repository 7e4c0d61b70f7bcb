// Command docgen generates CLI reference documentation from the roost
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/commands"
	"github.com/colonyops/roost/internal/roost"
)

func main() {
	flags := &commands.Flags{}
	app := &roost.App{}

	root := &cli.Command{
		Name:      "roost",
		Usage:     "Discover, triage, and organize local git repositories",
		UsageText: "roost [global options] command [command options]",
		Description: `Roost scans the directories you work in for git repositories,
classifies each one under a theme, and moves approved repositories
into <organization-root>/<theme>/<name>.

Run 'roost scan' to discover repositories, 'roost preview' to see
where they would go, and 'roost move' to execute the plan.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("ROOST_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <data-dir>/roost.log)",
				Sources: cli.EnvVars("ROOST_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("ROOST_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("ROOST_DATA_DIR"),
				Value:   commands.DefaultDataDir(),
			},
		},
	}

	root = commands.NewScanCmd(flags, app).Register(root)
	root = commands.NewLsCmd(flags, app).Register(root)
	root = commands.NewDirsCmd(flags, app).Register(root)
	root = commands.NewThemesCmd(flags, app).Register(root)
	root = commands.NewAssignCmd(flags, app).Register(root)
	root = commands.NewPreviewCmd(flags, app).Register(root)
	root = commands.NewMoveCmd(flags, app).Register(root)
	root = commands.NewDoctorCmd(flags, app).Register(root)
	root = commands.NewServeCmd(flags, app).Register(root)
	root = commands.NewConfigCmd(flags, app).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}

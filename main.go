package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/commands"
	"github.com/colonyops/roost/internal/core/config"
	"github.com/colonyops/roost/internal/core/discover"
	"github.com/colonyops/roost/internal/core/doctor"
	"github.com/colonyops/roost/internal/core/eventbus"
	"github.com/colonyops/roost/internal/core/git"
	"github.com/colonyops/roost/internal/core/logging"
	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/core/probe"
	"github.com/colonyops/roost/internal/core/scan"
	"github.com/colonyops/roost/internal/data/db"
	"github.com/colonyops/roost/internal/data/stores"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/executil"
	"github.com/colonyops/roost/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		roostApp  = &roost.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "roost",
		Usage:     "Discover, triage, and organize local git repositories",
		UsageText: "roost [global options] command [command options]",
		Description: `Roost scans the directories you work in for git repositories,
classifies each one under a theme, and moves approved repositories
into <organization-root>/<theme>/<name>.

Run 'roost scan' to discover repositories, 'roost preview' to see
where they would go, and 'roost move' to execute the plan.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("ROOST_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/roost.log)",
				Sources:     cli.EnvVars("ROOST_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ROOST_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("ROOST_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/roost.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "roost.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Open database connection
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Create stores
			repoStore := stores.NewRepoStore(database)
			themeStore := stores.NewThemeStore(database)
			dirStore := stores.NewDirStore(database)
			settingsStore := stores.NewSettingsStore(database)

			// Wire the scan pipeline
			var (
				exec    = &executil.RealExecutor{}
				gitExec = git.NewExecutor(cfg.GitPath, exec)
				prober  = probe.New(gitExec, logging.Component("probe"))
				walker  = discover.New(logging.Component("discover"), cfg.Scan.Ignore)
				tracker = scan.NewTracker(logging.Component("scan"))
			)

			orchestrator := scan.NewOrchestrator(dirStore, repoStore, walker, prober, tracker, scan.Options{
				Cooldown:   time.Duration(cfg.Scan.CooldownSeconds) * time.Second,
				DirTimeout: time.Duration(cfg.Scan.DirTimeoutSeconds) * time.Second,
				MaxDepth:   cfg.Scan.MaxDepth,
			}, logging.Component("scan"))

			planner := organize.NewPlanner(repoStore, settingsStore, logging.Component("organize"))
			executor := organize.NewExecutor(repoStore, logging.Component("organize"))

			// Start the event bus dispatch loop
			bus := eventbus.New(64, logging.Component("eventbus"))
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			service := roost.NewService(
				repoStore,
				themeStore,
				dirStore,
				settingsStore,
				orchestrator,
				planner,
				executor,
				bus,
				logging.Component("service"),
			)
			flags.Service = service

			checks := []doctor.Check{
				doctor.NewGitCheck(cfg.GitPath),
				doctor.NewScanDirsCheck(dirStore),
				doctor.NewOrgRootCheck(settingsStore),
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*roostApp = *roost.NewApp(service, cfg, database, bus, checks)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Stop the event bus
			if busCancel != nil {
				busCancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewScanCmd(flags, roostApp).Register(app)
	app = commands.NewLsCmd(flags, roostApp).Register(app)
	app = commands.NewDirsCmd(flags, roostApp).Register(app)
	app = commands.NewThemesCmd(flags, roostApp).Register(app)
	app = commands.NewAssignCmd(flags, roostApp).Register(app)
	app = commands.NewPreviewCmd(flags, roostApp).Register(app)
	app = commands.NewMoveCmd(flags, roostApp).Register(app)
	app = commands.NewDoctorCmd(flags, roostApp).Register(app)
	app = commands.NewServeCmd(flags, roostApp).Register(app)
	app = commands.NewConfigCmd(flags, roostApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

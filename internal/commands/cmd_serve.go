package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/core/logging"
	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/internal/server"
	"github.com/colonyops/roost/pkg/profiler"
)

type ServeCmd struct {
	flags *Flags
	app   *roost.App

	// flags
	addr      string
	pprofPort int
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *roost.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run the local HTTP API",
		UsageText: "roost serve [--addr <host:port>]",
		Description: `Exposes the scan, preview, and move operations over a loopback HTTP
API, with server-sent-event and websocket feeds for scan progress.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Destination: &cmd.addr,
			},
			&cli.IntFlag{
				Name:        "pprof",
				Usage:       "also serve pprof on this port (0 disables)",
				Destination: &cmd.pprofPort,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	addr := cmd.addr
	if addr == "" {
		addr = cmd.app.Config.Server.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.pprofPort > 0 {
		prof := profiler.New(cmd.pprofPort)
		if err := prof.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = prof.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(cmd.app, logging.Component("server"))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}

// Package commands implements the roost CLI surface. Each command is a
// struct that registers itself on the root cli.Command.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/roost/internal/roost"
	"github.com/colonyops/roost/pkg/iojson"
)

// renderResult prints a service result. JSON mode emits the whole result
// envelope; plain mode prints the message and maps failure to an error.
func renderResult(c *cli.Command, res roost.Result, jsonOutput bool) error {
	if jsonOutput {
		if err := iojson.WriteWith(c.Root().Writer, os.Stderr, res); err != nil {
			return err
		}
		if !res.Success {
			return cli.Exit("", 1)
		}
		return nil
	}

	if !res.Success {
		return errors.New(res.Error)
	}
	if res.Message != "" {
		_, _ = fmt.Fprintln(c.Root().Writer, res.Message)
	}
	return nil
}

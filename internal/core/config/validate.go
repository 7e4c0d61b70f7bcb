package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("git_path", c.GitPath, requireNonEmpty),
		criterio.Run("scan.max_depth", c.Scan.MaxDepth, validDepth),
		criterio.Run("scan.ignore", c.Scan.Ignore, validGlobs),
	)
}

func requireNonEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

func validDepth(depth int) error {
	if depth < 1 || depth > 64 {
		return fmt.Errorf("must be between 1 and 64, got %d", depth)
	}
	return nil
}

func validGlobs(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

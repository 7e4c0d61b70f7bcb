// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/roost/internal/core/pathutil"
)

// themeNameRe limits theme names to characters that are safe as a
// destination directory segment on every supported filesystem.
var themeNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ThemeName validates a theme label used as a physical directory name.
func ThemeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !themeNameRe.MatchString(name) {
		return fmt.Errorf("name %q contains characters unsafe for a directory name", name)
	}
	return nil
}

// ThemeNameField returns a criterio validator for theme names.
func ThemeNameField(field, name string) error {
	return criterio.Run(field, name, ThemeName)
}

// RootPath validates a user-supplied scan or organization root: it must
// be non-empty and must not point into an OS system directory.
func RootPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if pathutil.IsSystemPath(path) {
		return fmt.Errorf("path %q is inside a system directory", path)
	}
	return nil
}

// RootPathField returns a criterio validator for root paths.
func RootPathField(field, path string) error {
	return criterio.Run(field, path, RootPath)
}

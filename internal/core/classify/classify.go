// Package classify maps probed repository signals to a theme label via
// ordered heuristic rules. Lifecycle signals dominate technology signals;
// the default label is "unclassified".
package classify

import (
	"strings"

	"github.com/colonyops/roost/internal/core/probe"
)

// Theme labels produced by the classifier. Any theme name is legal as a
// user assignment; these are only the suggested ones.
const (
	ThemeArchived     = "archived"
	ThemeNextJS       = "nextjs"
	ThemeExperimental = "experimental"
	ThemeUnclassified = "unclassified"
)

// archivalKeywords signal a dead project when at least two distinct ones
// appear in the readme and description.
var archivalKeywords = []string{
	"archived",
	"deprecated",
	"unmaintained",
	"abandoned",
	"obsolete",
	"no longer maintained",
}

// secondaryFrameworks map alternative UI libraries into the experimental
// bucket rather than giving each its own theme.
var secondaryFrameworks = []string{"vue", "svelte", "@angular/core", "solid-js"}

// fileMarker ties manifest, lockfile, and config filenames to a language
// theme.
type fileMarker struct {
	name  string
	theme string
}

var fileMarkers = []fileMarker{
	{"go.mod", "go"},
	{"go.sum", "go"},
	{"cargo.toml", "rust"},
	{"requirements.txt", "python"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"pipfile", "python"},
	{"gemfile", "ruby"},
	{"pom.xml", "java"},
	{"build.gradle", "java"},
	{"composer.json", "php"},
	{"mix.exs", "elixir"},
}

// extMarker ties a source-file extension to a language theme.
var extMarkers = []fileMarker{
	{".go", "go"},
	{".rs", "rust"},
	{".py", "python"},
	{".rb", "ruby"},
	{".java", "java"},
	{".ex", "elixir"},
}

// keywordTable drives free-text scoring. Declaration order breaks ties:
// the first theme declared wins an equal score.
var keywordTable = []struct {
	theme    string
	keywords []string
}{
	{ThemeNextJS, []string{"next.js", "nextjs", "react", "vercel", "frontend"}},
	{"python", []string{"python", "django", "flask", "jupyter", "pandas"}},
	{"go", []string{"golang", "goroutine", "go module"}},
	{"rust", []string{"rust", "cargo", "crate"}},
	{"cli", []string{"command line", "command-line", "cli tool", "terminal"}},
	{"data", []string{"dataset", "machine learning", "data pipeline", "etl"}},
	{"game", []string{"game", "unity", "godot", "gameplay"}},
}

// minKeywordHits is the floor before a text-derived theme is accepted; a
// single incidental keyword must not override the default.
const minKeywordHits = 2

// Suggest returns the theme label for the given signals. Deterministic
// and total: it always returns a label.
func Suggest(sig probe.Signals) string {
	text := strings.ToLower(sig.Readme + " " + sig.Description())

	if isArchived(sig, text) {
		return ThemeArchived
	}

	// Primary framework wins over everything technological below it,
	// and the base UI library is grouped into the same theme so the
	// dominant ecosystem is not fragmented into sub-themes.
	if sig.Manifest.HasDependency("next") {
		return ThemeNextJS
	}
	if sig.Manifest.HasDependency("react") {
		return ThemeNextJS
	}

	if theme, ok := fileTheme(sig.Files); ok {
		return theme
	}

	for _, dep := range secondaryFrameworks {
		if sig.Manifest.HasDependency(dep) {
			return ThemeExperimental
		}
	}

	if theme, ok := textTheme(text); ok {
		return theme
	}

	return ThemeUnclassified
}

func isArchived(sig probe.Signals, text string) bool {
	if sig.RemoteURL != nil {
		url := strings.ToLower(*sig.RemoteURL)
		if strings.Contains(url, "archived") || strings.Contains(url, "deprecated") {
			return true
		}
	}

	distinct := 0
	for _, kw := range archivalKeywords {
		if strings.Contains(text, kw) {
			distinct++
		}
	}
	return distinct >= 2
}

func fileTheme(files []string) (string, bool) {
	lower := make(map[string]struct{}, len(files))
	for _, f := range files {
		lower[strings.ToLower(f)] = struct{}{}
	}

	for _, m := range fileMarkers {
		if _, ok := lower[m.name]; ok {
			return m.theme, true
		}
	}

	// Extension markers are checked in declaration order so the result
	// does not depend on directory listing order.
	for _, m := range extMarkers {
		for name := range lower {
			if strings.HasSuffix(name, m.name) {
				return m.theme, true
			}
		}
	}

	return "", false
}

func textTheme(text string) (string, bool) {
	bestTheme := ""
	bestScore := 0

	for _, row := range keywordTable {
		score := 0
		for _, kw := range row.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		// Strictly-greater keeps the first declared theme on ties.
		if score > bestScore {
			bestTheme = row.theme
			bestScore = score
		}
	}

	if bestScore >= minKeywordHits {
		return bestTheme, true
	}
	return "", false
}

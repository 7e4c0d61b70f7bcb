// Package discover implements the breadth-first repository discovery walk.
package discover

import (
	"context"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/probe"
)

// noiseDirs are dependency caches, build output, and virtual environments
// that never contain repositories worth descending into.
var noiseDirs = map[string]struct{}{
	"node_modules":     {},
	"bower_components": {},
	"vendor":           {},
	"dist":             {},
	"build":            {},
	"out":              {},
	"target":           {},
	"venv":             {},
	"__pycache__":      {},
}

// EventKind tags each step of the walk so callers (and tests) can see why
// a directory was or was not considered.
type EventKind int

const (
	// KindRepo marks a discovered repository root.
	KindRepo EventKind = iota
	// KindSkip marks a directory that was skipped, with a reason.
	KindSkip
)

// Event is one tagged step of the walk.
type Event struct {
	Kind   EventKind
	Path   string
	Reason string
}

// Walker traverses directory trees looking for version-control roots.
// Each Walk call is independent; no cursor is retained between calls.
type Walker struct {
	log zerolog.Logger

	// ignore holds user-configured doublestar globs matched against
	// directory names, on top of the fixed noise set.
	ignore []string
}

// New creates a Walker with optional extra ignore globs.
func New(log zerolog.Logger, ignore []string) *Walker {
	return &Walker{log: log, ignore: ignore}
}

type queueItem struct {
	path  string
	depth int
}

// Walk traverses root breadth-first down to maxDepth, invoking fn for
// every discovered repository and every skipped directory as it happens.
// Discovery stops descending at a repository root; nested repositories
// are not reported. Unreadable directories are logged and skipped, never
// fatal. Returns ctx.Err() if the context is cancelled mid-walk.
func (w *Walker) Walk(ctx context.Context, root string, maxDepth int, fn func(Event)) error {
	queue := []queueItem{{path: pathutil.Normalize(root), depth: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(item.path)
		if err != nil {
			w.log.Debug().Err(err).Str("path", item.path).Msg("skipping unreadable directory")
			fn(Event{Kind: KindSkip, Path: item.path, Reason: "unreadable: " + err.Error()})
			continue
		}

		if probe.IsRepoRoot(item.path) {
			fn(Event{Kind: KindRepo, Path: item.path})
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			name := entry.Name()
			// Child paths go through pathutil.Join so UNC roots keep
			// their double-slash prefix.
			child := pathutil.Join(item.path, name)

			if strings.HasPrefix(name, ".") {
				fn(Event{Kind: KindSkip, Path: child, Reason: "dot directory"})
				continue
			}
			if _, noisy := noiseDirs[strings.ToLower(name)]; noisy {
				fn(Event{Kind: KindSkip, Path: child, Reason: "noise directory"})
				continue
			}
			if w.ignored(name) {
				fn(Event{Kind: KindSkip, Path: child, Reason: "ignore pattern"})
				continue
			}
			if item.depth+1 > maxDepth {
				fn(Event{Kind: KindSkip, Path: child, Reason: "max depth exceeded"})
				continue
			}

			queue = append(queue, queueItem{path: child, depth: item.depth + 1})
		}
	}

	return nil
}

func (w *Walker) ignored(name string) bool {
	for _, pattern := range w.ignore {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

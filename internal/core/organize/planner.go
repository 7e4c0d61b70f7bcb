// Package organize computes and executes conflict-aware repository moves
// into the organization root.
package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
)

// ErrNoOrganizationRoot is returned when previewing or executing moves
// before an organization root has been configured.
var ErrNoOrganizationRoot = errors.New("no organization root configured")

// maxTargetPathLen triggers the path-length advisory warning.
const maxTargetPathLen = 240

// PreviewEntry is one repository's planned move. Entries with a non-empty
// Conflicts list are blocked from execution; Warnings are advisory.
type PreviewEntry struct {
	RepoID    int64    `json:"repoId"`
	Name      string   `json:"name"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Theme     string   `json:"theme"`
	Conflicts []string `json:"conflicts"`
	Warnings  []string `json:"warnings"`
}

// Planner computes move previews against the live organization root.
type Planner struct {
	repos    repo.Store
	settings repo.SettingsStore
	log      zerolog.Logger
}

// NewPlanner creates a move planner.
func NewPlanner(repos repo.Store, settings repo.SettingsStore, log zerolog.Logger) *Planner {
	return &Planner{repos: repos, settings: settings, log: log}
}

// Preview computes one entry per requested id, in request order. Every
// requested id is accounted for: unknown ids and repositories without a
// theme come back with a blocking conflict instead of being omitted. The
// call is side-effect-free beyond reads.
func (p *Planner) Preview(ctx context.Context, ids []int64) ([]PreviewEntry, error) {
	settings, err := p.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.OrganizationRoot == "" {
		return nil, ErrNoOrganizationRoot
	}
	root := pathutil.Normalize(settings.OrganizationRoot)

	// The working set starts as the live root listing and grows with
	// each planned target, so two batch entries that would collide with
	// each other get suffixed deterministically in request order.
	existing := listOrganized(root)

	entries := make([]PreviewEntry, 0, len(ids))
	for _, id := range ids {
		entry := p.plan(ctx, id, root, existing)
		if entry.To != "" {
			existing = append(existing, entry.To)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (p *Planner) plan(ctx context.Context, id int64, root string, existing []string) PreviewEntry {
	record, err := p.repos.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return PreviewEntry{RepoID: id, Conflicts: []string{"repository not found"}}
	}
	if err != nil {
		return PreviewEntry{RepoID: id, Conflicts: []string{fmt.Sprintf("load repository: %v", err)}}
	}

	entry := PreviewEntry{
		RepoID: id,
		Name:   record.Name,
		From:   record.CurrentPath(),
	}

	if record.Theme == nil || *record.Theme == "" {
		entry.Conflicts = append(entry.Conflicts, "no theme assigned")
		return entry
	}
	entry.Theme = *record.Theme

	candidate := pathutil.Join(root, entry.Theme, record.Name)

	// A repository already sitting at its computed target must not be
	// suffixed against its own directory; re-requests report the
	// organized state instead of planning a relocation.
	if strings.EqualFold(candidate, pathutil.Normalize(entry.From)) {
		entry.Conflicts = append(entry.Conflicts, "already organized at this location")
		return entry
	}

	resolved, err := pathutil.ResolveConflict(candidate, existing)
	if err != nil {
		entry.Conflicts = append(entry.Conflicts, err.Error())
		return entry
	}
	if resolved != candidate {
		// The suffix makes the move proceedable, so a collision with an
		// existing target is a warning, not a blocking conflict.
		entry.Warnings = append(entry.Warnings, fmt.Sprintf("target exists, renamed to %q", pathutil.LastSegment(resolved)))
	}
	entry.To = resolved

	if record.IsDirty {
		entry.Warnings = append(entry.Warnings, "source has uncommitted changes")
	}
	if !pathutil.SameVolume(entry.From, entry.To) {
		entry.Warnings = append(entry.Warnings, "cross-volume move, will copy then delete")
	}
	if len(entry.To) > maxTargetPathLen {
		entry.Warnings = append(entry.Warnings, fmt.Sprintf("target path exceeds %d characters", maxTargetPathLen))
	}

	return entry
}

// listOrganized enumerates theme/name pairs currently under the
// organization root. Best effort: a root that does not exist yet is
// simply empty.
func listOrganized(root string) []string {
	themes, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var paths []string
	for _, theme := range themes {
		if !theme.IsDir() {
			continue
		}
		names, err := os.ReadDir(pathutil.Join(root, theme.Name()))
		if err != nil {
			continue
		}
		for _, name := range names {
			if name.IsDir() {
				paths = append(paths, pathutil.Join(root, theme.Name(), name.Name()))
			}
		}
	}
	return paths
}

package roost

import (
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/core/validate"
)

// ListRepos returns all tracked repositories.
func (s *Service) ListRepos(ctx context.Context) Result {
	repos, err := s.repos.List(ctx)
	if err != nil {
		return fail("list repositories: %v", err)
	}
	return ok(repos, "")
}

// AssignTheme sets a repository's theme explicitly. Explicit assignment
// always overwrites; a pending repository moves to manual triage.
func (s *Service) AssignTheme(ctx context.Context, id int64, theme string) Result {
	if err := validate.ThemeName(theme); err != nil {
		return fail("invalid theme: %v", err)
	}

	if err := s.repos.SetTheme(ctx, id, theme); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fail("repository %d not found", id)
		}
		return fail("assign theme: %v", err)
	}
	return ok(nil, fmt.Sprintf("theme %q assigned", theme))
}

// BulkAssignTheme assigns one theme to many repositories, isolating
// per-repository failures.
func (s *Service) BulkAssignTheme(ctx context.Context, ids []int64, theme string) Result {
	if err := validate.ThemeName(theme); err != nil {
		return fail("invalid theme: %v", err)
	}

	assigned := 0
	var failures []string
	for _, id := range ids {
		if err := s.repos.SetTheme(ctx, id, theme); err != nil {
			failures = append(failures, fmt.Sprintf("%d: %v", id, err))
			continue
		}
		assigned++
	}

	if assigned == 0 && len(failures) > 0 {
		return fail("no repositories updated: %v", failures)
	}
	return ok(failures, fmt.Sprintf("%d repositories assigned to %q", assigned, theme))
}

// IgnoreRepo marks a repository ignored. Organized repositories stay
// organized; ignoring is only meaningful before the move.
func (s *Service) IgnoreRepo(ctx context.Context, id int64) Result {
	record, err := s.repos.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fail("repository %d not found", id)
	}
	if err != nil {
		return fail("load repository: %v", err)
	}
	if record.TriageStatus == repo.StatusAuto {
		return fail("repository %q is already organized", record.Name)
	}

	if err := s.repos.SetTriageStatus(ctx, id, repo.StatusIgnored); err != nil {
		return fail("ignore repository: %v", err)
	}
	return ok(nil, fmt.Sprintf("repository %q ignored", record.Name))
}

// ResetTriage returns an ignored repository to pending.
func (s *Service) ResetTriage(ctx context.Context, id int64) Result {
	record, err := s.repos.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fail("repository %d not found", id)
	}
	if err != nil {
		return fail("load repository: %v", err)
	}
	if record.TriageStatus != repo.StatusIgnored {
		return fail("repository %q is not ignored", record.Name)
	}

	if err := s.repos.SetTriageStatus(ctx, id, repo.StatusPending); err != nil {
		return fail("reset triage: %v", err)
	}
	return ok(nil, fmt.Sprintf("repository %q reset to pending", record.Name))
}

// ListScanDirs returns all configured scan directories.
func (s *Service) ListScanDirs(ctx context.Context) Result {
	dirs, err := s.dirs.List(ctx)
	if err != nil {
		return fail("list scan directories: %v", err)
	}
	return ok(dirs, "")
}

// AddScanDir registers a new scan directory after validating it against
// the system-path deny-list.
func (s *Service) AddScanDir(ctx context.Context, path string) Result {
	if err := validate.RootPath(path); err != nil {
		return fail("invalid scan directory: %v", err)
	}

	normalized := pathutil.Normalize(path)
	dir, err := s.dirs.Create(ctx, repo.ScanDirectory{Path: normalized, Enabled: true})
	if errors.Is(err, repo.ErrDuplicate) {
		return fail("scan directory %q already configured", normalized)
	}
	if err != nil {
		return fail("add scan directory: %v", err)
	}
	return ok(dir, fmt.Sprintf("scan directory %q added", normalized))
}

// SetScanDirEnabled toggles a scan directory.
func (s *Service) SetScanDirEnabled(ctx context.Context, path string, enabled bool) Result {
	err := s.dirs.SetEnabled(ctx, pathutil.Normalize(path), enabled)
	if errors.Is(err, repo.ErrNotFound) {
		return fail("scan directory %q not configured", path)
	}
	if err != nil {
		return fail("toggle scan directory: %v", err)
	}
	return ok(nil, "scan directory updated")
}

// RemoveScanDir deletes a scan directory.
func (s *Service) RemoveScanDir(ctx context.Context, path string) Result {
	err := s.dirs.Delete(ctx, pathutil.Normalize(path))
	if errors.Is(err, repo.ErrNotFound) {
		return fail("scan directory %q not configured", path)
	}
	if err != nil {
		return fail("remove scan directory: %v", err)
	}
	return ok(nil, "scan directory removed")
}

// ListThemes returns all themes.
func (s *Service) ListThemes(ctx context.Context) Result {
	themes, err := s.themes.List(ctx)
	if err != nil {
		return fail("list themes: %v", err)
	}
	return ok(themes, "")
}

// AddTheme creates a theme.
func (s *Service) AddTheme(ctx context.Context, t repo.Theme) Result {
	if err := validate.ThemeName(t.Name); err != nil {
		return fail("invalid theme: %v", err)
	}

	created, err := s.themes.Create(ctx, t)
	if errors.Is(err, repo.ErrDuplicate) {
		return fail("theme %q already exists", t.Name)
	}
	if err != nil {
		return fail("add theme: %v", err)
	}
	return ok(created, fmt.Sprintf("theme %q created", t.Name))
}

// RemoveTheme deletes a theme by name.
func (s *Service) RemoveTheme(ctx context.Context, name string) Result {
	err := s.themes.Delete(ctx, name)
	if errors.Is(err, repo.ErrNotFound) {
		return fail("theme %q not found", name)
	}
	if err != nil {
		return fail("remove theme: %v", err)
	}
	return ok(nil, fmt.Sprintf("theme %q removed", name))
}

// GetSettings returns the singleton settings.
func (s *Service) GetSettings(ctx context.Context) Result {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fail("load settings: %v", err)
	}
	return ok(settings, "")
}

// SetOrganizationRoot configures the destination root for moves.
func (s *Service) SetOrganizationRoot(ctx context.Context, root string) Result {
	if err := validate.RootPath(root); err != nil {
		return fail("invalid organization root: %v", err)
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fail("load settings: %v", err)
	}
	settings.OrganizationRoot = pathutil.Normalize(root)

	if err := s.settings.Save(ctx, settings); err != nil {
		return fail("save settings: %v", err)
	}
	return ok(settings, fmt.Sprintf("organization root set to %q", settings.OrganizationRoot))
}

package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
)

// ScanDirsCheck verifies that configured scan directories exist and are
// accessible.
type ScanDirsCheck struct {
	dirs repo.DirStore
}

// NewScanDirsCheck creates a new scan directories check.
func NewScanDirsCheck(dirs repo.DirStore) *ScanDirsCheck {
	return &ScanDirsCheck{dirs: dirs}
}

func (c *ScanDirsCheck) Name() string {
	return "Scan Directories"
}

func (c *ScanDirsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	dirs, err := c.dirs.List(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "store", Status: StatusFail, Detail: err.Error()})
		return result
	}

	if len(dirs) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "scan directories",
			Status: StatusWarn,
			Detail: "none configured, run 'roost dirs add'",
		})
		return result
	}

	for _, dir := range dirs {
		result.Items = append(result.Items, checkDir(dir.Path))
	}
	return result
}

func checkDir(path string) CheckItem {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return CheckItem{Label: path, Status: StatusWarn, Detail: "directory does not exist"}
	case err != nil:
		return CheckItem{Label: path, Status: StatusFail, Detail: fmt.Sprintf("inaccessible: %v", err)}
	case !info.IsDir():
		return CheckItem{Label: path, Status: StatusFail, Detail: "path is not a directory"}
	default:
		return CheckItem{Label: path, Status: StatusPass}
	}
}

// OrgRootCheck verifies the organization root is configured, safe, and
// writable.
type OrgRootCheck struct {
	settings repo.SettingsStore
}

// NewOrgRootCheck creates a new organization root check.
func NewOrgRootCheck(settings repo.SettingsStore) *OrgRootCheck {
	return &OrgRootCheck{settings: settings}
}

func (c *OrgRootCheck) Name() string {
	return "Organization Root"
}

func (c *OrgRootCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	settings, err := c.settings.Get(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "settings", Status: StatusFail, Detail: err.Error()})
		return result
	}

	root := settings.OrganizationRoot
	if root == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "organization root",
			Status: StatusWarn,
			Detail: "not configured, run 'roost config set-root'",
		})
		return result
	}

	if pathutil.IsSystemPath(root) {
		result.Items = append(result.Items, CheckItem{Label: root, Status: StatusFail, Detail: "inside a system directory"})
		return result
	}

	item := checkDir(root)
	if item.Status == StatusPass {
		// Probe writability with a throwaway entry.
		probe, err := os.CreateTemp(root, ".roost-doctor-*")
		if err != nil {
			item = CheckItem{Label: root, Status: StatusFail, Detail: fmt.Sprintf("not writable: %v", err)}
		} else {
			_ = probe.Close()
			_ = os.Remove(probe.Name())
		}
	}
	result.Items = append(result.Items, item)
	return result
}

// GitCheck verifies the git binary is on PATH.
type GitCheck struct {
	gitPath string
}

// NewGitCheck creates a new git binary check.
func NewGitCheck(gitPath string) *GitCheck {
	return &GitCheck{gitPath: gitPath}
}

func (c *GitCheck) Name() string {
	return "Git"
}

func (c *GitCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	resolved, err := exec.LookPath(c.gitPath)
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: c.gitPath, Status: StatusFail, Detail: "git binary not found"})
		return result
	}

	result.Items = append(result.Items, CheckItem{Label: resolved, Status: StatusPass})
	return result
}

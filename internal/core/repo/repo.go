// Package repo defines the domain records tracked by roost and the store
// interfaces the pipeline reads and writes them through.
package repo

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

// TriageStatus tracks where a repository sits in the organize workflow.
type TriageStatus string

const (
	// StatusPending is the initial state on first discovery.
	StatusPending TriageStatus = "pending"
	// StatusManual means a theme has been assigned and the repository is
	// ready to be organized.
	StatusManual TriageStatus = "manual"
	// StatusAuto means the repository has been moved under the
	// organization root. Terminal for the move pipeline.
	StatusAuto TriageStatus = "auto"
	// StatusIgnored excludes the repository from triage until explicitly
	// reset.
	StatusIgnored TriageStatus = "ignored"
)

// Valid reports whether s is a known triage status.
func (s TriageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusManual, StatusAuto, StatusIgnored:
		return true
	}
	return false
}

// Repository is a discovered version-controlled project directory.
type Repository struct {
	ID   int64
	Name string

	// OriginalPath is the normalized absolute path where the repository
	// was first discovered. Immutable once set; the scan upsert key.
	OriginalPath string

	// PhysicalPath is the normalized path after a successful move. Nil
	// until organized; non-nil iff TriageStatus == StatusAuto.
	PhysicalPath *string

	RemoteURL     *string
	LastCommitSHA *string

	// IsDirty defaults to true when the working-tree state could not be
	// determined. Unknown is never treated as clean.
	IsDirty bool

	Theme        *string
	TriageStatus TriageStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CurrentPath returns the path the repository lives at right now: the
// physical path once organized, otherwise the discovery path.
func (r Repository) CurrentPath() string {
	if r.PhysicalPath != nil && *r.PhysicalPath != "" {
		return *r.PhysicalPath
	}
	return r.OriginalPath
}

// ProbeUpdate carries the volatile fields refreshed on every scan.
type ProbeUpdate struct {
	RemoteURL     *string
	LastCommitSHA *string
	IsDirty       bool

	// SuggestedTheme is applied only when the stored record has no theme
	// yet. A manual assignment is never clobbered by a re-scan.
	SuggestedTheme *string
}

// Store is the persisted-record collaborator for repositories.
type Store interface {
	List(ctx context.Context) ([]Repository, error)
	Get(ctx context.Context, id int64) (Repository, error)
	FindByOriginalPath(ctx context.Context, path string) (Repository, error)
	Create(ctx context.Context, r Repository) (Repository, error)
	// Refresh updates the volatile probe fields for an existing record,
	// seeding the theme only if currently unset.
	Refresh(ctx context.Context, id int64, u ProbeUpdate) error
	SetTheme(ctx context.Context, id int64, theme string) error
	SetTriageStatus(ctx context.Context, id int64, status TriageStatus) error
	// MarkOrganized records a completed move: physical path plus the
	// terminal auto status, atomically.
	MarkOrganized(ctx context.Context, id int64, physicalPath string) error
	Delete(ctx context.Context, id int64) error
}

// Theme is a classification label that doubles as a destination
// subdirectory name under the organization root.
type Theme struct {
	ID          int64
	Name        string
	Color       string
	Description string
}

// ThemeStore manages themes. Name is unique.
type ThemeStore interface {
	List(ctx context.Context) ([]Theme, error)
	Create(ctx context.Context, t Theme) (Theme, error)
	Delete(ctx context.Context, name string) error
}

// ScanDirectory is a user-configured root the walker searches under.
type ScanDirectory struct {
	ID      int64
	Path    string
	Enabled bool
}

// DirStore manages scan directories. Path is unique.
type DirStore interface {
	List(ctx context.Context) ([]ScanDirectory, error)
	ListEnabled(ctx context.Context) ([]ScanDirectory, error)
	Create(ctx context.Context, d ScanDirectory) (ScanDirectory, error)
	SetEnabled(ctx context.Context, path string, enabled bool) error
	Delete(ctx context.Context, path string) error
}

// Settings is the singleton application configuration row.
type Settings struct {
	OrganizationRoot  string
	AutoTriageEnabled bool
	BackupDestination string
}

// SettingsStore manages the singleton settings record.
type SettingsStore interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

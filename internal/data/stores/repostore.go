// Package stores implements the record-store interfaces on SQLite.
package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
)

// RepoStore implements repo.Store using SQLite.
type RepoStore struct {
	db *db.DB
}

var _ repo.Store = (*RepoStore)(nil)

// NewRepoStore creates a new SQLite-backed repository store.
func NewRepoStore(db *db.DB) *RepoStore {
	return &RepoStore{db: db}
}

const repoColumns = `id, name, original_path, physical_path, remote_url, last_commit_sha, is_dirty, theme, triage_status, created_at, updated_at`

func scanRepo(row interface{ Scan(...any) error }) (repo.Repository, error) {
	var (
		r         repo.Repository
		physical  sql.NullString
		remote    sql.NullString
		sha       sql.NullString
		theme     sql.NullString
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(&r.ID, &r.Name, &r.OriginalPath, &physical, &remote, &sha, &r.IsDirty, &theme, &r.TriageStatus, &createdAt, &updatedAt)
	if err != nil {
		return repo.Repository{}, err
	}

	if physical.Valid {
		r.PhysicalPath = &physical.String
	}
	if remote.Valid {
		r.RemoteURL = &remote.String
	}
	if sha.Valid {
		r.LastCommitSHA = &sha.String
	}
	if theme.Valid {
		r.Theme = &theme.String
	}
	r.CreatedAt = time.Unix(0, createdAt)
	r.UpdatedAt = time.Unix(0, updatedAt)

	return r, nil
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// List returns all repositories ordered by name.
func (s *RepoStore) List(ctx context.Context) ([]repo.Repository, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT `+repoColumns+` FROM repositories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var repos []repo.Repository
	for rows.Next() {
		r, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// Get returns a repository by id. Returns repo.ErrNotFound if missing.
func (s *RepoStore) Get(ctx context.Context, id int64) (repo.Repository, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+repoColumns+` FROM repositories WHERE id = ?`, id)
	r, err := scanRepo(row)
	if IsNotFoundError(err) {
		return repo.Repository{}, repo.ErrNotFound
	}
	if err != nil {
		return repo.Repository{}, fmt.Errorf("failed to get repository: %w", err)
	}
	return r, nil
}

// FindByOriginalPath returns the repository first discovered at path.
func (s *RepoStore) FindByOriginalPath(ctx context.Context, path string) (repo.Repository, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+repoColumns+` FROM repositories WHERE original_path = ?`, path)
	r, err := scanRepo(row)
	if IsNotFoundError(err) {
		return repo.Repository{}, repo.ErrNotFound
	}
	if err != nil {
		return repo.Repository{}, fmt.Errorf("failed to find repository: %w", err)
	}
	return r, nil
}

// Create inserts a new repository record and returns it with its assigned
// id. Returns repo.ErrDuplicate when original_path is already tracked.
func (s *RepoStore) Create(ctx context.Context, r repo.Repository) (repo.Repository, error) {
	if r.TriageStatus == "" {
		r.TriageStatus = repo.StatusPending
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	res, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO repositories (name, original_path, physical_path, remote_url, last_commit_sha, is_dirty, theme, triage_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.OriginalPath, toNullString(r.PhysicalPath), toNullString(r.RemoteURL), toNullString(r.LastCommitSHA),
		r.IsDirty, toNullString(r.Theme), string(r.TriageStatus), now.UnixNano(), now.UnixNano(),
	)
	if IsUniqueViolation(err) {
		return repo.Repository{}, repo.ErrDuplicate
	}
	if err != nil {
		return repo.Repository{}, fmt.Errorf("failed to create repository: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return repo.Repository{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	r.ID = id
	return r, nil
}

// Refresh updates the volatile probe fields. COALESCE keeps an existing
// theme: the suggestion lands only when no theme is set, so a manual
// assignment is never clobbered by a re-scan.
func (s *RepoStore) Refresh(ctx context.Context, id int64, u repo.ProbeUpdate) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE repositories
		SET remote_url = ?, last_commit_sha = ?, is_dirty = ?, theme = COALESCE(theme, ?), updated_at = ?
		WHERE id = ?`,
		toNullString(u.RemoteURL), toNullString(u.LastCommitSHA), u.IsDirty, toNullString(u.SuggestedTheme), time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh repository: %w", err)
	}
	return requireRowAffected(res)
}

// SetTheme assigns a theme explicitly, always overwriting, and promotes a
// pending repository to manual triage.
func (s *RepoStore) SetTheme(ctx context.Context, id int64, theme string) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE repositories
		SET theme = ?, triage_status = CASE WHEN triage_status = 'pending' THEN 'manual' ELSE triage_status END, updated_at = ?
		WHERE id = ?`,
		theme, time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set theme: %w", err)
	}
	return requireRowAffected(res)
}

// SetTriageStatus transitions the triage state machine.
func (s *RepoStore) SetTriageStatus(ctx context.Context, id int64, status repo.TriageStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid triage status %q", status)
	}
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE repositories SET triage_status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to set triage status: %w", err)
	}
	return requireRowAffected(res)
}

// MarkOrganized records a completed move atomically: the physical path
// and the terminal auto status land in one statement, keeping the
// physicalPath-iff-auto invariant.
func (s *RepoStore) MarkOrganized(ctx context.Context, id int64, physicalPath string) error {
	res, err := s.db.Conn().ExecContext(ctx, `
		UPDATE repositories SET physical_path = ?, triage_status = 'auto', updated_at = ? WHERE id = ?`,
		physicalPath, time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark repository organized: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a repository by id.
func (s *RepoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM repositories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

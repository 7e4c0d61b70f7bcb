package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
)

// DirStore implements repo.DirStore using SQLite.
type DirStore struct {
	db *db.DB
}

var _ repo.DirStore = (*DirStore)(nil)

// NewDirStore creates a new SQLite-backed scan directory store.
func NewDirStore(db *db.DB) *DirStore {
	return &DirStore{db: db}
}

// List returns all scan directories in insertion order.
func (s *DirStore) List(ctx context.Context) ([]repo.ScanDirectory, error) {
	return s.list(ctx, `SELECT id, path, enabled FROM scan_directories ORDER BY id`)
}

// ListEnabled returns only enabled scan directories, in stored order.
func (s *DirStore) ListEnabled(ctx context.Context) ([]repo.ScanDirectory, error) {
	return s.list(ctx, `SELECT id, path, enabled FROM scan_directories WHERE enabled = 1 ORDER BY id`)
}

func (s *DirStore) list(ctx context.Context, query string) ([]repo.ScanDirectory, error) {
	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan directories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dirs []repo.ScanDirectory
	for rows.Next() {
		var d repo.ScanDirectory
		if err := rows.Scan(&d.ID, &d.Path, &d.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan directory row: %w", err)
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

// Create inserts a scan directory. Returns repo.ErrDuplicate when path is
// already configured.
func (s *DirStore) Create(ctx context.Context, d repo.ScanDirectory) (repo.ScanDirectory, error) {
	res, err := s.db.Conn().ExecContext(ctx, `INSERT INTO scan_directories (path, enabled) VALUES (?, ?)`, d.Path, d.Enabled)
	if IsUniqueViolation(err) {
		return repo.ScanDirectory{}, repo.ErrDuplicate
	}
	if err != nil {
		return repo.ScanDirectory{}, fmt.Errorf("failed to create scan directory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return repo.ScanDirectory{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	d.ID = id
	return d, nil
}

// SetEnabled toggles a scan directory by path.
func (s *DirStore) SetEnabled(ctx context.Context, path string, enabled bool) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE scan_directories SET enabled = ? WHERE path = ?`, enabled, path)
	if err != nil {
		return fmt.Errorf("failed to toggle scan directory: %w", err)
	}
	return requireRowAffected(res)
}

// Delete removes a scan directory by path.
func (s *DirStore) Delete(ctx context.Context, path string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM scan_directories WHERE path = ?`, path)
	if err != nil {
		return fmt.Errorf("failed to delete scan directory: %w", err)
	}
	return requireRowAffected(res)
}

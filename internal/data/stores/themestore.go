package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
)

// ThemeStore implements repo.ThemeStore using SQLite.
type ThemeStore struct {
	db *db.DB
}

var _ repo.ThemeStore = (*ThemeStore)(nil)

// NewThemeStore creates a new SQLite-backed theme store.
func NewThemeStore(db *db.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

// List returns all themes ordered by name.
func (s *ThemeStore) List(ctx context.Context) ([]repo.Theme, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT id, name, color, description FROM themes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var themes []repo.Theme
	for rows.Next() {
		var t repo.Theme
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Description); err != nil {
			return nil, fmt.Errorf("failed to scan theme row: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// Create inserts a theme. Returns repo.ErrDuplicate when name is taken.
func (s *ThemeStore) Create(ctx context.Context, t repo.Theme) (repo.Theme, error) {
	res, err := s.db.Conn().ExecContext(ctx, `INSERT INTO themes (name, color, description) VALUES (?, ?, ?)`,
		t.Name, t.Color, t.Description)
	if IsUniqueViolation(err) {
		return repo.Theme{}, repo.ErrDuplicate
	}
	if err != nil {
		return repo.Theme{}, fmt.Errorf("failed to create theme: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return repo.Theme{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	t.ID = id
	return t, nil
}

// Delete removes a theme by name.
func (s *ThemeStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM themes WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return requireRowAffected(res)
}

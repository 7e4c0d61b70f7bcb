package stores

import (
	"context"
	"fmt"

	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
)

// SettingsStore implements repo.SettingsStore using SQLite. The settings
// table holds exactly one row, seeded by the schema.
type SettingsStore struct {
	db *db.DB
}

var _ repo.SettingsStore = (*SettingsStore)(nil)

// NewSettingsStore creates a new SQLite-backed settings store.
func NewSettingsStore(db *db.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the singleton settings record.
func (s *SettingsStore) Get(ctx context.Context) (repo.Settings, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT organization_root, auto_triage_enabled, backup_destination FROM settings WHERE id = 1`)

	var settings repo.Settings
	if err := row.Scan(&settings.OrganizationRoot, &settings.AutoTriageEnabled, &settings.BackupDestination); err != nil {
		return repo.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Save replaces the singleton settings record.
func (s *SettingsStore) Save(ctx context.Context, settings repo.Settings) error {
	_, err := s.db.Conn().ExecContext(ctx, `
		UPDATE settings SET organization_root = ?, auto_triage_enabled = ?, backup_destination = ? WHERE id = 1`,
		settings.OrganizationRoot, settings.AutoTriageEnabled, settings.BackupDestination,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

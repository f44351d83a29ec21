package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yourorg/internship-platform/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// settingsID is the fixed identity of the system settings singleton
const settingsID = "global"

// SettingsRepository handles persistence of the system settings singleton.
// Toggles are stored one row per key so partial updates only touch the keys
// they name.
type SettingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

type settingsRow struct {
	UpdatedAt time.Time `db:"updated_at"`
	UpdatedBy string    `db:"updated_by"`
}

type toggleRow struct {
	Key     string `db:"toggle_key"`
	Enabled bool   `db:"enabled"`
}

// Get returns the persisted settings, or nil when none were ever written
func (r *SettingsRepository) Get(ctx context.Context) (*model.SystemSettings, error) {
	var meta settingsRow
	err := r.db.GetContext(ctx, &meta,
		r.db.Rebind(`SELECT updated_at, updated_by FROM system_settings WHERE id = ?`), settingsID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get system settings", zap.Error(err))
		return nil, err
	}

	var rows []toggleRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT toggle_key, enabled FROM notification_toggles`); err != nil {
		r.logger.Error("Failed to get notification toggles", zap.Error(err))
		return nil, err
	}

	settings := &model.SystemSettings{
		Notifications: make(map[string]bool, len(rows)),
		UpdatedAt:     &meta.UpdatedAt,
		UpdatedBy:     meta.UpdatedBy,
	}
	for _, row := range rows {
		settings.Notifications[row.Key] = row.Enabled
	}

	return settings, nil
}

// Merge upserts the given toggles, leaving every other key untouched, and
// stamps the update time and author.
func (r *SettingsRepository) Merge(ctx context.Context, toggles map[string]bool, updatedBy string) error {
	now := r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	upsertToggle := r.db.Rebind(`
		INSERT INTO notification_toggles (toggle_key, enabled, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (toggle_key) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`)
	for key, enabled := range toggles {
		if _, err := tx.ExecContext(ctx, upsertToggle, key, enabled, now); err != nil {
			r.logger.Error("Failed to update notification toggle", zap.Error(err), zap.String("key", key))
			return err
		}
	}

	upsertMeta := r.db.Rebind(`
		INSERT INTO system_settings (id, updated_at, updated_by)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET updated_at = excluded.updated_at, updated_by = excluded.updated_by`)
	if _, err := tx.ExecContext(ctx, upsertMeta, settingsID, now, updatedBy); err != nil {
		r.logger.Error("Failed to update system settings", zap.Error(err))
		return err
	}

	return tx.Commit()
}

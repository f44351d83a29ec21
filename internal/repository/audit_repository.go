package repository

import (
	"context"
	"time"

	"github.com/yourorg/internship-platform/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AuditRepository appends and lists audit log entries. Entries are never
// updated or deleted.
type AuditRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sqlx.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Append writes a new audit log entry, assigning its id and timestamp
func (r *AuditRepository) Append(ctx context.Context, entry *model.AuditLog) error {
	entry.ID = uuid.New().String()
	entry.Timestamp = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO audit_logs (id, user_id, user_name, user_email, action, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.UserName, entry.UserEmail, entry.Action, entry.Details, entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append audit log", zap.Error(err), zap.String("action", entry.Action))
		return err
	}

	return nil
}

// List retrieves audit log entries newest first
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, user_name, user_email, action, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`)

	logs := []model.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit, offset); err != nil {
		r.logger.Error("Failed to list audit logs", zap.Error(err))
		return nil, err
	}

	return logs, nil
}

// Count returns the total number of audit log entries
func (r *AuditRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM audit_logs`); err != nil {
		r.logger.Error("Failed to count audit logs", zap.Error(err))
		return 0, err
	}
	return count, nil
}

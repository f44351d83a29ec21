package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yourorg/internship-platform/internal/model"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReportRepository handles database operations for student reports
type ReportRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a pending report
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) error {
	report.ID = uuid.New().String()
	report.Status = model.StatusPending
	report.CreatedAt = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO reports (id, student_id, lecturer_id, title, content, summary, status, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.StudentID, report.LecturerID, report.Title, report.Content,
		report.Summary, report.Status, report.Comment, report.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create report", zap.Error(err), zap.String("student_id", report.StudentID))
		return err
	}

	return nil
}

// GetByID retrieves a report by ID, or nil when it does not exist
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	query := r.db.Rebind(`
		SELECT id, student_id, lecturer_id, title, content, summary, status, comment, created_at, reviewed_at
		FROM reports WHERE id = ?`)

	var report model.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get report", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &report, nil
}

// UpdateStatus moves a pending report to a terminal status. It returns false
// when the report was no longer pending.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id, status, comment string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE reports SET status = ?, comment = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`)

	res, err := r.db.ExecContext(ctx, query, status, comment, r.now().UTC(), id, model.StatusPending)
	if err != nil {
		r.logger.Error("Failed to update report status", zap.Error(err), zap.String("id", id))
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

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

// RecordRepository stores the write-only workflow records: invites,
// evaluations and abuse reports.
type RecordRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sqlx.DB, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInvite inserts the pending user and its invite in one transaction
func (r *RecordRepository) CreateInvite(ctx context.Context, user *model.User, invite *model.Invite) error {
	now := r.now().UTC()
	user.ID = uuid.New().String()
	user.Status = model.UserStatusPending
	user.CreatedAt = now
	invite.ID = uuid.New().String()
	invite.UserID = user.ID
	invite.CreatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		user.ID, user.DisplayName, user.Email, user.Role, user.Status,
		user.LecturerID, user.SupervisorID, user.TermEndsAt, user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invited user", zap.Error(err), zap.String("email", user.Email))
		return err
	}

	_, err = tx.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO invites (id, user_id, email, role, invited_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		invite.ID, invite.UserID, invite.Email, invite.Role, invite.InvitedBy, invite.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invite", zap.Error(err), zap.String("email", invite.Email))
		return err
	}

	return tx.Commit()
}

// GetInvite retrieves an invite by ID, or nil when it does not exist
func (r *RecordRepository) GetInvite(ctx context.Context, id string) (*model.Invite, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, email, role, invited_by, created_at, accepted_at
		FROM invites WHERE id = ?`)

	var invite model.Invite
	if err := r.db.GetContext(ctx, &invite, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get invite", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &invite, nil
}

// AcceptInvite marks the invite accepted and activates its pending user in
// one transaction. The user is re-keyed to uid, the identity issued by the
// auth provider, along with assignments and notifications referring to it.
// It returns false when the invite was accepted concurrently.
func (r *RecordRepository) AcceptInvite(ctx context.Context, invite *model.Invite, uid string) (bool, error) {
	now := r.now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, r.db.Rebind(`
		UPDATE invites SET accepted_at = ?, user_id = ?
		WHERE id = ? AND accepted_at IS NULL`),
		now, uid, invite.ID,
	)
	if err != nil {
		r.logger.Error("Failed to accept invite", zap.Error(err), zap.String("invite_id", invite.ID))
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if uid != invite.UserID {
		for _, stmt := range []string{
			`UPDATE users SET id = ? WHERE id = ?`,
			`UPDATE users SET lecturer_id = ? WHERE lecturer_id = ?`,
			`UPDATE users SET supervisor_id = ? WHERE supervisor_id = ?`,
			`UPDATE notifications SET user_id = ? WHERE user_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, r.db.Rebind(stmt), uid, invite.UserID); err != nil {
				r.logger.Error("Failed to re-key invited user",
					zap.Error(err),
					zap.String("invite_id", invite.ID),
					zap.String("uid", uid))
				return false, err
			}
		}
	}

	_, err = tx.ExecContext(ctx, r.db.Rebind(`UPDATE users SET status = ? WHERE id = ? AND status = ?`),
		model.UserStatusActive, uid, model.UserStatusPending)
	if err != nil {
		r.logger.Error("Failed to activate invited user", zap.Error(err), zap.String("uid", uid))
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	invite.UserID = uid
	invite.AcceptedAt = &now
	return true, nil
}

// CreateEvaluation inserts an evaluation
func (r *RecordRepository) CreateEvaluation(ctx context.Context, evaluation *model.Evaluation) error {
	evaluation.ID = uuid.New().String()
	evaluation.CreatedAt = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO evaluations (id, student_id, evaluator_id, score, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		evaluation.ID, evaluation.StudentID, evaluation.EvaluatorID,
		evaluation.Score, evaluation.Remarks, evaluation.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create evaluation", zap.Error(err), zap.String("student_id", evaluation.StudentID))
		return err
	}

	return nil
}

// CreateAbuseReport inserts an abuse report
func (r *RecordRepository) CreateAbuseReport(ctx context.Context, report *model.AbuseReport) error {
	report.ID = uuid.New().String()
	report.CreatedAt = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO abuse_reports (id, reporter_id, subject, details, created_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		report.ID, report.ReporterID, report.Subject, report.Details, report.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create abuse report", zap.Error(err), zap.String("reporter_id", report.ReporterID))
		return err
	}

	return nil
}

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

const userColumns = `id, display_name, email, role, status, lecturer_id, supervisor_id, term_ends_at, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a new user. An empty ID is replaced with a generated one.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = r.now().UTC()
	if user.TermEndsAt != nil {
		termEndsAt := user.TermEndsAt.UTC()
		user.TermEndsAt = &termEndsAt
	}

	query := r.db.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.DisplayName, user.Email, user.Role, user.Status,
		user.LecturerID, user.SupervisorID, user.TermEndsAt, user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return err
	}

	return nil
}

// GetByID retrieves a user by ID, or nil when the user does not exist
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by ID", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &user, nil
}

// GetByEmail retrieves a user by email, or nil when no user has it
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, err
	}

	return &user, nil
}

// ListActive retrieves active users, restricted to a role when role is non-empty
func (r *UserRepository) ListActive(ctx context.Context, role string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status = ?`
	args := []interface{}{model.UserStatusActive}
	if role != "" {
		query += ` AND role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY created_at`

	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to list active users", zap.Error(err), zap.String("role", role))
		return nil, err
	}

	return users, nil
}

// AssignLecturer sets the lecturer of a student
func (r *UserRepository) AssignLecturer(ctx context.Context, studentID, lecturerID string) error {
	query := r.db.Rebind(`UPDATE users SET lecturer_id = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, lecturerID, studentID); err != nil {
		r.logger.Error("Failed to assign lecturer",
			zap.Error(err),
			zap.String("student_id", studentID),
			zap.String("lecturer_id", lecturerID))
		return err
	}

	return nil
}

// AssignSupervisor sets the workplace supervisor of a student
func (r *UserRepository) AssignSupervisor(ctx context.Context, studentID, supervisorID string) error {
	query := r.db.Rebind(`UPDATE users SET supervisor_id = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, supervisorID, studentID); err != nil {
		r.logger.Error("Failed to assign supervisor",
			zap.Error(err),
			zap.String("student_id", studentID),
			zap.String("supervisor_id", supervisorID))
		return err
	}

	return nil
}

// ListSupervisorsWithPendingEvaluations returns active supervisors that have
// at least one active student without an evaluation.
func (r *UserRepository) ListSupervisorsWithPendingEvaluations(ctx context.Context) ([]model.User, error) {
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users sup
		WHERE sup.role = ? AND sup.status = ?
		AND EXISTS (
			SELECT 1 FROM users st
			WHERE st.supervisor_id = sup.id AND st.role = ? AND st.status = ?
			AND NOT EXISTS (SELECT 1 FROM evaluations e WHERE e.student_id = st.id)
		)
		ORDER BY sup.created_at`)

	users := []model.User{}
	err := r.db.SelectContext(ctx, &users, query,
		model.RoleSupervisor, model.UserStatusActive, model.RoleStudent, model.UserStatusActive)
	if err != nil {
		r.logger.Error("Failed to list supervisors with pending evaluations", zap.Error(err))
		return nil, err
	}

	return users, nil
}

// ListStudentsTermEndingBetween returns active students whose internship ends in [from, to)
func (r *UserRepository) ListStudentsTermEndingBetween(ctx context.Context, from, to time.Time) ([]model.User, error) {
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users
		WHERE role = ? AND status = ? AND term_ends_at IS NOT NULL
		AND term_ends_at >= ? AND term_ends_at < ?
		ORDER BY term_ends_at`)

	users := []model.User{}
	err := r.db.SelectContext(ctx, &users, query,
		model.RoleStudent, model.UserStatusActive, from.UTC(), to.UTC())
	if err != nil {
		r.logger.Error("Failed to list students with term ending", zap.Error(err))
		return nil, err
	}

	return users, nil
}

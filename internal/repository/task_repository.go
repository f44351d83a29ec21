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

// TaskRepository handles database operations for daily tasks
type TaskRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a pending task
func (r *TaskRepository) Create(ctx context.Context, task *model.DailyTask) error {
	task.ID = uuid.New().String()
	task.Status = model.StatusPending
	task.CreatedAt = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO daily_tasks (id, student_id, supervisor_id, description, task_date, status, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.StudentID, task.SupervisorID, task.Description,
		task.TaskDate, task.Status, task.Comment, task.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create task", zap.Error(err), zap.String("student_id", task.StudentID))
		return err
	}

	return nil
}

// GetByID retrieves a task by ID, or nil when it does not exist
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.DailyTask, error) {
	query := r.db.Rebind(`
		SELECT id, student_id, supervisor_id, description, task_date, status, comment, created_at, reviewed_at
		FROM daily_tasks WHERE id = ?`)

	var task model.DailyTask
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get task", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &task, nil
}

// UpdateStatus moves a pending task to a terminal status. It returns false
// when the task was no longer pending.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status, comment string) (bool, error) {
	query := r.db.Rebind(`
		UPDATE daily_tasks SET status = ?, comment = ?, reviewed_at = ?
		WHERE id = ? AND status = ?`)

	res, err := r.db.ExecContext(ctx, query, status, comment, r.now().UTC(), id, model.StatusPending)
	if err != nil {
		r.logger.Error("Failed to update task status", zap.Error(err), zap.String("id", id))
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

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

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sqlx.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a new unread notification. The id and creation time are
// assigned here and written back into n.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.New().String()
	n.IsRead = false
	n.CreatedAt = r.now().UTC()

	query := r.db.Rebind(`
		INSERT INTO notifications (id, user_id, type, title, message, href, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.Href, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to add notification", zap.Error(err), zap.String("user_id", n.UserID))
		return err
	}

	return nil
}

// GetByID retrieves a notification by id, or nil when it does not exist
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, type, title, message, href, is_read, created_at
		FROM notifications WHERE id = ?`)

	var n model.Notification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get notification", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &n, nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, type, title, message, href, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`)

	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		r.logger.Error("Failed to get notifications", zap.Error(err), zap.String("user_id", userID))
		return nil, err
	}

	return notifications, nil
}

// ListByType retrieves notifications of the given type newest first,
// restricted to one recipient when userID is non-empty
func (r *NotificationRepository) ListByType(ctx context.Context, userID string, notificationType model.NotificationType) ([]model.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, href, is_read, created_at
		FROM notifications
		WHERE type = ?`
	args := []interface{}{string(notificationType)}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	notifications := []model.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("Failed to get notifications by type",
			zap.Error(err),
			zap.String("type", string(notificationType)),
			zap.String("user_id", userID))
		return nil, err
	}

	return notifications, nil
}

// GetUnreadCount retrieves the count of unread notifications for a user
func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, false); err != nil {
		r.logger.Error("Failed to get unread notification count", zap.Error(err), zap.String("user_id", userID))
		return 0, err
	}

	return count, nil
}

// MarkAsRead flips is_read to true. Marking an already read notification is a no-op.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ?`)

	if _, err := r.db.ExecContext(ctx, query, true, id); err != nil {
		r.logger.Error("Failed to mark notification as read", zap.Error(err), zap.String("id", id))
		return err
	}

	return nil
}

// MarkAllAsRead marks all notifications for a user as read and returns how many changed
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?`)

	res, err := r.db.ExecContext(ctx, query, true, userID, false)
	if err != nil {
		r.logger.Error("Failed to mark all notifications as read", zap.Error(err), zap.String("user_id", userID))
		return 0, err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

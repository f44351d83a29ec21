package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/mailer"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EmailOutcome describes what happened to the email leg of a dispatch
type EmailOutcome string

const (
	EmailSent      EmailOutcome = "sent"
	EmailDisabled  EmailOutcome = "disabled"
	EmailNoAddress EmailOutcome = "no_address"
	EmailFailed    EmailOutcome = "failed"
)

// DispatchResult reports the outcome of a dispatch. The notification is
// always set; EmailErr is set only when Email is EmailFailed.
type DispatchResult struct {
	Notification *model.Notification `json:"notification"`
	Email        EmailOutcome        `json:"email"`
	EmailErr     error               `json:"-"`
}

// emailToggles maps a notification type to the settings toggle gating its
// email. Types without an entry always send email.
var emailToggles = map[model.NotificationType]string{
	model.NotificationNewReportSubmitted: model.ToggleNewReportToLecturer,
	model.NotificationReportApproved:     model.ToggleReportApprovedToStudent,
	model.NotificationReportRejected:     model.ToggleReportRejectedToStudent,
	model.NotificationNewInvite:          model.ToggleNewInviteToUser,
	model.NotificationTaskApproved:       model.ToggleTaskApprovedToStudent,
	model.NotificationTaskRejected:       model.ToggleTaskRejectedToStudent,
	model.NotificationLecturerAssigned:   model.ToggleLecturerAssignedToStudent,
}

// NotificationService dispatches notifications and serves the recipient's inbox
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	userRepo         *repository.UserRepository
	settings         *SettingsService
	sender           mailer.Sender
	templates        *mailer.Templates
	stream           *events.Stream
	links            config.AppConfig
	validate         *validator.Validate
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	settings *SettingsService,
	sender mailer.Sender,
	templates *mailer.Templates,
	stream *events.Stream,
	links config.AppConfig,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		settings:         settings,
		sender:           sender,
		templates:        templates,
		stream:           stream,
		links:            links,
		validate:         newValidator(),
		logger:           logger,
	}
}

// Dispatch persists an in-app notification for event and then, if the
// settings gate allows it, emails the recipient.
//
// Only a malformed event, an unknown recipient or a failed write returns an
// error, and in those cases nothing has been stored. Email problems are
// reported through the result and logged, never returned.
func (s *NotificationService) Dispatch(ctx context.Context, event model.NotificationEvent) (*DispatchResult, error) {
	if err := validateStruct(s.validate, event); err != nil {
		return nil, err
	}

	recipient, err := s.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, event.UserID)
	}

	notification := &model.Notification{
		UserID:  event.UserID,
		Type:    event.Type,
		Title:   event.Title,
		Message: event.Message,
		Href:    event.Href,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.stream.NotificationCreated(ctx, notification)

	result := &DispatchResult{Notification: notification}

	if !s.emailEnabled(ctx, event.Type) {
		result.Email = EmailDisabled
		return result, nil
	}

	if recipient.Email == "" {
		s.logger.Warn("Recipient has no email address, skipping email",
			zap.String("user_id", recipient.ID),
			zap.String("notification_id", notification.ID))
		result.Email = EmailNoAddress
		return result, nil
	}

	if err := s.sendNotificationEmail(ctx, recipient.Email, notification); err != nil {
		s.logger.Error("Failed to send notification email",
			zap.String("user_id", recipient.ID),
			zap.String("notification_id", notification.ID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
		result.Email = EmailFailed
		result.EmailErr = err
		return result, nil
	}

	result.Email = EmailSent
	return result, nil
}

// Notify dispatches event on behalf of a workflow action whose own write has
// already committed. Dispatch errors are logged and not returned.
func (s *NotificationService) Notify(ctx context.Context, event model.NotificationEvent) *DispatchResult {
	result, err := s.Dispatch(ctx, event)
	if err != nil {
		s.logger.Error("Failed to dispatch notification",
			zap.String("user_id", event.UserID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return nil
	}
	return result
}

// emailEnabled consults the settings gate. A failed settings read fails open.
func (s *NotificationService) emailEnabled(ctx context.Context, t model.NotificationType) bool {
	key, gated := emailToggles[t]
	if !gated {
		return true
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("Failed to read settings, treating toggle as enabled",
			zap.String("toggle", key),
			zap.Error(err))
		return true
	}

	return settings.Enabled(key)
}

func (s *NotificationService) sendNotificationEmail(ctx context.Context, to string, n *model.Notification) error {
	html, err := s.templates.RenderNotification(mailer.NotificationData{
		Title:   n.Title,
		Message: n.Message,
		Link:    s.link(n.Href),
	})
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: n.Title,
		Text:    n.Message,
		HTML:    html,
	})
}

// link builds an absolute portal URL for href, falling back to the default landing page
func (s *NotificationService) link(href string) string {
	return buildLink(s.links, href)
}

func buildLink(links config.AppConfig, href string) string {
	if href == "" {
		href = links.DefaultLandingPath
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base := strings.TrimRight(links.BaseURL, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}

// GetNotifications retrieves a user's notifications newest first
func (s *NotificationService) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.notificationRepo.ListByUser(ctx, userID, limit, offset)
}

// GetUnreadCount retrieves the count of unread notifications for a user
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read. Only the recipient may do so;
// repeating the call is harmless.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return fmt.Errorf("%w: notification %s", ErrNotFound, notificationID)
	}
	if notification.UserID != userID {
		return fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}
	if notification.IsRead {
		return nil
	}

	return s.notificationRepo.MarkAsRead(ctx, notificationID)
}

// MarkAllAsRead marks all of a user's notifications as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.MarkAllAsRead(ctx, userID)
}

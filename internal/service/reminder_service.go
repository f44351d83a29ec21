package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"go.uber.org/zap"
)

// ReminderService sends the periodic reminder notifications
type ReminderService struct {
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	notifications    *NotificationService
	termEndingWindow time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
	notifications *NotificationService,
	termEndingWindow time.Duration,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		notifications:    notifications,
		termEndingWindow: termEndingWindow,
		now:              time.Now,
		logger:           logger,
	}
}

// SendEvaluationReminders reminds supervisors that still owe an evaluation.
// It returns the number of reminders dispatched.
func (s *ReminderService) SendEvaluationReminders(ctx context.Context) (int, error) {
	supervisors, err := s.userRepo.ListSupervisorsWithPendingEvaluations(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, supervisor := range supervisors {
		result := s.notifications.Notify(ctx, model.NotificationEvent{
			UserID:  supervisor.ID,
			Type:    model.NotificationEvaluationReminder,
			Title:   "Evaluation Reminder",
			Message: "Some of your students have not been evaluated yet. Please submit their evaluations.",
			Href:    "/supervisor/evaluations",
		})
		if result != nil {
			sent++
		}
	}

	s.logger.Info("Evaluation reminders dispatched", zap.Int("count", sent))
	return sent, nil
}

// SendTermEndingReminders reminds students whose internship ends within the
// window. A student is reminded once; later runs skip them.
func (s *ReminderService) SendTermEndingReminders(ctx context.Context) (int, error) {
	now := s.now()
	students, err := s.userRepo.ListStudentsTermEndingBetween(ctx, now, now.Add(s.termEndingWindow))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, student := range students {
		previous, err := s.notificationRepo.ListByType(ctx, student.ID, model.NotificationTermEndingReminder)
		if err != nil {
			return sent, err
		}
		if len(previous) > 0 {
			continue
		}

		result := s.notifications.Notify(ctx, model.NotificationEvent{
			UserID:  student.ID,
			Type:    model.NotificationTermEndingReminder,
			Title:   "Internship Ending Soon",
			Message: fmt.Sprintf("Your internship ends on %s. Make sure all reports and tasks are submitted.", student.TermEndsAt.Format("2006-01-02")),
			Href:    "/student/dashboard",
		})
		if result != nil {
			sent++
		}
	}

	s.logger.Info("Term ending reminders dispatched", zap.Int("count", sent))
	return sent, nil
}

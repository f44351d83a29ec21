package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/mailer"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// announcementPreviewLen is how many characters of an announcement the in-app card shows
const announcementPreviewLen = 150

// AnnouncementService fans an announcement out to every matching active user
type AnnouncementService struct {
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	sender           mailer.Sender
	templates        *mailer.Templates
	audit            *AuditService
	stream           *events.Stream
	links            config.AppConfig
	validate         *validator.Validate
	logger           *zap.Logger
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
	sender mailer.Sender,
	templates *mailer.Templates,
	audit *AuditService,
	stream *events.Stream,
	links config.AppConfig,
	logger *zap.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		sender:           sender,
		templates:        templates,
		audit:            audit,
		stream:           stream,
		links:            links,
		validate:         newValidator(),
		logger:           logger,
	}
}

// SendAnnouncement notifies every active user in the target audience in-app
// and by email. Announcements bypass the settings gate.
//
// An empty audience yields an unsuccessful result and writes nothing. A
// recipient whose email fails still counts as reached; a failed notification
// write is returned as an error and suppresses the audit entry.
func (s *AnnouncementService) SendAnnouncement(ctx context.Context, actor model.Actor, req model.AnnouncementCreate) (*model.AnnouncementResult, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	role := ""
	if req.TargetRoles != model.AudienceAll {
		role = model.AudienceRoles[req.TargetRoles]
	}

	recipients, err := s.userRepo.ListActive(ctx, role)
	if err != nil {
		return nil, err
	}

	if len(recipients) == 0 {
		return &model.AnnouncementResult{
			Success: false,
			Message: fmt.Sprintf("No active users found for audience %q", req.TargetRoles),
		}, nil
	}

	preview := truncate(req.Message, announcementPreviewLen)

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		errs          error
		emailFailures int
	)

	for _, recipient := range recipients {
		wg.Add(1)
		go func(user model.User) {
			defer wg.Done()

			if err := s.notifyRecipient(ctx, user, req.Title, preview); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("user %s: %w", user.ID, err))
				mu.Unlock()
				return
			}

			if err := s.emailRecipient(ctx, actor, user, req); err != nil {
				s.logger.Warn("Failed to email announcement",
					zap.String("user_id", user.ID),
					zap.Error(err))
				mu.Lock()
				emailFailures++
				mu.Unlock()
			}
		}(recipient)
	}
	wg.Wait()

	if errs != nil {
		s.logger.Error("Announcement fan-out incomplete",
			zap.Int("recipients", len(recipients)),
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Error(errs))
		return nil, fmt.Errorf("failed to create announcement notifications: %w", errs)
	}

	details := fmt.Sprintf("Sent announcement %q to %s (%d recipients)", req.Title, req.TargetRoles, len(recipients))
	if err := s.audit.Record(ctx, actor, ActionSentAnnouncement, details); err != nil {
		return nil, err
	}

	s.logger.Info("Announcement sent",
		zap.String("sent_by", actor.UID),
		zap.String("audience", req.TargetRoles),
		zap.Int("recipients", len(recipients)),
		zap.Int("email_failures", emailFailures))

	return &model.AnnouncementResult{
		Success:         true,
		Message:         fmt.Sprintf("Announcement sent to %d users", len(recipients)),
		RecipientsCount: len(recipients),
	}, nil
}

func (s *AnnouncementService) notifyRecipient(ctx context.Context, user model.User, title, preview string) error {
	notification := &model.Notification{
		UserID:  user.ID,
		Type:    model.NotificationAnnouncement,
		Title:   title,
		Message: preview,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	s.stream.NotificationCreated(ctx, notification)
	return nil
}

func (s *AnnouncementService) emailRecipient(ctx context.Context, actor model.Actor, user model.User, req model.AnnouncementCreate) error {
	if user.Email == "" {
		return errors.New("user has no email address")
	}

	html, err := s.templates.RenderAnnouncement(mailer.AnnouncementData{
		Title:     req.Title,
		Message:   req.Message,
		Sender:    actor.DisplayName,
		Recipient: user.DisplayName,
		Link:      buildLink(s.links, ""),
	})
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Announcement: " + req.Title,
		Text:    req.Message,
		HTML:    html,
	})
}

// truncate shortens s to at most n characters followed by an ellipsis
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

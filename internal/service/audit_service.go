package service

import (
	"context"

	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"
	"github.com/yourorg/internship-platform/internal/utils"

	"go.uber.org/zap"
)

// Audit actions
const (
	ActionCreatedInvite       = "Created Invite"
	ActionAcceptedInvite      = "Accepted Invite"
	ActionReviewedReport      = "Reviewed Report"
	ActionReviewedTask        = "Reviewed Task"
	ActionAssignedLecturer    = "Assigned Lecturer"
	ActionAssignedSupervisor  = "Assigned Supervisor"
	ActionSubmittedEvaluation = "Submitted Evaluation"
	ActionSentAnnouncement    = "Sent Announcement"
	ActionUpdatedSettings     = "Updated Settings"
)

// AuditService records sensitive actions
type AuditService struct {
	auditRepo *repository.AuditRepository
	stream    *events.Stream
	logger    *zap.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *repository.AuditRepository, stream *events.Stream, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		stream:    stream,
		logger:    logger,
	}
}

// Record appends one audit entry attributed to actor
func (s *AuditService) Record(ctx context.Context, actor model.Actor, action, details string) error {
	entry := &model.AuditLog{
		UserID:    actor.UID,
		UserName:  actor.DisplayName,
		UserEmail: actor.Email,
		Action:    action,
		Details:   details,
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		return err
	}

	s.stream.AuditRecorded(ctx, entry)
	return nil
}

// List retrieves a page of audit entries newest first, with the total count
func (s *AuditService) List(ctx context.Context, page, limit int) ([]model.AuditLog, int, error) {
	p := utils.Page{Number: page, Limit: limit}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}

	total, err := s.auditRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	logs, err := s.auditRepo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

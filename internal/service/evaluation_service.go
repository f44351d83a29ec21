package service

import (
	"context"
	"fmt"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EvaluationService handles student evaluations and abuse reports
type EvaluationService struct {
	userRepo      *repository.UserRepository
	recordRepo    *repository.RecordRepository
	notifications *NotificationService
	audit         *AuditService
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(
	userRepo *repository.UserRepository,
	recordRepo *repository.RecordRepository,
	notifications *NotificationService,
	audit *AuditService,
	logger *zap.Logger,
) *EvaluationService {
	return &EvaluationService{
		userRepo:      userRepo,
		recordRepo:    recordRepo,
		notifications: notifications,
		audit:         audit,
		validate:      newValidator(),
		logger:        logger,
	}
}

// SubmitEvaluation records a supervisor's or lecturer's evaluation of a student
func (s *EvaluationService) SubmitEvaluation(ctx context.Context, actor model.Actor, req model.EvaluationCreate) (*model.Evaluation, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if !hasRole(actor, model.RoleSupervisor, model.RoleLecturer) {
		return nil, fmt.Errorf("%w: only supervisors and lecturers evaluate students", ErrForbidden)
	}

	student, err := s.userRepo.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, req.StudentID)
	}

	evaluation := &model.Evaluation{
		StudentID:   student.ID,
		EvaluatorID: actor.UID,
		Score:       req.Score,
		Remarks:     req.Remarks,
	}
	if err := s.recordRepo.CreateEvaluation(ctx, evaluation); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, ActionSubmittedEvaluation,
		fmt.Sprintf("Evaluated %s with score %d", student.DisplayName, req.Score)); err != nil {
		return nil, err
	}

	return evaluation, nil
}

// SubmitAbuseReport stores an abuse report and notifies every active admin
func (s *EvaluationService) SubmitAbuseReport(ctx context.Context, actor model.Actor, req model.AbuseReportCreate) (*model.AbuseReport, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	report := &model.AbuseReport{
		ReporterID: actor.UID,
		Subject:    req.Subject,
		Details:    req.Details,
	}
	if err := s.recordRepo.CreateAbuseReport(ctx, report); err != nil {
		return nil, err
	}

	admins, err := s.userRepo.ListActive(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to load admins for abuse report", zap.String("report_id", report.ID), zap.Error(err))
		return report, nil
	}
	if len(admins) == 0 {
		s.logger.Warn("No active admins to notify about abuse report", zap.String("report_id", report.ID))
	}

	for _, admin := range admins {
		s.notifications.Notify(ctx, model.NotificationEvent{
			UserID:  admin.ID,
			Type:    model.NotificationAbuseReportSubmitted,
			Title:   "Abuse Report Submitted",
			Message: fmt.Sprintf("%s reported: %s", actor.DisplayName, req.Subject),
			Href:    "/admin/abuse-reports/" + report.ID,
		})
	}

	return report, nil
}

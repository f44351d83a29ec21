package service

import (
	"context"
	"fmt"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"
	"github.com/yourorg/internship-platform/internal/summarizer"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ReportService handles report submission and review
type ReportService struct {
	reportRepo    *repository.ReportRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
	audit         *AuditService
	summarizer    summarizer.Summarizer
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo *repository.ReportRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
	summarizer summarizer.Summarizer,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo:    reportRepo,
		userRepo:      userRepo,
		notifications: notifications,
		audit:         audit,
		summarizer:    summarizer,
		validate:      newValidator(),
		logger:        logger,
	}
}

// GetReport retrieves a report visible to actor
func (s *ReportService) GetReport(ctx context.Context, actor model.Actor, id string) (*model.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	if actor.UID != report.StudentID && actor.UID != report.LecturerID && !hasRole(actor, model.RoleAdmin, model.RoleHOD) {
		return nil, ErrForbidden
	}
	return report, nil
}

// SubmitReport stores a pending report from a student and notifies the
// student's lecturer. The summary is attached when the summarizer produces one.
func (s *ReportService) SubmitReport(ctx context.Context, actor model.Actor, req model.ReportCreate) (*model.Report, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	student, err := s.userRepo.GetByID(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: only students submit reports", ErrForbidden)
	}
	if student.LecturerID == nil || *student.LecturerID == "" {
		return nil, validationError("no lecturer assigned to student %s", student.ID)
	}

	summary, err := s.summarizer.Summarize(ctx, req.Content)
	if err != nil {
		s.logger.Warn("Failed to summarize report, submitting without summary",
			zap.String("student_id", student.ID),
			zap.Error(err))
		summary = ""
	}

	report := &model.Report{
		StudentID:  student.ID,
		LecturerID: *student.LecturerID,
		Title:      req.Title,
		Content:    req.Content,
		Summary:    summary,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  report.LecturerID,
		Type:    model.NotificationNewReportSubmitted,
		Title:   "New Report Submitted",
		Message: fmt.Sprintf("%s submitted a new report: %s", student.DisplayName, report.Title),
		Href:    "/lecturer/reports/" + report.ID,
	})

	return report, nil
}

// ReviewReport approves or rejects a pending report. Once the status change
// commits the student is notified, even if the audit entry then fails.
func (s *ReportService) ReviewReport(ctx context.Context, actor model.Actor, id string, review model.Review) (*model.Report, error) {
	if err := validateStruct(s.validate, review); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: report %s", ErrNotFound, id)
	}
	if report.LecturerID != actor.UID && !hasRole(actor, model.RoleAdmin, model.RoleHOD) {
		return nil, fmt.Errorf("%w: report is assigned to another lecturer", ErrForbidden)
	}
	if report.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: report is already %s", ErrInvalidTransition, report.Status)
	}

	status := model.StatusRejected
	notificationType := model.NotificationReportRejected
	if review.Approved() {
		status = model.StatusApproved
		notificationType = model.NotificationReportApproved
	}

	updated, err := s.reportRepo.UpdateStatus(ctx, id, status, review.Comment)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: report was reviewed concurrently", ErrInvalidTransition)
	}

	auditErr := s.audit.Record(ctx, actor, ActionReviewedReport,
		fmt.Sprintf("Report %q (%s) marked %s", report.Title, report.ID, status))

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  report.StudentID,
		Type:    notificationType,
		Title:   "Report " + status,
		Message: reviewMessage(fmt.Sprintf("Your report %q has been %s.", report.Title, lower(status)), review.Comment),
		Href:    "/student/reports/" + report.ID,
	})

	if auditErr != nil {
		return nil, fmt.Errorf("recording audit entry: %w", auditErr)
	}

	return s.reportRepo.GetByID(ctx, id)
}

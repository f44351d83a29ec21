package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserAdminService handles invites and the assignment of lecturers and supervisors
type UserAdminService struct {
	userRepo      *repository.UserRepository
	recordRepo    *repository.RecordRepository
	notifications *NotificationService
	audit         *AuditService
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewUserAdminService creates a new user admin service
func NewUserAdminService(
	userRepo *repository.UserRepository,
	recordRepo *repository.RecordRepository,
	notifications *NotificationService,
	audit *AuditService,
	logger *zap.Logger,
) *UserAdminService {
	return &UserAdminService{
		userRepo:      userRepo,
		recordRepo:    recordRepo,
		notifications: notifications,
		audit:         audit,
		validate:      newValidator(),
		logger:        logger,
	}
}

// CreateInvite creates a pending account with an invite and notifies the invitee
func (s *UserAdminService) CreateInvite(ctx context.Context, actor model.Actor, req model.InviteCreate) (*model.Invite, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with email %s", ErrConflict, email)
	}

	user := &model.User{
		DisplayName: req.DisplayName,
		Email:       email,
		Role:        req.Role,
	}
	invite := &model.Invite{
		Email:     email,
		Role:      req.Role,
		InvitedBy: actor.UID,
	}
	if err := s.recordRepo.CreateInvite(ctx, user, invite); err != nil {
		return nil, err
	}

	auditErr := s.audit.Record(ctx, actor, ActionCreatedInvite,
		fmt.Sprintf("Invited %s as %s", email, req.Role))

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  user.ID,
		Type:    model.NotificationNewInvite,
		Title:   "You're Invited",
		Message: fmt.Sprintf("%s invited you to join the internship portal as a %s.", actor.DisplayName, req.Role),
		Href:    "/accept-invite?invite=" + invite.ID,
	})

	if auditErr != nil {
		return nil, fmt.Errorf("recording audit entry: %w", auditErr)
	}

	s.logger.Info("Invite created",
		zap.String("invite_id", invite.ID),
		zap.String("role", req.Role),
		zap.String("invited_by", actor.UID))

	return invite, nil
}

// AcceptInvite activates the account created by an invite for the signed-in
// invitee. The actor's email must match the invite; the account takes the
// actor's UID so later requests resolve to it.
func (s *UserAdminService) AcceptInvite(ctx context.Context, actor model.Actor, inviteID string) (*model.User, error) {
	invite, err := s.recordRepo.GetInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite == nil {
		return nil, fmt.Errorf("%w: invite %s", ErrNotFound, inviteID)
	}
	if invite.AcceptedAt != nil {
		return nil, fmt.Errorf("%w: invite %s was already accepted", ErrConflict, inviteID)
	}
	if !strings.EqualFold(strings.TrimSpace(actor.Email), invite.Email) {
		return nil, fmt.Errorf("%w: invite was sent to another address", ErrForbidden)
	}
	if actor.Role != invite.Role {
		return nil, fmt.Errorf("%w: invite is for the %s role", ErrForbidden, invite.Role)
	}

	if actor.UID != invite.UserID {
		existing, err := s.userRepo.GetByID(ctx, actor.UID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: account %s", ErrConflict, actor.UID)
		}
	}

	accepted, err := s.recordRepo.AcceptInvite(ctx, invite, actor.UID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("%w: invite %s was already accepted", ErrConflict, inviteID)
	}

	if err := s.audit.Record(ctx, actor, ActionAcceptedInvite,
		fmt.Sprintf("Accepted invite %s as %s", invite.ID, invite.Role)); err != nil {
		return nil, fmt.Errorf("recording audit entry: %w", err)
	}

	s.logger.Info("Invite accepted",
		zap.String("invite_id", invite.ID),
		zap.String("user_id", actor.UID))

	return s.userRepo.GetByID(ctx, actor.UID)
}

// AssignLecturer assigns a lecturer to a student and notifies the student
func (s *UserAdminService) AssignLecturer(ctx context.Context, actor model.Actor, studentID, lecturerID string) (*model.User, error) {
	if lecturerID == "" {
		return nil, validationError("lecturer id is required")
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	lecturer, err := s.userRepo.GetByID(ctx, lecturerID)
	if err != nil {
		return nil, err
	}
	if lecturer == nil || lecturer.Role != model.RoleLecturer {
		return nil, fmt.Errorf("%w: lecturer %s", ErrNotFound, lecturerID)
	}

	if err := s.userRepo.AssignLecturer(ctx, studentID, lecturerID); err != nil {
		return nil, err
	}

	auditErr := s.audit.Record(ctx, actor, ActionAssignedLecturer,
		fmt.Sprintf("Assigned lecturer %s to student %s", lecturer.DisplayName, student.DisplayName))

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  student.ID,
		Type:    model.NotificationLecturerAssigned,
		Title:   "Lecturer Assigned",
		Message: fmt.Sprintf("%s has been assigned as your lecturer.", lecturer.DisplayName),
		Href:    "/student/profile",
	})

	if auditErr != nil {
		return nil, fmt.Errorf("recording audit entry: %w", auditErr)
	}

	return s.userRepo.GetByID(ctx, studentID)
}

// AssignSupervisor assigns a workplace supervisor to a student and notifies the student
func (s *UserAdminService) AssignSupervisor(ctx context.Context, actor model.Actor, studentID, supervisorID string) (*model.User, error) {
	if supervisorID == "" {
		return nil, validationError("supervisor id is required")
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}

	supervisor, err := s.userRepo.GetByID(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if supervisor == nil || supervisor.Role != model.RoleSupervisor {
		return nil, fmt.Errorf("%w: supervisor %s", ErrNotFound, supervisorID)
	}

	if err := s.userRepo.AssignSupervisor(ctx, studentID, supervisorID); err != nil {
		return nil, err
	}

	auditErr := s.audit.Record(ctx, actor, ActionAssignedSupervisor,
		fmt.Sprintf("Assigned supervisor %s to student %s", supervisor.DisplayName, student.DisplayName))

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  student.ID,
		Type:    model.NotificationSupervisorAssigned,
		Title:   "Supervisor Assigned",
		Message: fmt.Sprintf("%s has been assigned as your workplace supervisor.", supervisor.DisplayName),
		Href:    "/student/profile",
	})

	if auditErr != nil {
		return nil, fmt.Errorf("recording audit entry: %w", auditErr)
	}

	return s.userRepo.GetByID(ctx, studentID)
}

package service

import (
	"context"
	"fmt"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TaskService handles daily task declaration and review
type TaskService struct {
	taskRepo      *repository.TaskRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
	audit         *AuditService
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	audit *AuditService,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		notifications: notifications,
		audit:         audit,
		validate:      newValidator(),
		logger:        logger,
	}
}

// DeclareTask stores a pending task for the acting student and notifies the supervisor
func (s *TaskService) DeclareTask(ctx context.Context, actor model.Actor, req model.TaskCreate) (*model.DailyTask, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	student, err := s.userRepo.GetByID(ctx, actor.UID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != model.RoleStudent {
		return nil, fmt.Errorf("%w: only students declare tasks", ErrForbidden)
	}
	if student.SupervisorID == nil || *student.SupervisorID == "" {
		return nil, validationError("no supervisor assigned to student %s", student.ID)
	}

	task := &model.DailyTask{
		StudentID:    student.ID,
		SupervisorID: *student.SupervisorID,
		Description:  req.Description,
		TaskDate:     req.TaskDate,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  task.SupervisorID,
		Type:    model.NotificationTaskDeclared,
		Title:   "New Task Declared",
		Message: fmt.Sprintf("%s declared a task for %s: %s", student.DisplayName, task.TaskDate, task.Description),
		Href:    "/supervisor/tasks/" + task.ID,
	})

	return task, nil
}

// ReviewTask marks a pending task Completed or Rejected, then notifies the student
func (s *TaskService) ReviewTask(ctx context.Context, actor model.Actor, id string, review model.Review) (*model.DailyTask, error) {
	if err := validateStruct(s.validate, review); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	if task.SupervisorID != actor.UID {
		return nil, fmt.Errorf("%w: task is assigned to another supervisor", ErrForbidden)
	}
	if task.Status != model.StatusPending {
		return nil, fmt.Errorf("%w: task is already %s", ErrInvalidTransition, task.Status)
	}

	status, notificationType, verb := model.StatusRejected, model.NotificationTaskRejected, "rejected"
	if review.Approved() {
		status, notificationType, verb = model.StatusCompleted, model.NotificationTaskApproved, "approved"
	}

	updated, err := s.taskRepo.UpdateStatus(ctx, id, status, review.Comment)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: task was reviewed concurrently", ErrInvalidTransition)
	}

	auditErr := s.audit.Record(ctx, actor, ActionReviewedTask,
		fmt.Sprintf("Task for %s (%s) marked %s", task.TaskDate, task.ID, status))

	s.notifications.Notify(ctx, model.NotificationEvent{
		UserID:  task.StudentID,
		Type:    notificationType,
		Title:   "Task " + status,
		Message: reviewMessage(fmt.Sprintf("Your task for %s has been %s.", task.TaskDate, verb), review.Comment),
		Href:    "/student/tasks",
	})

	if auditErr != nil {
		return nil, fmt.Errorf("recording audit entry: %w", auditErr)
	}

	return s.taskRepo.GetByID(ctx, id)
}

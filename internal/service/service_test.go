package service

import (
	"context"
	"testing"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/mailer"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"
	"github.com/yourorg/internship-platform/internal/summarizer"
	"github.com/yourorg/internship-platform/internal/testutil"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLinks = config.AppConfig{
	BaseURL:            "https://portal.example.edu",
	DefaultLandingPath: "/dashboard",
}

var testTopics = config.TopicsConfig{Audit: "audit-events", Notifications: "notification-events"}

// testEnv wires every service against an in-memory database
type testEnv struct {
	db        *sqlx.DB
	mailer    *testutil.FakeMailer
	publisher *testutil.FakePublisher
	stream    *events.Stream

	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	auditRepo        *repository.AuditRepository
	reportRepo       *repository.ReportRepository
	taskRepo         *repository.TaskRepository

	audit         *AuditService
	settings      *SettingsService
	notifications *NotificationService
	announcements *AnnouncementService
	reports       *ReportService
	tasks         *TaskService
	userAdmin     *UserAdminService
	evaluations   *EvaluationService
	reminders     *ReminderService
}

type envOption func(*envConfig)

type envConfig struct {
	sender     *testutil.FakeMailer
	publisher  *testutil.FakePublisher
	summarizer summarizer.Summarizer
}

func withMailer(m *testutil.FakeMailer) envOption {
	return func(c *envConfig) { c.sender = m }
}

func withPublisher(p *testutil.FakePublisher) envOption {
	return func(c *envConfig) { c.publisher = p }
}

func withSummarizer(s summarizer.Summarizer) envOption {
	return func(c *envConfig) { c.summarizer = s }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &envConfig{
		sender:     testutil.NewFakeMailer(),
		publisher:  testutil.NewFakePublisher(),
		summarizer: summarizer.Noop{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := zap.NewNop()
	db := testutil.NewTestDB(t)
	stream := events.NewStream(cfg.publisher, testTopics, logger)
	t.Cleanup(func() {
		cfg.publisher.Release()
		stream.Close()
	})
	templates := mailer.DefaultTemplates()

	env := &testEnv{
		db:               db,
		mailer:           cfg.sender,
		publisher:        cfg.publisher,
		stream:           stream,
		userRepo:         repository.NewUserRepository(db, logger),
		notificationRepo: repository.NewNotificationRepository(db, logger),
		auditRepo:        repository.NewAuditRepository(db, logger),
		reportRepo:       repository.NewReportRepository(db, logger),
		taskRepo:         repository.NewTaskRepository(db, logger),
	}
	recordRepo := repository.NewRecordRepository(db, logger)

	env.audit = NewAuditService(env.auditRepo, stream, logger)
	env.settings = NewSettingsService(repository.NewSettingsRepository(db, logger), env.audit, logger)
	env.notifications = NewNotificationService(env.notificationRepo, env.userRepo, env.settings,
		cfg.sender, templates, stream, testLinks, logger)
	env.announcements = NewAnnouncementService(env.userRepo, env.notificationRepo,
		cfg.sender, templates, env.audit, stream, testLinks, logger)
	env.reports = NewReportService(env.reportRepo, env.userRepo, env.notifications, env.audit, cfg.summarizer, logger)
	env.tasks = NewTaskService(env.taskRepo, env.userRepo, env.notifications, env.audit, logger)
	env.userAdmin = NewUserAdminService(env.userRepo, recordRepo, env.notifications, env.audit, logger)
	env.evaluations = NewEvaluationService(env.userRepo, recordRepo, env.notifications, env.audit, logger)
	env.reminders = NewReminderService(env.userRepo, env.notificationRepo, env.notifications, 0, logger)

	return env
}

func actorOf(u *model.User) model.Actor {
	return model.Actor{UID: u.ID, DisplayName: u.DisplayName, Email: u.Email, Role: u.Role}
}

var adminActor = model.Actor{UID: "admin-1", DisplayName: "Ada Admin", Email: "ada@example.edu", Role: model.RoleAdmin}

// createStudent inserts an active student linked to the given lecturer and supervisor
func (e *testEnv) createStudent(t *testing.T, name, email string, lecturer, supervisor *model.User) *model.User {
	t.Helper()

	student := &model.User{
		DisplayName: name,
		Email:       email,
		Role:        model.RoleStudent,
		Status:      model.UserStatusActive,
	}
	if lecturer != nil {
		student.LecturerID = &lecturer.ID
	}
	if supervisor != nil {
		student.SupervisorID = &supervisor.ID
	}
	require.NoError(t, e.userRepo.Create(context.Background(), student))
	return student
}

func (e *testEnv) disableToggle(t *testing.T, key string) {
	t.Helper()
	_, err := e.settings.UpdateSettings(context.Background(), adminActor, model.SettingsUpdate{
		Notifications: map[string]bool{key: false},
	})
	require.NoError(t, err)
}

func (e *testEnv) notificationsFor(t *testing.T, userID string) []model.Notification {
	t.Helper()
	notifications, err := e.notifications.GetNotifications(context.Background(), userID, 100, 0)
	require.NoError(t, err)
	return notifications
}

func (e *testEnv) auditCount(t *testing.T) int {
	t.Helper()
	count, err := e.auditRepo.Count(context.Background())
	require.NoError(t, err)
	return count
}

func boolPtr(b bool) *bool {
	return &b
}

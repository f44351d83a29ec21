package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"
	"github.com/yourorg/internship-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnect_RejectsUnknownDriver(t *testing.T) {
	_, err := repository.Connect(context.Background(), config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	require.NoError(t, repository.Migrate(context.Background(), db))
	require.NoError(t, repository.Migrate(context.Background(), db))
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			UserID:  "u1",
			Type:    model.NotificationTaskApproved,
			Title:   fmt.Sprintf("Task %d", i),
			Message: "Approved.",
		}))
	}
	other := &model.Notification{UserID: "u2", Type: model.NotificationAnnouncement, Title: "News", Message: "Hello"}
	require.NoError(t, repo.Create(ctx, other))
	assert.NotEmpty(t, other.ID)
	assert.False(t, other.IsRead)

	t.Run("list newest first", func(t *testing.T) {
		notifications, err := repo.ListByUser(ctx, "u1", 10, 0)
		require.NoError(t, err)
		require.Len(t, notifications, 3)
		assert.Equal(t, "Task 2", notifications[0].Title)
		assert.Equal(t, "Task 0", notifications[2].Title)

		page, err := repo.ListByUser(ctx, "u1", 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "Task 0", page[0].Title)
	})

	t.Run("list by type", func(t *testing.T) {
		notifications, err := repo.ListByType(ctx, "", model.NotificationAnnouncement)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "u2", notifications[0].UserID)

		notifications, err = repo.ListByType(ctx, "u2", model.NotificationAnnouncement)
		require.NoError(t, err)
		assert.Len(t, notifications, 1)

		notifications, err = repo.ListByType(ctx, "u1", model.NotificationAnnouncement)
		require.NoError(t, err)
		assert.Empty(t, notifications)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		n, err := repo.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, n)
	})

	t.Run("mark as read is idempotent", func(t *testing.T) {
		require.NoError(t, repo.MarkAsRead(ctx, other.ID))
		require.NoError(t, repo.MarkAsRead(ctx, other.ID))

		n, err := repo.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, n.IsRead)

		count, err := repo.GetUnreadCount(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("mark all as read", func(t *testing.T) {
		count, err := repo.GetUnreadCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		marked, err := repo.MarkAllAsRead(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, marked)

		count, err = repo.GetUnreadCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestSettingsRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSettingsRepository(db, zap.NewNop())
	ctx := context.Background()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	require.NoError(t, repo.Merge(ctx, map[string]bool{
		model.ToggleNewInviteToUser:         false,
		model.ToggleReportApprovedToStudent: true,
	}, "admin-1"))
	require.NoError(t, repo.Merge(ctx, map[string]bool{
		model.ToggleReportApprovedToStudent: false,
	}, "admin-2"))

	settings, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, map[string]bool{
		model.ToggleNewInviteToUser:         false,
		model.ToggleReportApprovedToStudent: false,
	}, settings.Notifications)
	assert.Equal(t, "admin-2", settings.UpdatedBy)
	require.NotNil(t, settings.UpdatedAt)
	assert.WithinDuration(t, time.Now(), *settings.UpdatedAt, time.Minute)
}

func TestAuditRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewAuditRepository(db, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Append(ctx, &model.AuditLog{
			UserID:  "admin-1",
			Action:  "Created Invite",
			Details: fmt.Sprintf("entry %d", i),
		}))
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	logs, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "entry 3", logs[0].Details)
	assert.Equal(t, "entry 2", logs[1].Details)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, logs[0].Timestamp.IsZero())
}

func TestReportRepository_UpdateStatusOnlyFromPending(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewReportRepository(db, zap.NewNop())
	ctx := context.Background()

	report := &model.Report{StudentID: "s1", LecturerID: "l1", Title: "Week 1", Content: "Content"}
	require.NoError(t, repo.Create(ctx, report))
	assert.Equal(t, model.StatusPending, report.Status)

	updated, err := repo.UpdateStatus(ctx, report.ID, model.StatusApproved, "ok")
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.UpdateStatus(ctx, report.ID, model.StatusRejected, "changed my mind")
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.Equal(t, "ok", stored.Comment)
	assert.NotNil(t, stored.ReviewedAt)

	missing, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaskRepository_UpdateStatusOnlyFromPending(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewTaskRepository(db, zap.NewNop())
	ctx := context.Background()

	task := &model.DailyTask{StudentID: "s1", SupervisorID: "sup1", Description: "Docs", TaskDate: "2026-03-02"}
	require.NoError(t, repo.Create(ctx, task))

	updated, err := repo.UpdateStatus(ctx, task.ID, model.StatusCompleted, "")
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.UpdateStatus(ctx, task.ID, model.StatusRejected, "")
	require.NoError(t, err)
	assert.False(t, updated)

	stored, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	student := testutil.CreateUser(t, db, model.RoleStudent, "Sam Student", "sam@example.edu")
	lecturer := testutil.CreateUser(t, db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
	disabled := &model.User{DisplayName: "Dee Disabled", Email: "dee@example.edu", Role: model.RoleStudent, Status: model.UserStatusDisabled}
	require.NoError(t, repo.Create(ctx, disabled))

	t.Run("get by email", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "lee@example.edu")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, lecturer.ID, user.ID)

		user, err = repo.GetByEmail(ctx, "nobody@example.edu")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("list active filters by role and status", func(t *testing.T) {
		students, err := repo.ListActive(ctx, model.RoleStudent)
		require.NoError(t, err)
		require.Len(t, students, 1)
		assert.Equal(t, student.ID, students[0].ID)

		everyone, err := repo.ListActive(ctx, "")
		require.NoError(t, err)
		assert.Len(t, everyone, 2)

		admins, err := repo.ListActive(ctx, model.RoleAdmin)
		require.NoError(t, err)
		assert.Empty(t, admins)
	})

	t.Run("assign lecturer", func(t *testing.T) {
		require.NoError(t, repo.AssignLecturer(ctx, student.ID, lecturer.ID))

		user, err := repo.GetByID(ctx, student.ID)
		require.NoError(t, err)
		require.NotNil(t, user.LecturerID)
		assert.Equal(t, lecturer.ID, *user.LecturerID)
	})

	t.Run("assign supervisor", func(t *testing.T) {
		supervisor := testutil.CreateUser(t, db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
		require.NoError(t, repo.AssignSupervisor(ctx, student.ID, supervisor.ID))

		user, err := repo.GetByID(ctx, student.ID)
		require.NoError(t, err)
		require.NotNil(t, user.SupervisorID)
		assert.Equal(t, supervisor.ID, *user.SupervisorID)
	})
}

func TestUserRepository_ReminderQueries(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := repository.NewUserRepository(db, zap.NewNop())
	records := repository.NewRecordRepository(db, zap.NewNop())
	ctx := context.Background()

	supervisor := testutil.CreateUser(t, db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
	testutil.CreateUser(t, db, model.RoleSupervisor, "Ian Idle", "ian@example.edu")

	end := time.Date(2026, 6, 30, 17, 0, 0, 0, time.UTC)
	student := &model.User{
		DisplayName:  "Sam Student",
		Email:        "sam@example.edu",
		Role:         model.RoleStudent,
		Status:       model.UserStatusActive,
		SupervisorID: &supervisor.ID,
		TermEndsAt:   &end,
	}
	require.NoError(t, users.Create(ctx, student))

	pending, err := users.ListSupervisorsWithPendingEvaluations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, supervisor.ID, pending[0].ID)

	require.NoError(t, records.CreateEvaluation(ctx, &model.Evaluation{StudentID: student.ID, EvaluatorID: supervisor.ID, Score: 90}))

	pending, err = users.ListSupervisorsWithPendingEvaluations(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	ending, err := users.ListStudentsTermEndingBetween(ctx, end.Add(-24*time.Hour), end.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, ending, 1)
	assert.Equal(t, student.ID, ending[0].ID)

	ending, err = users.ListStudentsTermEndingBetween(ctx, end.Add(time.Hour), end.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ending)
}

func TestRecordRepository_CreateInvite(t *testing.T) {
	db := testutil.NewTestDB(t)
	records := repository.NewRecordRepository(db, zap.NewNop())
	users := repository.NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	user := &model.User{DisplayName: "Nia New", Email: "nia@example.edu", Role: model.RoleLecturer}
	invite := &model.Invite{Email: "nia@example.edu", Role: model.RoleLecturer, InvitedBy: "admin-1"}
	require.NoError(t, records.CreateInvite(ctx, user, invite))

	assert.Equal(t, user.ID, invite.UserID)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.UserStatusPending, stored.Status)

	active, err := users.ListActive(ctx, model.RoleLecturer)
	require.NoError(t, err)
	assert.Empty(t, active)

	report := &model.AbuseReport{ReporterID: user.ID, Subject: "Spam", Details: "Details"}
	require.NoError(t, records.CreateAbuseReport(ctx, report))
	assert.NotEmpty(t, report.ID)
}

func TestRecordRepository_AcceptInvite(t *testing.T) {
	db := testutil.NewTestDB(t)
	records := repository.NewRecordRepository(db, zap.NewNop())
	users := repository.NewUserRepository(db, zap.NewNop())
	notifications := repository.NewNotificationRepository(db, zap.NewNop())
	ctx := context.Background()

	user := &model.User{DisplayName: "Lin Lecturer", Email: "lin@example.edu", Role: model.RoleLecturer}
	invite := &model.Invite{Email: "lin@example.edu", Role: model.RoleLecturer, InvitedBy: "admin-1"}
	require.NoError(t, records.CreateInvite(ctx, user, invite))
	student := testutil.CreateUser(t, db, model.RoleStudent, "Sam Student", "sam@example.edu")
	require.NoError(t, users.AssignLecturer(ctx, student.ID, user.ID))
	require.NoError(t, notifications.Create(ctx, &model.Notification{
		UserID: user.ID, Type: model.NotificationNewInvite, Title: "Invited", Message: "Join us",
	}))

	missing, err := records.GetInvite(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	stored, err := records.GetInvite(ctx, invite.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.AcceptedAt)

	accepted, err := records.AcceptInvite(ctx, stored, "auth-lin")
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Equal(t, "auth-lin", stored.UserID)
	require.NotNil(t, stored.AcceptedAt)

	active, err := users.GetByID(ctx, "auth-lin")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, model.UserStatusActive, active.Status)

	old, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, old)

	assigned, err := users.GetByID(ctx, student.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.LecturerID)
	assert.Equal(t, "auth-lin", *assigned.LecturerID)

	moved, err := notifications.ListByUser(ctx, "auth-lin", 10, 0)
	require.NoError(t, err)
	assert.Len(t, moved, 1)

	again, err := records.AcceptInvite(ctx, invite, "auth-other")
	require.NoError(t, err)
	assert.False(t, again)
}

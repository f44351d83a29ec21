package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAnnouncement_EmptyAudience(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, model.RoleStudent, "Sam Student", "sam@example.edu")

	result, err := env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "Maintenance",
		Message:     "The portal is down on Sunday.",
		TargetRoles: model.AudienceAdmins,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "No active users")
	assert.Zero(t, result.RecipientsCount)

	assert.Equal(t, 0, env.auditCount(t))
	notifications, err := env.notificationRepo.ListByType(context.Background(), "", model.NotificationAnnouncement)
	require.NoError(t, err)
	assert.Empty(t, notifications)
	assert.Empty(t, env.mailer.Sent())
}

func TestSendAnnouncement_FansOutToAudience(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		testutil.CreateUser(t, env.db, model.RoleStudent, fmt.Sprintf("Student %d", i), fmt.Sprintf("student%d@example.edu", i))
	}
	lecturer := testutil.CreateUser(t, env.db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
	pending := &model.User{DisplayName: "Pat Pending", Email: "pat@example.edu", Role: model.RoleStudent, Status: model.UserStatusPending}
	require.NoError(t, env.userRepo.Create(ctx, pending))

	message := strings.Repeat("Mid-term reports are due next Friday. ", 12)
	result, err := env.announcements.SendAnnouncement(ctx, adminActor, model.AnnouncementCreate{
		Title:       "Reports due",
		Message:     message,
		TargetRoles: model.AudienceStudents,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.RecipientsCount)
	assert.Equal(t, "Announcement sent to 5 users", result.Message)

	notifications, err := env.notificationRepo.ListByType(ctx, "", model.NotificationAnnouncement)
	require.NoError(t, err)
	require.Len(t, notifications, 5)
	for _, n := range notifications {
		assert.LessOrEqual(t, utf8.RuneCountInString(n.Message), 153)
		assert.True(t, strings.HasSuffix(n.Message, "..."))
		assert.Equal(t, "Reports due", n.Title)
		assert.False(t, n.IsRead)
		assert.NotEqual(t, lecturer.ID, n.UserID)
		assert.NotEqual(t, pending.ID, n.UserID)
	}

	sent := env.mailer.Sent()
	require.Len(t, sent, 5)
	for _, msg := range sent {
		assert.Equal(t, message, msg.Text)
		assert.Equal(t, "Announcement: Reports due", msg.Subject)
		assert.Contains(t, msg.HTML, "Ada Admin")
	}

	logs, total, err := env.audit.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, ActionSentAnnouncement, logs[0].Action)
	assert.Contains(t, logs[0].Details, "5 recipients")

	env.stream.Wait()
	assert.Len(t, env.publisher.Messages(testTopics.Notifications), 5)
}

func TestSendAnnouncement_AllAudienceAndShortMessage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, model.RoleStudent, "Sam Student", "sam@example.edu")
	testutil.CreateUser(t, env.db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
	testutil.CreateUser(t, env.db, model.RoleHOD, "Hal Head", "hal@example.edu")

	result, err := env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "Welcome",
		Message:     "Welcome to the new term.",
		TargetRoles: model.AudienceAll,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.RecipientsCount)

	notifications, err := env.notificationRepo.ListByType(context.Background(), "", model.NotificationAnnouncement)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for _, n := range notifications {
		assert.Equal(t, "Welcome to the new term.", n.Message)
	}
}

func TestSendAnnouncement_EmailFailuresDoNotFail(t *testing.T) {
	env := newTestEnv(t, withMailer(testutil.NewFailingMailer()))
	testutil.CreateUser(t, env.db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
	testutil.CreateUser(t, env.db, model.RoleLecturer, "Lin Lecturer", "lin@example.edu")

	result, err := env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "Marking",
		Message:     "Please finish marking.",
		TargetRoles: model.AudienceLecturers,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.RecipientsCount)
	assert.Len(t, env.mailer.Sent(), 2)
	assert.Equal(t, 1, env.auditCount(t))
}

func TestSendAnnouncement_IgnoresSettingsGate(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, model.RoleStudent, "Sam Student", "sam@example.edu")

	toggles := make(map[string]bool, len(model.NotificationToggles))
	for _, key := range model.NotificationToggles {
		toggles[key] = false
	}
	_, err := env.settings.UpdateSettings(context.Background(), adminActor, model.SettingsUpdate{Notifications: toggles})
	require.NoError(t, err)

	result, err := env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "Holiday",
		Message:     "The office is closed on Monday.",
		TargetRoles: model.AudienceStudents,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, env.mailer.Sent(), 1)
}

func TestSendAnnouncement_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "Hello",
		Message:     "World",
		TargetRoles: "everyone",
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		TargetRoles: model.AudienceAll,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.announcements.SendAnnouncement(context.Background(), adminActor, model.AnnouncementCreate{
		Title:       "  ",
		Message:     "World",
		TargetRoles: model.AudienceAll,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 150))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "héé...", truncate("hééllo", 3))
	assert.Equal(t, strings.Repeat("x", 150), truncate(strings.Repeat("x", 150), 150))
}

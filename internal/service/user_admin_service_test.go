package service

import (
	"context"
	"testing"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// breakAuditLog removes the audit table so every later audit write fails
func (e *testEnv) breakAuditLog(t *testing.T) {
	t.Helper()
	_, err := e.db.Exec(`DROP TABLE audit_logs`)
	require.NoError(t, err)
}

func inviteStudent(t *testing.T, env *testEnv, email string) *model.Invite {
	t.Helper()
	invite, err := env.userAdmin.CreateInvite(context.Background(), adminActor, model.InviteCreate{
		Email:       email,
		DisplayName: "Nia New",
		Role:        model.RoleStudent,
	})
	require.NoError(t, err)
	return invite
}

func TestAcceptInvite_OnboardsStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lecturer := testutil.CreateUser(t, env.db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
	supervisor := testutil.CreateUser(t, env.db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")

	invite := inviteStudent(t, env, "nia@example.edu")

	// Assignments may be made before the invitee signs in
	_, err := env.userAdmin.AssignLecturer(ctx, adminActor, invite.UserID, lecturer.ID)
	require.NoError(t, err)

	nia := model.Actor{UID: "auth|nia", DisplayName: "Nia New", Email: "Nia@Example.edu", Role: model.RoleStudent}
	user, err := env.userAdmin.AcceptInvite(ctx, nia, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, "auth|nia", user.ID)
	assert.Equal(t, model.UserStatusActive, user.Status)
	require.NotNil(t, user.LecturerID)
	assert.Equal(t, lecturer.ID, *user.LecturerID)

	old, err := env.userRepo.GetByID(ctx, invite.UserID)
	require.NoError(t, err)
	assert.Nil(t, old)

	notifications := env.notificationsFor(t, nia.UID)
	require.Len(t, notifications, 2)
	assert.Equal(t, model.NotificationNewInvite, notifications[1].Type)

	_, err = env.userAdmin.AssignSupervisor(ctx, adminActor, nia.UID, supervisor.ID)
	require.NoError(t, err)

	_, err = env.reports.SubmitReport(ctx, nia, model.ReportCreate{Title: "Week 1", Content: "Onboarding."})
	require.NoError(t, err)
	_, err = env.tasks.DeclareTask(ctx, nia, model.TaskCreate{Description: "Read the handbook", TaskDate: "2026-03-02"})
	require.NoError(t, err)

	result, err := env.announcements.SendAnnouncement(ctx, adminActor, model.AnnouncementCreate{
		Title:       "Welcome",
		Message:     "Welcome aboard.",
		TargetRoles: model.AudienceStudents,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RecipientsCount)

	logs, _, err := env.audit.List(ctx, 1, 10)
	require.NoError(t, err)
	actions := []string{}
	for _, entry := range logs {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, ActionAcceptedInvite)
}

func TestAcceptInvite_KeepsIdentityWhenAlreadyKeyed(t *testing.T) {
	env := newTestEnv(t)
	invite := inviteStudent(t, env, "nia@example.edu")

	user, err := env.userAdmin.AcceptInvite(context.Background(), model.Actor{
		UID:   invite.UserID,
		Email: "nia@example.edu",
		Role:  model.RoleStudent,
	}, invite.ID)
	require.NoError(t, err)
	assert.Equal(t, invite.UserID, user.ID)
	assert.True(t, user.IsActive())
	assert.Len(t, env.notificationsFor(t, invite.UserID), 1)
}

func TestAcceptInvite_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invite := inviteStudent(t, env, "nia@example.edu")
	taken := testutil.CreateUser(t, env.db, model.RoleStudent, "Sam Student", "sam@example.edu")

	nia := model.Actor{UID: "auth|nia", Email: "nia@example.edu", Role: model.RoleStudent}

	tests := []struct {
		name     string
		actor    model.Actor
		inviteID string
		wantErr  error
	}{
		{name: "unknown invite", actor: nia, inviteID: "missing", wantErr: ErrNotFound},
		{name: "other address", actor: model.Actor{UID: "auth|x", Email: "x@example.edu", Role: model.RoleStudent}, inviteID: invite.ID, wantErr: ErrForbidden},
		{name: "other role", actor: model.Actor{UID: "auth|nia", Email: "nia@example.edu", Role: model.RoleLecturer}, inviteID: invite.ID, wantErr: ErrForbidden},
		{name: "uid already in use", actor: model.Actor{UID: taken.ID, Email: "nia@example.edu", Role: model.RoleStudent}, inviteID: invite.ID, wantErr: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.userAdmin.AcceptInvite(ctx, tt.actor, tt.inviteID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	pending, err := env.userRepo.GetByID(ctx, invite.UserID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusPending, pending.Status)

	_, err = env.userAdmin.AcceptInvite(ctx, nia, invite.ID)
	require.NoError(t, err)
	_, err = env.userAdmin.AcceptInvite(ctx, nia, invite.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAssignSupervisor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	supervisor := testutil.CreateUser(t, env.db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
	lecturer := testutil.CreateUser(t, env.db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
	student := env.createStudent(t, "Sam Student", "sam@example.edu", nil, nil)

	updated, err := env.userAdmin.AssignSupervisor(ctx, adminActor, student.ID, supervisor.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.SupervisorID)
	assert.Equal(t, supervisor.ID, *updated.SupervisorID)

	notifications := env.notificationsFor(t, student.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotificationSupervisorAssigned, notifications[0].Type)
	assert.Equal(t, "Sue Supervisor has been assigned as your workplace supervisor.", notifications[0].Message)
	require.Len(t, env.mailer.Sent(), 1)
	assert.Equal(t, 1, env.auditCount(t))

	_, err = env.userAdmin.AssignSupervisor(ctx, adminActor, student.ID, lecturer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.userAdmin.AssignSupervisor(ctx, adminActor, supervisor.ID, supervisor.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.userAdmin.AssignSupervisor(ctx, adminActor, student.ID, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommittedChangesNotifyWhenAuditFails(t *testing.T) {
	tests := []struct {
		name     string
		wantType model.NotificationType
		// act sets up the change, breaks the audit log, then performs it. It
		// returns the recipient and a check that the change was stored.
		act func(t *testing.T, env *testEnv) (string, func(t *testing.T), error)
	}{
		{
			name:     "report review",
			wantType: model.NotificationReportApproved,
			act: func(t *testing.T, env *testEnv) (string, func(t *testing.T), error) {
				lecturer, student, report := submitReport(t, env)
				env.breakAuditLog(t)

				_, err := env.reports.ReviewReport(context.Background(), actorOf(lecturer), report.ID, model.Review{Approve: boolPtr(true)})
				return student.ID, func(t *testing.T) {
					stored, err := env.reportRepo.GetByID(context.Background(), report.ID)
					require.NoError(t, err)
					assert.Equal(t, model.StatusApproved, stored.Status)
				}, err
			},
		},
		{
			name:     "task review",
			wantType: model.NotificationTaskRejected,
			act: func(t *testing.T, env *testEnv) (string, func(t *testing.T), error) {
				supervisor := testutil.CreateUser(t, env.db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
				student := env.createStudent(t, "Sam Student", "sam@example.edu", nil, supervisor)
				task, err := env.tasks.DeclareTask(context.Background(), actorOf(student), model.TaskCreate{
					Description: "Fixed the build",
					TaskDate:    "2026-03-02",
				})
				require.NoError(t, err)
				env.breakAuditLog(t)

				_, err = env.tasks.ReviewTask(context.Background(), actorOf(supervisor), task.ID, model.Review{Approve: boolPtr(false)})
				return student.ID, func(t *testing.T) {
					stored, err := env.taskRepo.GetByID(context.Background(), task.ID)
					require.NoError(t, err)
					assert.Equal(t, model.StatusRejected, stored.Status)
				}, err
			},
		},
		{
			name:     "invite",
			wantType: model.NotificationNewInvite,
			act: func(t *testing.T, env *testEnv) (string, func(t *testing.T), error) {
				env.breakAuditLog(t)

				_, err := env.userAdmin.CreateInvite(context.Background(), adminActor, model.InviteCreate{
					Email:       "nia@example.edu",
					DisplayName: "Nia New",
					Role:        model.RoleStudent,
				})
				user, lookupErr := env.userRepo.GetByEmail(context.Background(), "nia@example.edu")
				require.NoError(t, lookupErr)
				require.NotNil(t, user)
				return user.ID, func(t *testing.T) {
					assert.Equal(t, model.UserStatusPending, user.Status)
				}, err
			},
		},
		{
			name:     "lecturer assignment",
			wantType: model.NotificationLecturerAssigned,
			act: func(t *testing.T, env *testEnv) (string, func(t *testing.T), error) {
				lecturer := testutil.CreateUser(t, env.db, model.RoleLecturer, "Lee Lecturer", "lee@example.edu")
				student := env.createStudent(t, "Sam Student", "sam@example.edu", nil, nil)
				env.breakAuditLog(t)

				_, err := env.userAdmin.AssignLecturer(context.Background(), adminActor, student.ID, lecturer.ID)
				return student.ID, func(t *testing.T) {
					stored, err := env.userRepo.GetByID(context.Background(), student.ID)
					require.NoError(t, err)
					require.NotNil(t, stored.LecturerID)
					assert.Equal(t, lecturer.ID, *stored.LecturerID)
				}, err
			},
		},
		{
			name:     "supervisor assignment",
			wantType: model.NotificationSupervisorAssigned,
			act: func(t *testing.T, env *testEnv) (string, func(t *testing.T), error) {
				supervisor := testutil.CreateUser(t, env.db, model.RoleSupervisor, "Sue Supervisor", "sue@example.edu")
				student := env.createStudent(t, "Sam Student", "sam@example.edu", nil, nil)
				env.breakAuditLog(t)

				_, err := env.userAdmin.AssignSupervisor(context.Background(), adminActor, student.ID, supervisor.ID)
				return student.ID, func(t *testing.T) {
					stored, err := env.userRepo.GetByID(context.Background(), student.ID)
					require.NoError(t, err)
					require.NotNil(t, stored.SupervisorID)
					assert.Equal(t, supervisor.ID, *stored.SupervisorID)
				}, err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			recipientID, stored, err := tt.act(t, env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "recording audit entry")

			stored(t)
			notifications := env.notificationsFor(t, recipientID)
			require.Len(t, notifications, 1)
			assert.Equal(t, tt.wantType, notifications[0].Type)
		})
	}
}

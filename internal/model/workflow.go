package model

import (
	"time"
)

// Workflow statuses. Tasks use StatusCompleted for their approved state.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusCompleted = "Completed"
	StatusRejected  = "Rejected"
)

// Report is a student's periodic internship report reviewed by a lecturer
type Report struct {
	ID         string     `json:"id" db:"id"`
	StudentID  string     `json:"student_id" db:"student_id"`
	LecturerID string     `json:"lecturer_id" db:"lecturer_id"`
	Title      string     `json:"title" db:"title"`
	Content    string     `json:"content" db:"content"`
	Summary    string     `json:"summary,omitempty" db:"summary"`
	Status     string     `json:"status" db:"status"`
	Comment    string     `json:"comment,omitempty" db:"comment"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

// ReportCreate represents data for submitting a report
type ReportCreate struct {
	Title   string `json:"title" binding:"required" validate:"required,max=200"`
	Content string `json:"content" binding:"required" validate:"required"`
}

// Review is a reviewer's decision on a pending report or task
type Review struct {
	Approve *bool  `json:"approve" binding:"required" validate:"required"`
	Comment string `json:"comment" validate:"max=2000"`
}

// Approved reports whether the review approves the item
func (r Review) Approved() bool {
	return r.Approve != nil && *r.Approve
}

// DailyTask is a task a student declares for a day, reviewed by the supervisor
type DailyTask struct {
	ID           string     `json:"id" db:"id"`
	StudentID    string     `json:"student_id" db:"student_id"`
	SupervisorID string     `json:"supervisor_id" db:"supervisor_id"`
	Description  string     `json:"description" db:"description"`
	TaskDate     string     `json:"task_date" db:"task_date"`
	Status       string     `json:"status" db:"status"`
	Comment      string     `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

// TaskCreate represents data for declaring a task
type TaskCreate struct {
	Description string `json:"description" binding:"required" validate:"required"`
	TaskDate    string `json:"task_date" binding:"required" validate:"required,datetime=2006-01-02"`
}

// Invite records an account invitation
type Invite struct {
	ID         string     `json:"id" db:"id"`
	UserID     string     `json:"user_id" db:"user_id"`
	Email      string     `json:"email" db:"email"`
	Role       string     `json:"role" db:"role"`
	InvitedBy  string     `json:"invited_by" db:"invited_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
}

// InviteCreate represents data for inviting a user
type InviteCreate struct {
	Email       string `json:"email" binding:"required" validate:"required,email"`
	DisplayName string `json:"display_name" binding:"required" validate:"required"`
	Role        string `json:"role" binding:"required" validate:"required,oneof=student lecturer supervisor admin hod"`
}

// Evaluation is a reviewer's assessment of a student
type Evaluation struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	EvaluatorID string    `json:"evaluator_id" db:"evaluator_id"`
	Score       int       `json:"score" db:"score"`
	Remarks     string    `json:"remarks" db:"remarks"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// EvaluationCreate represents data for submitting an evaluation
type EvaluationCreate struct {
	StudentID string `json:"student_id" binding:"required" validate:"required"`
	Score     int    `json:"score" validate:"min=0,max=100"`
	Remarks   string `json:"remarks"`
}

// AbuseReport is a user's report of misconduct, routed to admins
type AbuseReport struct {
	ID         string    `json:"id" db:"id"`
	ReporterID string    `json:"reporter_id" db:"reporter_id"`
	Subject    string    `json:"subject" db:"subject"`
	Details    string    `json:"details" db:"details"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AbuseReportCreate represents data for submitting an abuse report
type AbuseReportCreate struct {
	Subject string `json:"subject" binding:"required" validate:"required,max=200"`
	Details string `json:"details" binding:"required" validate:"required"`
}

// AuditLog is an append-only record of a sensitive action
type AuditLog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	UserEmail string    `json:"user_email" db:"user_email"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}

// Announcement audiences
const (
	AudienceAll         = "all"
	AudienceStudents    = "students"
	AudienceLecturers   = "lecturers"
	AudienceSupervisors = "supervisors"
	AudienceAdmins      = "admins"
	AudienceHODs        = "hods"
)

// AudienceRoles maps a plural audience to the singular role it targets
var AudienceRoles = map[string]string{
	AudienceStudents:    RoleStudent,
	AudienceLecturers:   RoleLecturer,
	AudienceSupervisors: RoleSupervisor,
	AudienceAdmins:      RoleAdmin,
	AudienceHODs:        RoleHOD,
}

// AnnouncementCreate represents data for sending an announcement
type AnnouncementCreate struct {
	Title       string `json:"title" binding:"required" validate:"required,notblank"`
	Message     string `json:"message" binding:"required" validate:"required,notblank"`
	TargetRoles string `json:"target_roles" binding:"required" validate:"required,oneof=all students lecturers supervisors admins hods"`
}

// AnnouncementResult is the structured outcome of an announcement
type AnnouncementResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RecipientsCount int    `json:"recipients_count,omitempty"`
}

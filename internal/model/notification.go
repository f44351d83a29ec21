package model

import (
	"time"
)

// NotificationType tags the domain event a notification represents
type NotificationType string

const (
	NotificationNewInvite            NotificationType = "NEW_INVITE"
	NotificationNewReportSubmitted   NotificationType = "NEW_REPORT_SUBMITTED"
	NotificationReportApproved       NotificationType = "REPORT_APPROVED"
	NotificationReportRejected       NotificationType = "REPORT_REJECTED"
	NotificationTaskDeclared         NotificationType = "TASK_DECLARED"
	NotificationTaskApproved         NotificationType = "TASK_APPROVED"
	NotificationTaskRejected         NotificationType = "TASK_REJECTED"
	NotificationLecturerAssigned     NotificationType = "LECTURER_ASSIGNED"
	NotificationSupervisorAssigned   NotificationType = "SUPERVISOR_ASSIGNED"
	NotificationEvaluationReminder   NotificationType = "EVALUATION_REMINDER"
	NotificationTermEndingReminder   NotificationType = "TERM_ENDING_REMINDER"
	NotificationAnnouncement         NotificationType = "ANNOUNCEMENT"
	NotificationAbuseReportSubmitted NotificationType = "ABUSE_REPORT_SUBMITTED"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationNewInvite:            {},
	NotificationNewReportSubmitted:   {},
	NotificationReportApproved:       {},
	NotificationReportRejected:       {},
	NotificationTaskDeclared:         {},
	NotificationTaskApproved:         {},
	NotificationTaskRejected:         {},
	NotificationLecturerAssigned:     {},
	NotificationSupervisorAssigned:   {},
	NotificationEvaluationReminder:   {},
	NotificationTermEndingReminder:   {},
	NotificationAnnouncement:         {},
	NotificationAbuseReportSubmitted: {},
}

// Valid reports whether t is one of the known notification types
func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

// Notification is an in-app notification shown to a single recipient
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Href      string           `json:"href,omitempty" db:"href"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// NotificationEvent is the input of a single dispatch
type NotificationEvent struct {
	UserID  string           `json:"user_id" validate:"required,notblank"`
	Type    NotificationType `json:"type" validate:"required,notificationtype"`
	Title   string           `json:"title" validate:"required,notblank"`
	Message string           `json:"message" validate:"required,notblank"`
	Href    string           `json:"href,omitempty"`
}

// NotificationCountResponse represents the count of unread notifications
type NotificationCountResponse struct {
	Count int `json:"count"`
}

// NotificationMarkResponse represents the response after marking notifications as read
type NotificationMarkResponse struct {
	Success     bool `json:"success"`
	MarkedCount int  `json:"marked_count"`
}

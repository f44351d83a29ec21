package model

import (
	"time"
)

// Toggle keys of SystemSettings.Notifications
const (
	ToggleNewReportToLecturer       = "newReportToLecturer"
	ToggleReportApprovedToStudent   = "reportApprovedToStudent"
	ToggleReportRejectedToStudent   = "reportRejectedToStudent"
	ToggleNewInviteToUser           = "newInviteToUser"
	ToggleTaskDeclaredToSupervisor  = "taskDeclaredToSupervisor"
	ToggleTaskApprovedToStudent     = "taskApprovedToStudent"
	ToggleTaskRejectedToStudent     = "taskRejectedToStudent"
	ToggleLecturerAssignedToStudent = "lecturerAssignedToStudent"
)

// NotificationToggles lists every toggle the service knows about
var NotificationToggles = []string{
	ToggleNewReportToLecturer,
	ToggleReportApprovedToStudent,
	ToggleReportRejectedToStudent,
	ToggleNewInviteToUser,
	ToggleTaskDeclaredToSupervisor,
	ToggleTaskApprovedToStudent,
	ToggleTaskRejectedToStudent,
	ToggleLecturerAssignedToStudent,
}

// SystemSettings is the process-wide settings record
type SystemSettings struct {
	Notifications map[string]bool `json:"notifications"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
	UpdatedBy     string          `json:"updated_by,omitempty"`
}

// DefaultSystemSettings returns settings with every toggle enabled
func DefaultSystemSettings() *SystemSettings {
	toggles := make(map[string]bool, len(NotificationToggles))
	for _, key := range NotificationToggles {
		toggles[key] = true
	}
	return &SystemSettings{Notifications: toggles}
}

// Enabled reports whether the toggle is on. Unknown or missing keys count as enabled.
func (s *SystemSettings) Enabled(key string) bool {
	if s == nil || s.Notifications == nil {
		return true
	}
	enabled, ok := s.Notifications[key]
	if !ok {
		return true
	}
	return enabled
}

// SettingsUpdate is a partial update of the notification toggles
type SettingsUpdate struct {
	Notifications map[string]bool `json:"notifications" binding:"required" validate:"required,min=1"`
}

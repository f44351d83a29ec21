package handler

import (
	"net/http"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/service"
	"github.com/yourorg/internship-platform/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles settings, announcements, invites, assignments and audit logs.
// Invite acceptance is the one route open to non-admins.
type AdminHandler struct {
	settingsService     *service.SettingsService
	announcementService *service.AnnouncementService
	userAdminService    *service.UserAdminService
	auditService        *service.AuditService
	logger              *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	settingsService *service.SettingsService,
	announcementService *service.AnnouncementService,
	userAdminService *service.UserAdminService,
	auditService *service.AuditService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		settingsService:     settingsService,
		announcementService: announcementService,
		userAdminService:    userAdminService,
		auditService:        auditService,
		logger:              logger,
	}
}

// GetSettings handles retrieving the system settings
// GET /api/v1/admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to get settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles a partial update of the notification toggles
// PATCH /api/v1/admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var patch model.SettingsUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), actor, patch)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// SendAnnouncement handles sending an announcement to an audience. An empty
// audience is answered with success=false rather than an error status.
// POST /api/v1/admin/announcements
func (h *AdminHandler) SendAnnouncement(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.AnnouncementCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.announcementService.SendAnnouncement(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to send announcement")
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateInvite handles inviting a new user
// POST /api/v1/admin/invites
func (h *AdminHandler) CreateInvite(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.InviteCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.userAdminService.CreateInvite(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create invite")
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// AssignLecturer handles assigning a lecturer to a student
// PUT /api/v1/admin/students/:id/lecturer
func (h *AdminHandler) AssignLecturer(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.LecturerAssignment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.userAdminService.AssignLecturer(c.Request.Context(), actor, c.Param("id"), req.LecturerID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to assign lecturer")
		return
	}

	c.JSON(http.StatusOK, student)
}

// AssignSupervisor handles assigning a workplace supervisor to a student
// PUT /api/v1/admin/students/:id/supervisor
func (h *AdminHandler) AssignSupervisor(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.SupervisorAssignment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.userAdminService.AssignSupervisor(c.Request.Context(), actor, c.Param("id"), req.SupervisorID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to assign supervisor")
		return
	}

	c.JSON(http.StatusOK, student)
}

// AcceptInvite handles the signed-in invitee accepting their invite
// POST /api/v1/invites/:id/accept
func (h *AdminHandler) AcceptInvite(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	user, err := h.userAdminService.AcceptInvite(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to accept invite")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListAuditLogs handles listing audit log entries, newest first
// GET /api/v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page := utils.ParsePage(c, 50, 200)

	logs, total, err := h.auditService.List(c.Request.Context(), page.Number, page.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list audit logs")
		return
	}

	utils.SendPaginatedResponse(c, http.StatusOK, logs, total, page)
}

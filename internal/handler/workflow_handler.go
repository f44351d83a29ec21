package handler

import (
	"net/http"

	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorkflowHandler handles reports, daily tasks, evaluations and abuse reports
type WorkflowHandler struct {
	reportService     *service.ReportService
	taskService       *service.TaskService
	evaluationService *service.EvaluationService
	logger            *zap.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(
	reportService *service.ReportService,
	taskService *service.TaskService,
	evaluationService *service.EvaluationService,
	logger *zap.Logger,
) *WorkflowHandler {
	return &WorkflowHandler{
		reportService:     reportService,
		taskService:       taskService,
		evaluationService: evaluationService,
		logger:            logger,
	}
}

// GetReport handles retrieving a report
// GET /api/v1/reports/:id
func (h *WorkflowHandler) GetReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetReport(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to get report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// SubmitReport handles a student submitting a report
// POST /api/v1/reports
func (h *WorkflowHandler) SubmitReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.ReportCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.SubmitReport(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ReviewReport handles a lecturer approving or rejecting a report
// PUT /api/v1/reports/:id/review
func (h *WorkflowHandler) ReviewReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var review model.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reportService.ReviewReport(c.Request.Context(), actor, c.Param("id"), review)
	if err != nil {
		respondError(c, h.logger, err, "Failed to review report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeclareTask handles a student declaring a daily task
// POST /api/v1/tasks
func (h *WorkflowHandler) DeclareTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.TaskCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.DeclareTask(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to declare task")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ReviewTask handles a supervisor approving or rejecting a task
// PUT /api/v1/tasks/:id/review
func (h *WorkflowHandler) ReviewTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var review model.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.ReviewTask(c.Request.Context(), actor, c.Param("id"), review)
	if err != nil {
		respondError(c, h.logger, err, "Failed to review task")
		return
	}

	c.JSON(http.StatusOK, task)
}

// SubmitEvaluation handles submitting a student evaluation
// POST /api/v1/evaluations
func (h *WorkflowHandler) SubmitEvaluation(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.EvaluationCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evaluation, err := h.evaluationService.SubmitEvaluation(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit evaluation")
		return
	}

	c.JSON(http.StatusCreated, evaluation)
}

// SubmitAbuseReport handles submitting an abuse report
// POST /api/v1/abuse-reports
func (h *WorkflowHandler) SubmitAbuseReport(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req model.AbuseReportCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.evaluationService.SubmitAbuseReport(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit abuse report")
		return
	}

	c.JSON(http.StatusCreated, report)
}

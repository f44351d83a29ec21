package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/internship-platform/internal/config"
	"github.com/yourorg/internship-platform/internal/events"
	"github.com/yourorg/internship-platform/internal/handler"
	"github.com/yourorg/internship-platform/internal/mailer"
	"github.com/yourorg/internship-platform/internal/middleware"
	"github.com/yourorg/internship-platform/internal/model"
	"github.com/yourorg/internship-platform/internal/repository"
	"github.com/yourorg/internship-platform/internal/scheduler"
	"github.com/yourorg/internship-platform/internal/service"
	"github.com/yourorg/internship-platform/internal/summarizer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 2*time.Minute)
	db, err := repository.Connect(connectCtx, cfg.Database, logger)
	cancelConnect()
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Kafka producer (if enabled)
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, logger)
		logger.Info("Initialized Kafka producer", zap.Strings("brokers", cfg.Kafka.Brokers))
	}
	stream := events.NewStream(publisher, cfg.Kafka.Topics, logger)

	// Email delivery
	templates, err := mailer.NewTemplates(cfg.SMTP.TemplatesPath)
	if err != nil {
		logger.Fatal("Failed to load email templates", zap.Error(err))
	}
	sender := mailer.NewSMTPSender(cfg.SMTP, logger)
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP host not configured, emails will fail and be logged")
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db, logger)
	notificationRepo := repository.NewNotificationRepository(db, logger)
	settingsRepo := repository.NewSettingsRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)
	reportRepo := repository.NewReportRepository(db, logger)
	taskRepo := repository.NewTaskRepository(db, logger)
	recordRepo := repository.NewRecordRepository(db, logger)

	// Create services
	auditService := service.NewAuditService(auditRepo, stream, logger)
	settingsService := service.NewSettingsService(settingsRepo, auditService, logger)
	notificationService := service.NewNotificationService(
		notificationRepo,
		userRepo,
		settingsService,
		sender,
		templates,
		stream,
		cfg.App,
		logger,
	)
	announcementService := service.NewAnnouncementService(
		userRepo,
		notificationRepo,
		sender,
		templates,
		auditService,
		stream,
		cfg.App,
		logger,
	)
	reportService := service.NewReportService(
		reportRepo,
		userRepo,
		notificationService,
		auditService,
		summarizer.New(cfg.Summarizer, logger),
		logger,
	)
	taskService := service.NewTaskService(taskRepo, userRepo, notificationService, auditService, logger)
	userAdminService := service.NewUserAdminService(userRepo, recordRepo, notificationService, auditService, logger)
	evaluationService := service.NewEvaluationService(userRepo, recordRepo, notificationService, auditService, logger)

	// Reminder jobs
	var sched *scheduler.Scheduler
	if cfg.Reminders.Enabled {
		reminderService := service.NewReminderService(userRepo, notificationRepo, notificationService, cfg.Reminders.TermEndingWindow, logger)
		sched = scheduler.New(reminderService, cfg.Reminders, logger)
		if err := sched.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// Create HTTP server
	router := setupRouter(
		middleware.NewTokenVerifier(cfg.Auth),
		handler.NewNotificationHandler(notificationService, logger),
		handler.NewAdminHandler(settingsService, announcementService, userAdminService, auditService, logger),
		handler.NewWorkflowHandler(reportService, taskService, evaluationService, logger),
		logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	stream.Close()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event producer", zap.Error(err))
		}
	}

	logger.Info("Server exited properly")
}

func setupRouter(
	verifier *middleware.TokenVerifier,
	notificationHandler *handler.NotificationHandler,
	adminHandler *handler.AdminHandler,
	workflowHandler *handler.WorkflowHandler,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier, logger))
	{
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/count", notificationHandler.GetUnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
			notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/:id", workflowHandler.GetReport)
			reports.POST("", middleware.RequireRole(model.RoleStudent), workflowHandler.SubmitReport)
			reports.PUT("/:id/review",
				middleware.RequireRole(model.RoleLecturer, model.RoleAdmin, model.RoleHOD),
				workflowHandler.ReviewReport)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.POST("", middleware.RequireRole(model.RoleStudent), workflowHandler.DeclareTask)
			tasks.PUT("/:id/review", middleware.RequireRole(model.RoleSupervisor), workflowHandler.ReviewTask)
		}

		v1.POST("/evaluations",
			middleware.RequireRole(model.RoleSupervisor, model.RoleLecturer),
			workflowHandler.SubmitEvaluation)
		v1.POST("/abuse-reports", workflowHandler.SubmitAbuseReport)
		v1.POST("/invites/:id/accept", adminHandler.AcceptInvite)

		admin := v1.Group("/admin")
		{
			adminOnly := middleware.RequireRole(model.RoleAdmin)
			adminOrHOD := middleware.RequireRole(model.RoleAdmin, model.RoleHOD)

			admin.GET("/settings", adminOnly, adminHandler.GetSettings)
			admin.PATCH("/settings", adminOnly, adminHandler.UpdateSettings)
			admin.POST("/notifications", adminOnly, notificationHandler.Dispatch)
			admin.POST("/announcements", adminOrHOD, adminHandler.SendAnnouncement)
			admin.POST("/invites", adminOrHOD, adminHandler.CreateInvite)
			admin.PUT("/students/:id/lecturer", adminOrHOD, adminHandler.AssignLecturer)
			admin.PUT("/students/:id/supervisor", adminOrHOD, adminHandler.AssignSupervisor)
			admin.GET("/audit-logs", adminOnly, adminHandler.ListAuditLogs)
		}
	}

	return router
}

func createLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapLevel zap.AtomicLevel
	switch cfg.Level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	zapConfig := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/titans-club/portal-api/api/swagger"
	"github.com/titans-club/portal-api/internal/handler"
	"github.com/titans-club/portal-api/internal/middleware"
	"github.com/titans-club/portal-api/internal/models"
	"github.com/titans-club/portal-api/internal/repository"
	"github.com/titans-club/portal-api/internal/service"
	"github.com/titans-club/portal-api/pkg/cache"
	"github.com/titans-club/portal-api/pkg/config"
	"github.com/titans-club/portal-api/pkg/database"
	"github.com/titans-club/portal-api/pkg/export"
	"github.com/titans-club/portal-api/pkg/jobs"
	"github.com/titans-club/portal-api/pkg/logger"
	corsmiddleware "github.com/titans-club/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/titans-club/portal-api/pkg/middleware/requestid"
)

// @title TITANS Portal API
// @version 1.0.0
// @description Club management portal with term rollover and archive restore
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewDocumentStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		logr.Sugar().Fatalw("failed to prepare schema", "error", err)
	}
	memberRepo := repository.NewMemberRepository(store)
	archiveRepo := repository.NewArchiveRepository(store)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.ArchiveViewKeyPrefix)
	auditRepo := repository.NewAuditRepository(store)

	validate := validator.New()
	metricsService := service.NewMetricsService()
	provisioner := service.NewCredentialProvisioner(store, validate, logr)
	codec := service.NewArchiveCodec(store)

	authService := service.NewAuthService(store, memberRepo, cfg.JWT, validate, logr)
	memberService := service.NewMemberService(memberRepo, auditRepo, validate, logr)
	noticeService := service.NewNoticeService(store, auditRepo, logr)
	eventService := service.NewEventService(store, auditRepo, logr)
	taskService := service.NewTaskService(store, auditRepo, logr)
	queryService := service.NewQueryService(store, auditRepo, logr)
	activityService := service.NewActivityService(auditRepo, logr)
	exportService := service.NewExportService(memberRepo, archiveRepo, export.NewCSVRenderer(), export.NewPDFRenderer(), logr)

	rolloverService := service.NewRolloverService(codec, memberRepo, archiveRepo, store,
		provisioner, auditRepo, validate, logr, cfg.Workspace.ClubName)
	restoreService := service.NewRestoreService(archiveRepo, sessionRepo, memberRepo, store,
		provisioner, auditRepo, logr)

	// Destructive workflows run on serial no-retry queues; a failed
	// rollover or restore must settle as failed, never silently re-run
	// against a half-wiped workspace.
	rolloverQueue := jobs.NewQueue("rollover", rolloverService.HandleJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Workspace.JobQueueSize,
		Logger:     logr,
	})
	restoreQueue := jobs.NewQueue("restore", restoreService.HandleJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Workspace.JobQueueSize,
		Logger:     logr,
	})
	rolloverQueue.Start(ctx)
	restoreQueue.Start(ctx)
	defer rolloverQueue.Stop()
	defer restoreQueue.Stop()
	rolloverService.AttachQueue(rolloverQueue)
	restoreService.AttachQueue(restoreQueue)

	authHandler := handler.NewAuthHandler(authService)
	memberHandler := handler.NewMemberHandler(memberService, exportService)
	noticeHandler := handler.NewNoticeHandler(noticeService)
	eventHandler := handler.NewEventHandler(eventService)
	taskHandler := handler.NewTaskHandler(taskService)
	queryHandler := handler.NewQueryHandler(queryService)
	activityHandler := handler.NewActivityHandler(activityService)
	archiveHandler := handler.NewArchiveHandler(restoreService, exportService, metricsService)
	rolloverHandler := handler.NewRolloverHandler(rolloverService, metricsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.GET("/auth/me", authHandler.Me)

	// Archive management routes sit outside the view-mode router so a
	// session in archive view can always exit or restore.
	archives := authed.Group("/archives")
	{
		archives.GET("", archiveHandler.List)
		archives.GET("/view", archiveHandler.ViewStatus)
		archives.POST("/view", middleware.RequireRoles(models.RoleAdmin), archiveHandler.BindView)
		archives.DELETE("/view", archiveHandler.ExitView)
		archives.GET("/restore/status", archiveHandler.RestoreStatus)
		archives.GET("/:termId", archiveHandler.Get)
		archives.POST("/restore", middleware.RequireRoles(models.RoleAdmin), archiveHandler.Restore)
		if cfg.Exports.Enabled {
			archives.GET("/export", archiveHandler.Export)
		}
	}

	rollover := authed.Group("/rollover", middleware.RequireRoles(models.RoleAdmin))
	{
		rollover.POST("/begin", rolloverHandler.Begin)
		rollover.POST("/confirm", rolloverHandler.Confirm)
		rollover.POST("/cancel", rolloverHandler.Cancel)
		rollover.POST("/submit", rolloverHandler.Submit)
		rollover.GET("/status", rolloverHandler.Status)
	}

	// Everything below routes through the view-mode middleware: reads
	// follow the session's binding and writes are rejected in archive view.
	workspace := authed.Group("")
	workspace.Use(middleware.ArchiveView(restoreService))
	{
		adminOnly := middleware.RequireRoles(models.RoleAdmin)
		leads := middleware.RequireRoles(models.RoleAdmin, models.RoleExecutive)

		workspace.GET("/members", memberHandler.List)
		workspace.GET("/members/draft", adminOnly, memberHandler.Draft)
		workspace.POST("/members/draft", adminOnly, memberHandler.BeginDraft)
		workspace.DELETE("/members/draft", adminOnly, memberHandler.DiscardDraft)
		workspace.PUT("/members/draft/members", adminOnly, memberHandler.StageUpsert)
		workspace.DELETE("/members/draft/members/:email", adminOnly, memberHandler.StageDelete)
		workspace.POST("/members/draft/undo", adminOnly, memberHandler.Undo)
		workspace.POST("/members/draft/redo", adminOnly, memberHandler.Redo)
		workspace.POST("/members/draft/commit", adminOnly, memberHandler.CommitDraft)
		if cfg.Exports.Enabled {
			workspace.GET("/members/export", memberHandler.Export)
		}
		workspace.GET("/members/:email", memberHandler.Get)
		workspace.POST("/members", adminOnly, memberHandler.Create)
		workspace.PUT("/members/:email", adminOnly, memberHandler.Update)
		workspace.DELETE("/members/:email", adminOnly, middleware.Audit(auditRepo, "Member Removed"), memberHandler.Delete)

		workspace.GET("/notices", noticeHandler.List)
		workspace.POST("/notices", leads, noticeHandler.Create)
		workspace.DELETE("/notices/:id", leads, middleware.Audit(auditRepo, "Notice Removed"), noticeHandler.Delete)

		workspace.GET("/events", eventHandler.List)
		workspace.GET("/events/:id", eventHandler.Get)
		workspace.POST("/events", leads, eventHandler.Create)
		workspace.PUT("/events/:id", leads, eventHandler.Update)
		workspace.DELETE("/events/:id", leads, middleware.Audit(auditRepo, "Event Removed"), eventHandler.Delete)

		workspace.GET("/tasks", taskHandler.List)
		workspace.POST("/tasks", leads, taskHandler.Create)
		workspace.PUT("/tasks/:id/status", taskHandler.MoveStatus)
		workspace.POST("/tasks/:id/updates", taskHandler.AppendUpdate)
		workspace.DELETE("/tasks/:id", leads, middleware.Audit(auditRepo, "Task Removed"), taskHandler.Delete)

		workspace.GET("/queries", queryHandler.List)
		workspace.POST("/queries", queryHandler.Submit)
		workspace.PUT("/queries/:id/answer", leads, queryHandler.Answer)
		workspace.DELETE("/queries/:id", adminOnly, middleware.Audit(auditRepo, "Query Removed"), queryHandler.Delete)

		workspace.GET("/activity", activityHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

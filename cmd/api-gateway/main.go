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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/betsymikaodi/gestion-formation-api/api/swagger"
	"github.com/betsymikaodi/gestion-formation-api/internal/handler"
	"github.com/betsymikaodi/gestion-formation-api/internal/middleware"
	"github.com/betsymikaodi/gestion-formation-api/internal/models"
	"github.com/betsymikaodi/gestion-formation-api/internal/repository"
	"github.com/betsymikaodi/gestion-formation-api/internal/service"
	"github.com/betsymikaodi/gestion-formation-api/pkg/cache"
	"github.com/betsymikaodi/gestion-formation-api/pkg/config"
	"github.com/betsymikaodi/gestion-formation-api/pkg/database"
	"github.com/betsymikaodi/gestion-formation-api/pkg/export"
	"github.com/betsymikaodi/gestion-formation-api/pkg/jobs"
	"github.com/betsymikaodi/gestion-formation-api/pkg/logger"
	corsmiddleware "github.com/betsymikaodi/gestion-formation-api/pkg/middleware/cors"
	reqidmiddleware "github.com/betsymikaodi/gestion-formation-api/pkg/middleware/requestid"
	"github.com/betsymikaodi/gestion-formation-api/pkg/storage"
)

// @title Gestion Formation API
// @version 1.0.0
// @description Back-office API for the training center admin console
// @BasePath /api
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	receiptStore, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init receipt storage", "error", err)
	}

	// SIGINT/SIGTERM cancels ctx, stopping the audit queue and receipt cleanup
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// repositories
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// background audit writer
	auditQueue := jobs.NewQueue("audit", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload %T", job.Payload)
		}
		return userRepo.CreateAuditLog(ctx, entry)
	}, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		Logger:     logr,
	})
	auditQueue.Start(ctx)
	defer auditQueue.Stop()

	// services
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Stats.CacheTTL, logr, redisClient != nil)
	authService := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gestion-formation-api",
	})
	studentService := service.NewStudentService(studentRepo, enrollmentRepo, nil, logr)
	courseService := service.NewCourseService(courseRepo, nil, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, paymentRepo, nil, logr)
	paymentService := service.NewPaymentService(paymentRepo, enrollmentService, export.NewPDFExporter(), nil, logr)
	statsService := service.NewStatsService(statsRepo, courseRepo, cacheService, cfg.Stats.CacheTTL, logr)
	interchangeService := service.NewInterchangeService(studentService, studentRepo, export.NewCSVExporter(), export.NewExcelExporter("Apprenants"), export.NewPDFExporter(), nil, logr)

	receiptSigner := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
	receiptService := service.NewReceiptService(paymentService, receiptStore, receiptSigner, logr)
	receiptService.StartCleanup(ctx, cfg.Receipts.CleanupInterval, cfg.Receipts.SignedURLTTL)

	// handlers
	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService, interchangeService)
	courseHandler := handler.NewCourseHandler(courseService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	paymentHandler := handler.NewPaymentHandler(paymentService, receiptService)
	statsHandler := handler.NewStatsHandler(statsService, metricsService)
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
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	staffRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff}
	adminRoles := []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin}

	// dashboard caches go stale after any successful mutation
	invalidateStats := func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusBadRequest {
			statsService.InvalidateCache(c.Request.Context())
		}
	}

	mutate := func(action, resource string) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middleware.JWT(authService),
			middleware.RequireRoles(staffRoles...),
			middleware.Audit(auditQueue, action, resource),
			invalidateStats,
		}
	}
	mutateAdmin := func(action, resource string) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middleware.JWT(authService),
			middleware.RequireRoles(adminRoles...),
			middleware.Audit(auditQueue, action, resource),
			invalidateStats,
		}
	}

	students := api.Group("/apprenants", middleware.OptionalJWT(authService))
	{
		students.GET("", studentHandler.List)
		students.GET("/count", studentHandler.Count)
		students.GET("/export/:format/:scope", studentHandler.Export)
		students.GET("/:id", studentHandler.Get)
		students.POST("", append(mutate("CREATE", "apprenant"), studentHandler.Create)...)
		students.POST("/import/:format", append(mutate("IMPORT", "apprenant"), studentHandler.Import)...)
		students.PUT("/:id", append(mutate("UPDATE", "apprenant"), studentHandler.Update)...)
		students.DELETE("/:id", append(mutateAdmin("DELETE", "apprenant"), studentHandler.Delete)...)
	}

	courses := api.Group("/formations", middleware.OptionalJWT(authService))
	{
		courses.GET("", courseHandler.List)
		courses.GET("/populaires", courseHandler.Popular)
		courses.GET("/:id", courseHandler.Get)
		courses.POST("", append(mutate("CREATE", "formation"), courseHandler.Create)...)
		courses.PUT("/:id", append(mutate("UPDATE", "formation"), courseHandler.Update)...)
		courses.DELETE("/:id", append(mutateAdmin("DELETE", "formation"), courseHandler.Delete)...)
	}

	enrollments := api.Group("/inscriptions", middleware.OptionalJWT(authService))
	{
		enrollments.GET("", enrollmentHandler.List)
		enrollments.GET("/en-attente", enrollmentHandler.Pending)
		enrollments.GET("/:id", enrollmentHandler.Get)
		enrollments.POST("", append(mutate("CREATE", "inscription"), enrollmentHandler.Create)...)
		enrollments.PUT("/:id", append(mutate("UPDATE", "inscription"), enrollmentHandler.Update)...)
		enrollments.PATCH("/:id/confirmer", append(mutate("CONFIRM", "inscription"), enrollmentHandler.Confirm)...)
		enrollments.PATCH("/:id/annuler", append(mutate("CANCEL", "inscription"), enrollmentHandler.Cancel)...)
		enrollments.PATCH("/:id/attente", append(mutate("SET_PENDING", "inscription"), enrollmentHandler.SetPending)...)
		enrollments.DELETE("/:id", append(mutateAdmin("DELETE", "inscription"), enrollmentHandler.Delete)...)
	}

	payments := api.Group("/paiements", middleware.OptionalJWT(authService))
	{
		payments.GET("", paymentHandler.List)
		payments.GET("/recus/telecharger", paymentHandler.DownloadReceipt)
		payments.GET("/inscription/:id", paymentHandler.ByEnrollment)
		payments.GET("/:id", paymentHandler.Get)
		payments.GET("/:id/recu", paymentHandler.Receipt)
		payments.POST("", append(mutate("CREATE", "paiement"), paymentHandler.Create)...)
		payments.PUT("/:id", append(mutate("UPDATE", "paiement"), paymentHandler.Update)...)
		payments.DELETE("/:id", append(mutateAdmin("DELETE", "paiement"), paymentHandler.Delete)...)
	}

	stats := api.Group("/stats", middleware.OptionalJWT(authService))
	{
		stats.GET("/dashboard", statsHandler.Dashboard)
		stats.GET("/activites", statsHandler.Activities)
		stats.GET("/system", statsHandler.System)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
		logr.Sugar().Infow("shutdown signal received, draining connections")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("server shutdown failed", "error", err)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/edu-cert-api/api/swagger"
	"github.com/noah-isme/edu-cert-api/internal/handler"
	"github.com/noah-isme/edu-cert-api/internal/middleware"
	"github.com/noah-isme/edu-cert-api/internal/payment"
	"github.com/noah-isme/edu-cert-api/internal/repository"
	"github.com/noah-isme/edu-cert-api/internal/service"
	"github.com/noah-isme/edu-cert-api/pkg/cache"
	"github.com/noah-isme/edu-cert-api/pkg/config"
	"github.com/noah-isme/edu-cert-api/pkg/database"
	"github.com/noah-isme/edu-cert-api/pkg/export"
	"github.com/noah-isme/edu-cert-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edu-cert-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edu-cert-api/pkg/middleware/requestid"
	"github.com/noah-isme/edu-cert-api/pkg/storage"
)

// @title Edu Cert API
// @version 0.1.0
// @description Role-gated registry of students, courses and certificates
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	eventRepo := repository.NewEventRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	courseCache := repository.NewCacheRepository(redisClient, cfg.Redis.CacheTTL)

	metricsSvc := service.NewMetricsService()
	eventSvc := service.NewEventService(eventRepo, redisClient, cfg.Events, metricsSvc, logr)

	signer := storage.NewShareTokenSigner(cfg.Certificates.ShareSecret, cfg.Certificates.ShareTTL)
	transferrer := payment.FromConfig(cfg.Payments, logr)

	authSvc := service.NewAuthService(apiKeyRepo, cfg.JWT, validate, logr)
	roleSvc := service.NewRoleService(instructorRepo, cfg.Admin.Principal, eventSvc, logr)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, eventSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, instructorRepo, courseCache, cfg.Admin.Principal, eventSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(courseRepo, studentRepo, transferrer, eventSvc, logr)
	certificateSvc := service.NewCertificateService(certificateRepo, studentRepo, courseRepo, instructorRepo, signer, export.NewPDFExporter(), eventSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventSvc.Start(ctx)
	defer eventSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, certificateSvc, metricsSvc)
	instructorHandler := handler.NewInstructorHandler(roleSvc, metricsSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, enrollmentSvc, studentSvc, export.NewCSVExporter(), metricsSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc, metricsSvc)
	eventHandler := handler.NewEventHandler(eventSvc, roleSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		if err := redisClient.Ping(checkCtx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/keys", authHandler.RegisterKey)
		api.POST("/auth/token", authHandler.IssueToken)

		api.GET("/students/:principal", studentHandler.Get)
		api.GET("/students/:principal/courses", studentHandler.Courses)
		api.GET("/students/:principal/courses/:id/completion", studentHandler.Completion)
		api.GET("/students/:principal/certificates", studentHandler.Certificates)

		api.GET("/instructors/:principal", instructorHandler.Get)

		api.GET("/courses/:id", courseHandler.Get)
		api.GET("/courses/:id/roster", courseHandler.Roster)
		api.GET("/courses/:id/roster/export", courseHandler.ExportRoster)

		api.GET("/certificates/:id", certificateHandler.Get)
		api.GET("/certificates/:id/verify", certificateHandler.Verify)
		api.GET("/certificates/:id/pdf", certificateHandler.PDF)
		api.GET("/certificates/:id/share", certificateHandler.Share)
		api.GET("/verify", certificateHandler.ResolveShare)

		api.GET("/stats", eventHandler.Stats)

		secured := api.Group("", middleware.Principal(authSvc))
		{
			secured.GET("/events", eventHandler.List)
			secured.POST("/students", studentHandler.Enroll)
			secured.POST("/instructors", instructorHandler.Authorize)
			secured.POST("/courses", courseHandler.Create)
			secured.PATCH("/courses/:id/status", courseHandler.SetStatus)
			secured.POST("/courses/:id/enrollments", courseHandler.Enroll)
			secured.POST("/courses/:id/completions", courseHandler.MarkCompleted)
			secured.POST("/certificates", certificateHandler.Issue)
		}
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

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/globalenglish-api/api/swagger"
	"github.com/noah-isme/globalenglish-api/internal/handler"
	internalmiddleware "github.com/noah-isme/globalenglish-api/internal/middleware"
	"github.com/noah-isme/globalenglish-api/internal/repository"
	"github.com/noah-isme/globalenglish-api/internal/scheduling"
	"github.com/noah-isme/globalenglish-api/internal/service"
	"github.com/noah-isme/globalenglish-api/pkg/cache"
	"github.com/noah-isme/globalenglish-api/pkg/config"
	"github.com/noah-isme/globalenglish-api/pkg/database"
	"github.com/noah-isme/globalenglish-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/globalenglish-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/globalenglish-api/pkg/middleware/requestid"
)

// @title Global English Assignment API
// @version 1.0.0
// @description Classroom schedule, tutor and student assignment engine for the tutoring program
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Timetable.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient)
	} else {
		cacheRepo = repository.NewCacheRepository(nil)
	}
	defer cacheRepo.Close() //nolint:errcheck
	timetableCache := service.NewTimetableCache(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, redisClient != nil)

	classroomRepo := repository.NewClassroomRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	scheduleRepo := repository.NewClassroomScheduleRepository(db)
	tutorRepo := repository.NewTutorAssignmentRepository(db)
	studentRepo := repository.NewStudentAssignmentRepository(db)
	uow := repository.NewUnitOfWork(db)

	policy := scheduling.NewPolicyTable(cfg.Scheduling.SecondaryFollowsShift)
	clock := scheduling.SystemClock{Location: cfg.Scheduling.Location()}
	validate := validator.New()

	checker := service.NewConflictChecker(classroomRepo, slotRepo, scheduleRepo, tutorRepo, studentRepo, policy)
	lifecycle := service.NewIntervalLifecycle(uow, scheduleRepo, tutorRepo, studentRepo, clock, logr)

	scheduleSvc := service.NewClassroomScheduleService(scheduleRepo, classroomRepo, checker, lifecycle, timetableCache, metricsSvc, validate, logr)
	tutorSvc := service.NewTutorAssignmentService(tutorRepo, classroomRepo, checker, lifecycle, timetableCache, metricsSvc, validate, logr)
	studentSvc := service.NewStudentAssignmentService(studentRepo, classroomRepo, checker, lifecycle, metricsSvc, validate, logr)

	scheduleHandler := handler.NewClassroomScheduleHandler(scheduleSvc)
	tutorHandler := handler.NewTutorAssignmentHandler(tutorSvc)
	studentHandler := handler.NewStudentAssignmentHandler(studentSvc)
	intervalHandler := handler.NewIntervalHandler(scheduleSvc, tutorSvc, studentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"cache":    cacheRepo.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	schedules := api.Group("/classroom-schedules")
	schedules.POST("", scheduleHandler.Assign)
	schedules.PUT("/:id/close", scheduleHandler.Close)

	tutors := api.Group("/tutor-assignments")
	tutors.POST("", tutorHandler.Assign)
	tutors.POST("/change", tutorHandler.Change)
	tutors.PUT("/:id/close", tutorHandler.Close)

	students := api.Group("/student-assignments")
	students.POST("", studentHandler.Assign)
	students.POST("/move", studentHandler.Move)
	students.PUT("/:id/close", studentHandler.Close)

	api.PUT("/intervals/:kind/:id/close", intervalHandler.Close)

	classrooms := api.Group("/classrooms/:id")
	classrooms.GET("/schedule-history", scheduleHandler.History)
	classrooms.GET("/tutor-history", tutorHandler.History)
	classrooms.GET("/students", studentHandler.ClassroomStudents)

	api.GET("/tutors/:id/timetable", tutorHandler.Timetable)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

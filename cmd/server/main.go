package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/tutorcenter/backend/docs"
	academicapp "github.com/tutorcenter/backend/internal/application/academic"
	"github.com/tutorcenter/backend/internal/application/accounting"
	appevent "github.com/tutorcenter/backend/internal/application/event"
	financeapp "github.com/tutorcenter/backend/internal/application/finance"
	identityapp "github.com/tutorcenter/backend/internal/application/identity"
	reportapp "github.com/tutorcenter/backend/internal/application/report"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/auth"
	"github.com/tutorcenter/backend/internal/infrastructure/cache"
	"github.com/tutorcenter/backend/internal/infrastructure/config"
	"github.com/tutorcenter/backend/internal/infrastructure/event"
	"github.com/tutorcenter/backend/internal/infrastructure/logger"
	"github.com/tutorcenter/backend/internal/infrastructure/persistence"
	"github.com/tutorcenter/backend/internal/infrastructure/render"
	"github.com/tutorcenter/backend/internal/infrastructure/scheduler"
	"github.com/tutorcenter/backend/internal/infrastructure/storage"
	"github.com/tutorcenter/backend/internal/infrastructure/telemetry"
	"github.com/tutorcenter/backend/internal/interfaces/http/handler"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
	"github.com/tutorcenter/backend/internal/interfaces/http/router"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

//	@title			Tutor Center API
//	@version		1.0
//	@description	Backend for a tutoring center: students, lessons, payments, payroll, expenses and financial reporting.

//	@contact.name	API Support
//	@contact.email	support@tutorcenter.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry needs a logger before the final logger exists
	bootLog, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, Version, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log), providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting Tutor Center backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	metrics, err := telemetry.NewMetrics(providers.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, telemetry.DBOptionsFromConfig(cfg.Telemetry, db.Driver()), log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if _, err := telemetry.RegisterDBPoolMetrics(providers.Meter(cfg.Telemetry.ServiceName), sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		}
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Redis backs the token blacklist, receipt counters and the metrics cache when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var metricsCache accounting.JSONCache = cache.NewInMemoryJSONCache()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		metricsCache = cache.NewRedisJSONCache(redisClient, "tutor:cache:", log)
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	lessonTypeRepo := persistence.NewGormLessonTypeRepository(db.DB)
	timeEntryRepo := persistence.NewGormTimeEntryRepository(db.DB)
	attendanceRepo := persistence.NewGormAttendanceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	teacherPaymentRepo := persistence.NewGormTeacherPaymentRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	reportRepo := persistence.NewGormFinancialReportRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)

	var receipts finance.ReceiptCounter = persistence.NewGormReceiptCounter(db.DB)
	if cfg.Receipt.Backend == "redis" {
		if redisClient == nil {
			log.Fatal("receipt.backend is redis but Redis is disabled")
		}
		receipts = cache.NewRedisReceiptCounter(redisClient, "tutor:receipt:")
	}

	// Event bus: status changes flow to the audit recorder off the request path
	bus := event.NewAsyncEventBus(log.Named("events"),
		event.WithQueueSize(cfg.Audit.QueueSize),
		event.WithWorkers(cfg.Audit.Workers),
		event.WithDropHook(func(ctx context.Context, e shared.DomainEvent) {
			metrics.RecordAuditDropped(ctx, e.EventType())
		}),
	)
	recorder := appevent.NewAuditRecorder(auditRepo, log)
	bus.Subscribe(recorder, recorder.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Report rendering and storage
	var objectStorage reportapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize report storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Report bucket is not reachable", zap.String("bucket", s3Storage.GetBucket()), zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("Report storage disabled, file formats can only be rendered on demand")
	}
	pdfEngine := render.NewChromedpEngine(&cfg.Renderer, log)
	defer func() {
		_ = pdfEngine.Close()
	}()
	renderer := render.NewRenderer(pdfEngine, log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, jwtService, blacklist, bus, log)
	if cfg.Admin.Email != "" {
		if err := userService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal("Failed to bootstrap admin account", zap.Error(err))
		}
	}

	academicService := academicapp.NewService(academicapp.Repositories{
		Students:    studentRepo,
		LessonTypes: lessonTypeRepo,
		TimeEntries: timeEntryRepo,
		Attendance:  attendanceRepo,
		Users:       userRepo,
	}, log, academicapp.WithPublisher(bus))

	financeOpts := []financeapp.Option{financeapp.WithPublisher(bus), financeapp.WithMetrics(metrics)}
	paymentService := financeapp.NewPaymentService(paymentRepo, studentRepo, receipts, log, financeOpts...)
	teacherPaymentService := financeapp.NewTeacherPaymentService(teacherPaymentRepo, userRepo, receipts, log, financeOpts...)
	expenseService := financeapp.NewExpenseService(expenseRepo, log, financeOpts...)

	accountingService := accounting.NewService(accounting.Repositories{
		Students:        studentRepo,
		TimeEntries:     timeEntryRepo,
		Users:           userRepo,
		Payments:        paymentRepo,
		TeacherPayments: teacherPaymentRepo,
		Expenses:        expenseRepo,
	}, log, accounting.WithCache(metricsCache, cfg.Cache.MetricsTTL), accounting.WithMetrics(metrics))

	reportService := reportapp.NewService(reportapp.Repositories{
		Reports:     reportRepo,
		Students:    studentRepo,
		Users:       userRepo,
		TimeEntries: timeEntryRepo,
		Attendance:  attendanceRepo,
	}, accountingService, renderer, objectStorage, log,
		reportapp.WithPublisher(bus), reportapp.WithMetrics(metrics))

	auditService := appevent.NewAuditService(auditRepo)

	// Monthly report job
	var reportScheduler *scheduler.MonthlyReportScheduler
	if cfg.Scheduler.Enabled {
		schedCfg := cfg.Scheduler
		if objectStorage == nil && schedCfg.ReportFormat != "json" {
			log.Warn("Report storage disabled, scheduled reports will be stored as json",
				zap.String("configured_format", schedCfg.ReportFormat))
			schedCfg.ReportFormat = "json"
		}
		reportScheduler, err = scheduler.NewMonthlyReportScheduler(schedCfg, reportService, log)
		if err != nil {
			log.Fatal("Failed to create report scheduler", zap.Error(err))
		}
		reportScheduler.Start()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var limiter, authLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
	}

	var schedStatus handler.SchedulerStatus
	if reportScheduler != nil {
		schedStatus = reportScheduler
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:     cfg.Telemetry.ServiceName,
		HTTP:            cfg.HTTP,
		Swagger:         cfg.Swagger,
		Telemetry:       cfg.Telemetry,
		JWT:             jwtService,
		Blacklist:       blacklist,
		Logger:          log,
		RateLimiter:     limiter,
		AuthRateLimiter: authLimiter,
	}, router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		User:           handler.NewUserHandler(userService),
		Student:        handler.NewStudentHandler(academicService),
		LessonType:     handler.NewLessonTypeHandler(academicService),
		TimeEntry:      handler.NewTimeEntryHandler(academicService),
		Attendance:     handler.NewAttendanceHandler(academicService),
		Payment:        handler.NewPaymentHandler(paymentService),
		TeacherPayment: handler.NewTeacherPaymentHandler(teacherPaymentService),
		Expense:        handler.NewExpenseHandler(expenseService),
		Accounting:     handler.NewAccountingHandler(accountingService),
		Report:         handler.NewReportHandler(reportService),
		Audit:          handler.NewAuditHandler(auditService),
		Health:         handler.NewHealthHandler(cfg.App.Name, Version, db, schedStatus),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if reportScheduler != nil {
		if err := reportScheduler.Stop(shutdownCtx); err != nil {
			log.Warn("Report scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err), zap.Int64("dropped", bus.Dropped()))
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

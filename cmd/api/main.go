package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/ess-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/erpclient"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/queue"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/ess-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/ess-backend-go/internal/service/attendance"
	checkinService "github.com/cmlabs-hris/ess-backend-go/internal/service/checkin"
	syncService "github.com/cmlabs-hris/ess-backend-go/internal/service/erpsync"
	expenseService "github.com/cmlabs-hris/ess-backend-go/internal/service/expense"
	holidayService "github.com/cmlabs-hris/ess-backend-go/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/ess-backend-go/internal/service/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/service/master"
	notificationService "github.com/cmlabs-hris/ess-backend-go/internal/service/notification"
	"github.com/prometheus/client_golang/prometheus"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("error applying migrations: %w", err)
		}
	}

	var dispatch queue.Queue
	if cfg.Redis.Addr != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		defer redisClient.Close()
		dispatch = queue.NewRedisQueue(redisClient, cfg.Redis.QueueKey)
		slog.Info("Sync dispatch queue: redis", "addr", cfg.Redis.Addr, "key", cfg.Redis.QueueKey)
	} else {
		dispatch = queue.NewInMemory(cfg.Sync.SweepBatch)
		slog.Info("Sync dispatch queue: in-memory")
	}

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("error initializing storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	loc := cfg.Location()

	// Repositories
	tx := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	checkinRepo := postgresql.NewCheckinRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	attendanceRunRepo := postgresql.NewAttendanceRunRepository(db)
	shiftConfigRepo := postgresql.NewShiftConfigRepository(db)
	overtimeRepo := postgresql.NewAllowedOvertimeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	leaveAllocationRepo := postgresql.NewLeaveAllocationRepository(db)
	leaveApplicationRepo := postgresql.NewLeaveApplicationRepository(db)
	expenseRepo := postgresql.NewExpenseRepository(db)
	journalEntryRepo := postgresql.NewJournalEntryRepository(db)
	expenseTypeRepo := postgresql.NewExpenseTypeRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	peerRepo := postgresql.NewPeerRepository(db)
	syncQueueRepo := postgresql.NewSyncQueueRepository(db)
	syncRecordRepo := postgresql.NewSyncRecordRepository(db)

	// Services
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}

	hub := sse.NewHub(10)
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{})
	defer notifSvc.Stop()
	broadcaster := notificationService.NewBroadcaster(employeeRepo, notifSvc)

	holidaySvc := holidayService.NewHolidayService(holidayRepo)
	processor := attendanceService.NewProcessor(
		tx,
		employeeRepo,
		checkinRepo,
		attendanceRepo,
		shiftConfigRepo,
		overtimeRepo,
		holidaySvc,
		attendanceService.Options{
			DriverLocations: cfg.Attendance.DriverLocations,
			Concurrency:     cfg.Attendance.SweepConcurrency,
			Location:        loc,
		},
	)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, attendanceRunRepo, processor, loc)
	leaveSvc := leaveService.NewLeaveService(
		tx,
		leaveTypeRepo,
		leaveAllocationRepo,
		leaveApplicationRepo,
		employeeRepo,
		attendanceRepo,
		notifSvc,
	)
	deductionSvc := attendanceService.NewDeductionService(employeeRepo, attendanceRepo, shiftConfigRepo, leaveSvc, loc)
	checkinSvc := checkinService.NewCheckinService(
		checkinRepo,
		employeeRepo,
		shiftConfigRepo,
		overtimeRepo,
		holidaySvc,
		processor,
		notifSvc,
		loc,
	)
	expenseSvc := expenseService.NewExpenseService(
		tx,
		expenseRepo,
		journalEntryRepo,
		expenseTypeRepo,
		employeeRepo,
		fileStorage,
		notifSvc,
		loc,
	)
	masterSvc := master.NewMasterService(shiftConfigRepo, overtimeRepo, employeeRepo, leaveTypeRepo)

	transport := erpclient.New(cfg.Sync.SendTimeout, cfg.Sync.PullTimeout)
	engine := syncService.NewEngine(peerRepo, syncQueueRepo, transport, dispatch, notifSvc, syncService.EngineOptions{
		MaxRetries:     cfg.Sync.MaxRetries,
		SweepBatch:     cfg.Sync.SweepBatch,
		StaleAfter:     2 * cfg.Sync.SendTimeout,
		AlertUserID:    cfg.Sync.AlertUserID,
		AlertCompanyID: cfg.Sync.AlertCompanyID,
	})
	receiver := syncService.NewReceiver(peerRepo, syncRecordRepo)
	syncSvc := syncService.NewSyncService(peerRepo, syncRecordRepo, engine, receiver, transport)

	// Metrics
	metrics.Register(prometheus.DefaultRegisterer)
	metrics.RegisterStreamGauge(prometheus.DefaultRegisterer, hub.TotalSubscribers)

	// Background work
	go func() {
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Sync engine stopped", "error", err)
		}
	}()

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(processor, deductionSvc, checkinSvc, cron.AttendanceSchedule{
		Location:         loc,
		DailyRunHour:     cfg.Attendance.DailyRunHour,
		MonthlyRunHour:   cfg.Attendance.MonthlyRunHour,
		AutoCheckoutHour: cfg.Attendance.AutoCheckoutHour,
	}).RegisterJobs(scheduler)
	cron.NewSyncJobs(engine, cfg.Sync.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	// Handlers
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			Version:        version,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       logLevel,
		},
		JWTService,
		receiver,
		appHTTP.Handlers{
			Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
			Checkin:      appHTTP.NewCheckinHandler(checkinSvc),
			Expense:      appHTTP.NewExpenseHandler(expenseSvc),
			Leave:        appHTTP.NewLeaveHandler(leaveSvc),
			Master:       appHTTP.NewMasterHandler(masterSvc),
			Notification: appHTTP.NewNotificationHandler(notifSvc, broadcaster, JWTService),
			Sync:         appHTTP.NewSyncHandler(syncSvc, engine, receiver),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

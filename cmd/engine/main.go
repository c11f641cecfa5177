// Package main is the entry point for the academic progression engine.
//
// The engine owns the grade lifecycle, standing computation, registration
// eligibility, repeat resolution and placement allocation. It wires the
// PostgreSQL repositories, the Redis caches, the in-process event bus and the
// command/query handlers, then waits for shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unihub/academic-records-hub/config"
	"github.com/unihub/academic-records-hub/internal/application"
	"github.com/unihub/academic-records-hub/internal/application/command"
	"github.com/unihub/academic-records-hub/internal/application/query"
	"github.com/unihub/academic-records-hub/internal/domain/placement"
	"github.com/unihub/academic-records-hub/internal/domain/student"
	"github.com/unihub/academic-records-hub/internal/infrastructure/messaging"
	"github.com/unihub/academic-records-hub/internal/infrastructure/persistence/postgres"
	redisinfra "github.com/unihub/academic-records-hub/internal/infrastructure/persistence/redis"
	"github.com/unihub/academic-records-hub/internal/infrastructure/service"
	"github.com/unihub/academic-records-hub/pkg/logger"
	"github.com/unihub/academic-records-hub/pkg/timeutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.Observability.AddCaller,
	})

	log.Info("starting academic progression engine",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Postgres ────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnection(ctx, postgres.Config{
		Host:              cfg.Database.Host,
		Port:              cfg.Database.Port,
		Database:          cfg.Database.Name,
		User:              cfg.Database.User,
		Password:          cfg.Database.Password,
		SSLMode:           cfg.Database.SSLMode,
		MaxConns:          int32(cfg.Database.MaxConns),
		MinConns:          int32(cfg.Database.MinConns),
		MaxConnLifetime:   cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime:   cfg.Database.ConnMaxIdleTime,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")

	userRepo := postgres.NewUserRepository(conn)
	courseRepo := postgres.NewCourseRepository(conn)
	deptRepo := postgres.NewDepartmentRepository(conn)
	gradeRepo := postgres.NewGradeRepository(conn)
	regRepo := postgres.NewRegistrationRepository(conn)
	periodRepo := postgres.NewPeriodRepository(conn)
	placementRepo := postgres.NewPlacementRepository(conn)
	evalRepo := postgres.NewEvaluationRepository(conn)
	notifRepo := postgres.NewNotificationRepository(conn)
	auditRepo := postgres.NewAuditRepository(conn)

	// ── Redis (optional) ────────────────────────────────────────────────────

	var standingCache student.StandingCache
	var rankingCache placement.RankingCache
	if !cfg.Redis.Disabled {
		cache, err := redisinfra.NewCache(redisinfra.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolTimeout:  4 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()

		standingCache = redisinfra.NewStandingCache(cache)
		rankingCache = redisinfra.NewRankingCache(cache)
		log.Info("redis caches enabled")
	} else {
		log.Warn("redis disabled; standing and ranking reads fall through to postgres")
	}

	// ── Shared services ─────────────────────────────────────────────────────

	clock := timeutil.RealClock{}
	ids := service.NewUUIDGenerator()
	hasher := service.NewBcryptHasher(cfg.Academic.BcryptCost)

	bus := messaging.NewInMemoryEventBus(messaging.Config{
		AsyncMode:      false,
		WorkerPoolSize: 10,
		Logger:         log.With(logger.String("component", "eventbus")),
	})
	defer bus.Close()

	sink := service.NewNotificationService(notifRepo, ids, clock)
	auditor := service.NewAuditService(auditRepo, ids, clock)
	effects := command.NewSideEffects(sink, auditor, bus, log)

	// ── Handlers ────────────────────────────────────────────────────────────

	recompute := command.NewRecomputeStandingHandler(
		userRepo, gradeRepo, courseRepo, standingCache, clock, effects,
		cfg.Academic.MinCoursesForStanding)

	eligibility := query.NewEligibilityHandler(userRepo, gradeRepo, evalRepo, regRepo, periodRepo, clock)

	submitGrade := command.NewSubmitGradeHandler(gradeRepo, courseRepo, userRepo, ids, clock, effects)
	reviewGrade := command.NewReviewGradeHandler(gradeRepo, userRepo, clock, effects)
	finalizeGrade := command.NewFinalizeGradeHandler(gradeRepo, clock, effects)
	lockGrades := command.NewLockGradesHandler(gradeRepo, clock, effects, log)
	register := command.NewRegisterSemesterHandler(regRepo, gradeRepo, courseRepo, userRepo, eligibility, ids, clock, effects)
	submitEval := command.NewSubmitEvaluationHandler(evalRepo, gradeRepo, ids, clock, effects)
	saveDraft := command.NewSavePlacementDraftHandler(placementRepo, userRepo, deptRepo, ids, clock, effects)
	submitPlacement := command.NewSubmitPlacementHandler(placementRepo, userRepo, clock, effects)
	reviewPlacement := command.NewReviewPlacementHandler(placementRepo, userRepo, deptRepo, clock, effects)
	bulkReview := command.NewBulkReviewPlacementsHandler(placementRepo, reviewPlacement)
	openPeriod := command.NewOpenPeriodHandler(periodRepo, ids, clock, effects)
	closePeriod := command.NewClosePeriodHandler(periodRepo, clock, effects)
	createAccount := command.NewCreateAccountHandler(userRepo, periodRepo, ids, hasher, clock, effects)

	registrable := query.NewRegistrableCoursesHandler(userRepo, gradeRepo, courseRepo)
	standing := query.NewAcademicStandingHandler(userRepo, standingCache, log)
	ranking := query.NewPlacementRankingHandler(placementRepo, rankingCache, log)
	pendingEvals := query.NewPendingEvaluationsHandler(gradeRepo, evalRepo, courseRepo, userRepo)
	transcript := query.NewTranscriptHandler(userRepo, gradeRepo, courseRepo)
	repeats := query.NewRepeatCoursesHandler(gradeRepo)
	prereqs := query.NewPrerequisitesHandler(courseRepo, gradeRepo)

	app := &application.Application{
		SubmitGrade:       submitGrade,
		ReviewGrade:       reviewGrade,
		FinalizeGrade:     finalizeGrade,
		LockGrades:        lockGrades,
		RegisterSemester:  register,
		SubmitEvaluation:  submitEval,
		SaveDraft:         saveDraft,
		SubmitPlacement:   submitPlacement,
		ReviewPlacement:   reviewPlacement,
		BulkReview:        bulkReview,
		OpenPeriod:        openPeriod,
		ClosePeriod:       closePeriod,
		CreateAccount:     createAccount,
		RecomputeStanding: recompute,

		Eligibility:        eligibility,
		RegistrableCourses: registrable,
		Standing:           standing,
		Ranking:            ranking,
		PendingEvaluations: pendingEvals,
		Transcript:         transcript,
		RepeatCourses:      repeats,
		Prerequisites:      prereqs,
	}

	if err := app.Subscribe(bus, rankingCache, log); err != nil {
		return fmt.Errorf("subscribe handlers: %w", err)
	}

	log.Info("engine ready")

	<-ctx.Done()
	log.Info("shutting down", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	// The bus drains in-flight handlers; the deferred closes release the
	// pools afterwards.
	done := make(chan struct{})
	go func() {
		_ = bus.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cfg.App.ShutdownTimeout):
		log.Warn("shutdown timeout exceeded; exiting with handlers in flight")
	}

	log.Info("engine stopped")
	return nil
}

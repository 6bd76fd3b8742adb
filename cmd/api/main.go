// Package main is the entry point for the Koreline Hub API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: orchestration of use cases (Commands/Queries)
// - Infrastructure: repository implementations, Redis broadcasting
// - Interface: HTTP handlers
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/koreline/koreline-hub/config"

	// Application layer
	"github.com/koreline/koreline-hub/internal/application/command"
	"github.com/koreline/koreline-hub/internal/application/notify"
	"github.com/koreline/koreline-hub/internal/application/query"

	// Domain layer
	"github.com/koreline/koreline-hub/internal/domain/notification"

	// Infrastructure layer
	"github.com/koreline/koreline-hub/internal/infrastructure/persistence/postgres"
	redisbc "github.com/koreline/koreline-hub/internal/infrastructure/realtime/redis"

	// Interface layer
	httpserver "github.com/koreline/koreline-hub/internal/interface/http"

	// Packages
	"github.com/koreline/koreline-hub/pkg/logger"
	"github.com/koreline/koreline-hub/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// Local development reads .env; in production the variables are set by
	// the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(logOpts)

	log.Info("starting Koreline Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}

	log.Info("connecting to database")

	// The database container may still be starting when we do; back off and
	// retry before giving up.
	var dbConn *postgres.Connection
	connectRetry := retry.ConnectRetrier(func(attempt int, err error, delay time.Duration) {
		log.Warn("database not ready, retrying",
			logger.Int("attempt", attempt),
			logger.String("delay", delay.String()),
			logger.Err(err),
		)
	})
	err = connectRetry.Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REAL-TIME BROADCASTER (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var broadcaster notification.Broadcaster = notification.NopBroadcaster{}

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureRealtimeBroadcast) {
		log.Info("connecting to Redis", logger.String("addr", cfg.Redis.Addr()))

		redisCfg := redisbc.DefaultConfig()
		redisCfg.Addr = cfg.Redis.Addr()
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.ChannelPrefix = cfg.Redis.ChannelPrefix
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		bc, err := redisbc.NewBroadcaster(ctx, redisCfg, log)
		if err != nil {
			// Notifications are still stored; only the live push is lost.
			log.Warn("Redis unavailable, broadcasting disabled", logger.Err(err))
		} else {
			defer bc.Close()
			broadcaster = bc
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	profileRepo := postgres.NewProfileRepository(dbConn)
	tokenRepo := postgres.NewTokenRepository(dbConn)
	lessonRepo := postgres.NewLessonRepository(dbConn)
	membershipRepo := postgres.NewMembershipRepository(dbConn)
	roomRepo := postgres.NewRoomRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	billingRepo := postgres.NewBillingRepository(dbConn)
	commentRepo := postgres.NewCommentRepository(dbConn)
	messageRepo := postgres.NewMessageRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	emitter := notify.NewEmitter(notificationRepo, broadcaster, log)

	deps := httpserver.Dependencies{
		RegisterHandler:      command.NewRegisterAccountHandler(profileRepo, tokenRepo, dbConn),
		LoginHandler:         command.NewLoginHandler(profileRepo, tokenRepo),
		UpdateProfileHandler: command.NewUpdateProfileHandler(profileRepo),
		CreateLessonHandler:  command.NewCreateLessonHandler(lessonRepo, profileRepo, dbConn),
		UpdateLessonHandler:  command.NewUpdateLessonHandler(lessonRepo, profileRepo, dbConn),
		DeleteLessonHandler:  command.NewDeleteLessonHandler(lessonRepo),
		JoinLessonHandler:    command.NewJoinLessonHandler(lessonRepo, membershipRepo, profileRepo, emitter, dbConn),
		LeaveLessonHandler:   command.NewLeaveLessonHandler(lessonRepo, membershipRepo, profileRepo, emitter, dbConn),
		UnsubscribeHandler:   command.NewUnsubscribeStudentHandler(lessonRepo, membershipRepo, profileRepo, emitter, dbConn),
		OpenRoomHandler:      command.NewOpenRoomHandler(lessonRepo, membershipRepo, roomRepo, profileRepo, emitter, dbConn),
		CloseRoomsHandler:    command.NewCloseRoomsHandler(roomRepo, profileRepo),
		IssueBillHandler:     command.NewIssueBillHandler(lessonRepo, membershipRepo, billingRepo, profileRepo, emitter, dbConn),
		PayBillHandler:       command.NewPayBillHandler(billingRepo, lessonRepo, profileRepo, emitter, dbConn),
		DeleteBillHandler:    command.NewDeleteBillHandler(billingRepo, lessonRepo, profileRepo, emitter, dbConn),
		TradeTokensHandler:   command.NewTradeTokensHandler(billingRepo, profileRepo, dbConn),
		CreateCommentHandler: command.NewCreateCommentHandler(commentRepo, profileRepo, emitter, dbConn),
		ReportCommentHandler: command.NewReportCommentHandler(commentRepo),
		SendMessageHandler:   command.NewSendMessageHandler(messageRepo, profileRepo),

		MarkMessageReadHandler: command.NewMarkMessageReadHandler(messageRepo),
		MarkNotifReadHandler:   command.NewMarkNotificationReadHandler(notificationRepo),

		RoomByKeyHandler:      query.NewRoomByKeyHandler(roomRepo, lessonRepo),
		RoomForLessonHandler:  query.NewRoomForLessonHandler(lessonRepo, roomRepo, profileRepo),
		SubscriptionsHandler:  query.NewListSubscriptionsHandler(membershipRepo, lessonRepo),
		LessonStudentsHandler: query.NewListLessonStudentsHandler(lessonRepo, membershipRepo, profileRepo),
		FeedsHandler:          query.NewFeedsHandler(notificationRepo, messageRepo, billingRepo),
		ListCommentsHandler:   query.NewListCommentsHandler(commentRepo, profileRepo),

		Lessons:  lessonRepo,
		Profiles: profileRepo,
		Tokens:   tokenRepo,

		Logger:        log,
		HealthChecker: dbConn,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(httpConfig, deps)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	log.Info("Koreline Hub is running", logger.String("address", server.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed")
	return nil
}

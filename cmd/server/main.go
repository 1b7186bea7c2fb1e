package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialgraph/config"
	"github.com/d60-Lab/socialgraph/internal/api"
	"github.com/d60-Lab/socialgraph/internal/api/handler"
	"github.com/d60-Lab/socialgraph/internal/repository"
	"github.com/d60-Lab/socialgraph/internal/service"
	"github.com/d60-Lab/socialgraph/pkg/database"
	"github.com/d60-Lab/socialgraph/pkg/logger"
	"github.com/d60-Lab/socialgraph/pkg/tracing"
)

// @title socialgraph API
// @version 1.0
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	var cache *repository.FollowingCache
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, following sets read from the database", zap.Error(err))
			_ = rdb.Close()
		} else {
			cache = repository.NewFollowingCache(rdb, cfg.Redis.FollowingTTL)
			defer rdb.Close()
		}
	}

	service.SetPageLimits(service.PageLimits{Default: cfg.Feed.DefaultPageSize, Max: cfg.Feed.MaxPageSize})

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	dispatcher := service.NewDispatcher(notificationRepo, service.DispatcherOptions{
		QueueSize:      cfg.Notifier.QueueSize,
		MaxAttempts:    cfg.Notifier.MaxAttempts,
		AttemptTimeout: cfg.Notifier.AttemptTimeout,
	})
	stopDispatcher := dispatcher.Start(cfg.Notifier.Workers)

	relService := service.NewRelationshipService(followRepo, userRepo, cache, dispatcher)
	h := handler.NewHandler(handler.Services{
		Relationships: relService,
		Likes:         service.NewLikeService(likeRepo, postRepo, commentRepo, dispatcher),
		Comments:      service.NewCommentService(commentRepo, postRepo, dispatcher),
		Posts:         service.NewPostService(postRepo, commentRepo),
		Feeds:         service.NewFeedService(postRepo, relService),
		Users:         service.NewUserService(userRepo, followRepo),
		Notifications: service.NewNotificationService(notificationRepo),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(cfg, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// handlers are done, so nothing enqueues after this point
	if err := stopDispatcher(shutdownCtx); err != nil {
		logger.Error("notification drain incomplete", zap.Error(err), zap.Int("queued", dispatcher.QueueLen()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		logger.Error("database close", zap.Error(err))
	}
}

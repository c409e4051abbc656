package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nuoitoi/config"
	"nuoitoi/internal/cache"
	"nuoitoi/internal/database"
	"nuoitoi/internal/events"
	"nuoitoi/internal/logger"
	"nuoitoi/internal/metrics"
	"nuoitoi/internal/middleware"
	"nuoitoi/internal/router"
	"nuoitoi/pkg/payment"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Cache.Backend == "redis" || cfg.Events.Backend == "redis" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Fatal("redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
	}

	var pending cache.PendingStore
	if cfg.Cache.Backend == "redis" {
		pending = cache.NewRedisStore(rdb, cfg.Cache.TTL)
	} else {
		mem := cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.Capacity)
		mem.Start()
		defer mem.Stop()
		pending = mem
	}

	local := events.NewLocalBus(cfg.Events.MaxSubscribers, zl)
	var bus events.Bus = local
	if cfg.Events.Backend == "redis" {
		rb := events.NewRedisBus(rdb, cfg.Events.Channel, local, zl)
		go func() { _ = rb.Run(ctx) }()
		bus = rb
	}

	var gateway payment.Gateway
	if cfg.PayOS.Configured() {
		gateway = payment.NewPayOSClient(cfg.PayOS.BaseURL, cfg.PayOS.ClientID, cfg.PayOS.APIKey, cfg.PayOS.ChecksumKey, cfg.PayOS.Timeout, zl)
	} else {
		zl.Warn("PayOS credentials missing, payments are mocked")
		gateway = &payment.StubGateway{}
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	engine := router.Setup(cfg, db, router.Deps{
		Pending: pending,
		Bus:     bus,
		Gateway: gateway,
		Metrics: metrics.New(),
		Limiter: limiter,
		Log:     zl,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		// cancelled on signal so open streams end and Shutdown can finish
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		zl.Info("server listening", zap.String("port", cfg.Server.Port),
			zap.String("cache", cfg.Cache.Backend), zap.String("events", cfg.Events.Backend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

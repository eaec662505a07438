package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmrc/retreats/internal/config"
	"github.com/dmrc/retreats/internal/db"
	"github.com/dmrc/retreats/internal/events"
	"github.com/dmrc/retreats/internal/handlers"
	"github.com/dmrc/retreats/internal/ratelimit"
	"github.com/dmrc/retreats/internal/services"
	"github.com/dmrc/retreats/internal/sweeper"
	"github.com/dmrc/retreats/internal/web"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		log.Info("publishing booking events", "exchange", cfg.AMQPExchange)
	}

	// Without Redis the limiter lets everything through.
	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb, err = ratelimit.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, rate limiting disabled", "err", err)
		} else {
			defer rdb.Close()
		}
	}

	svc := services.New(conn,
		services.WithPublisher(publisher),
		services.WithLogger(log),
	)
	go sweeper.Run(ctx, svc, cfg.NoShowSweepInterval, log)

	router := web.Router(web.Deps{
		Handler: handlers.New(svc, log, cfg.PublicBaseURL),
		Auth:    handlers.NewAdminAuth(cfg.AdminPassword, cfg.AdminPasswordHash, cfg.SessionTTL, cfg.CookieSecure),
		Limiter: ratelimit.New(cfg.RateLimit, rdb, log),
		Log:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("DMRC retreats listening", "addr", cfg.Addr, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/tillboard/ordersync/internal/adapter/handler"
	"github.com/tillboard/ordersync/internal/adapter/storage"
	"github.com/tillboard/ordersync/internal/config"
	"github.com/tillboard/ordersync/internal/core/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL holds finalized orders only; the live collaborative copy lives
	// in Redis.
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Error("failed to open mysql", "error", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping mysql", "error", err)
		os.Exit(1)
	}
	log.Info("connected to mysql")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: cfg.RedisPoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	orderStore := storage.NewRedisStore(rdb, log)
	archive := storage.NewMySQLArchive(db)
	checkout := service.NewCheckoutService(orderStore, archive)

	httpHandler := handler.NewHTTPHandler(orderStore, checkout, log)
	wsHandler := handler.NewWSHandler(orderStore, cfg.SyncDebounce, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", httpHandler.HealthCheck)
	mux.HandleFunc("POST /api/orders", httpHandler.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", httpHandler.GetOrder)
	mux.HandleFunc("POST /api/orders/{id}/finalize", httpHandler.FinalizeOrder)
	mux.HandleFunc("GET /ws/orders/{id}", wsHandler.Surface)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info("http server stopped")

	// surfaces and their engines are bound to the base context; cancelling
	// it stops pending debounce timers before connections close
	cancel()

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

// jobtracker: personal job-application tracker.
//
// Serves the tracker over a JSON HTTP API and a gRPC API:
//   - addJob / updateField / addStep: application pipeline
//   - dashboard: ordered list, daily goal, charts
//   - job boards, research notes and work history
//
// An optional cron digest reports the day's progress every evening. When
// REDIS_URL is set the digest is guarded by a Redis lock so only one
// replica reports.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jobtracker/internal/config"
	"jobtracker/internal/db"
	"jobtracker/internal/grpcserver"
	"jobtracker/internal/httpapi"
	"jobtracker/internal/lock"
	"jobtracker/internal/logging"
	"jobtracker/internal/metrics"
	"jobtracker/internal/scheduler"
	"jobtracker/internal/store/memstore"
	"jobtracker/internal/store/sqlstore"
	"jobtracker/internal/tracker"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[tracker] Config error: %v", err)
	}
	logger := logging.Install(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("tracker stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Store ────────────────────────────────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── Redis (optional) ─────────────────────────────────────────────────────
	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		logger.Info("connecting to Redis")
		rdb, err := db.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb)
		logger.Info("Redis connected")
	}

	// ── Service ──────────────────────────────────────────────────────────────
	metrics.MustRegister()
	svc := tracker.NewService(store,
		tracker.Settings{DailyGoal: cfg.DailyGoal, Location: cfg.Location},
		tracker.WithObserver(metrics.Observer{}),
		tracker.WithLogger(logger),
	)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	httpapi.NewHandler(svc, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── gRPC server ──────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gsrv := grpc.NewServer()
	grpcserver.Register(gsrv, grpcserver.NewServer(svc))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gsrv, healthSrv)
	healthSrv.SetServingStatus(grpcserver.ServiceName, healthpb.HealthCheckResponse_SERVING)

	errc := make(chan error, 2)
	go func() {
		logger.Info("HTTP listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		logger.Info("gRPC listening", "port", cfg.GRPCPort)
		if err := gsrv.Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// ── Digest ───────────────────────────────────────────────────────────────
	if cfg.DigestEnabled() {
		sched := scheduler.New(svc, locker, cfg.DigestSchedule, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var runErr error
	select {
	case <-quit:
	case runErr = <-errc:
	}

	logger.Info("shutting down")
	healthSrv.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown error", "err", err)
	}
	gsrv.GracefulStop()
	logger.Info("stopped")
	return runErr
}

// openStore builds the configured store and returns a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tracker.Store, func(), error) {
	var (
		conn    *sql.DB
		dialect sqlstore.Dialect
		release func()
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), func() {}, nil

	case config.DriverSQLite:
		logger.Info("opening SQLite", "path", cfg.SQLitePath)
		c, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		conn, dialect = c, sqlstore.SQLite
		release = func() { c.Close() }

	default:
		logger.Info("connecting to PostgreSQL")
		c, pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		conn, dialect = c, sqlstore.Postgres
		release = func() {
			c.Close()
			pool.Close()
		}
	}

	st, err := sqlstore.New(conn, dialect)
	if err != nil {
		release()
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		release()
		return nil, nil, err
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)
	return st, release, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "jobtracker",
		"version": version,
	})
}

// Command sparkd serves the Spendlens demo data layer over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/spendlens/spark/internal/aggregate"
	"github.com/spendlens/spark/internal/api"
	"github.com/spendlens/spark/internal/auth"
	"github.com/spendlens/spark/internal/data"
	"github.com/spendlens/spark/internal/kv"
	"github.com/spendlens/spark/internal/kv/postgres"
	"github.com/spendlens/spark/internal/storage"
	"github.com/spendlens/spark/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, picks a storage backend, and starts the HTTP server.
func main() {
	addr := flag.String("addr", ":8080", "listen address")
	backend := flag.String("store", "memory", "storage backend: memory|file|postgres")
	dataDir := flag.String("data-dir", "./spark-data", "data directory for the file backend")
	dsn := flag.String("dsn", "", "PostgreSQL DSN for the postgres backend")
	signKey := flag.String("sign-key", "", "HS256 signing key for access tokens (required)")
	sessionTTL := flag.Duration("session-ttl", auth.DefaultSessionTTL, "session lifetime")
	verifyDelay := flag.Duration("verify-delay", auth.DefaultVerifyDelay, "simulated account verification latency")
	otpDelay := flag.Duration("otp-delay", auth.DefaultOTPDelay, "simulated OTP delivery latency")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", *addr),
		zap.String("store", *backend),
	)

	if *signKey == "" {
		logger.Fatal("missing signing key (--sign-key)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var backing kv.Store
	switch *backend {
	case "memory":
		backing = kv.NewMemory()
	case "file":
		fs, err := kv.NewFile(*dataDir)
		if err != nil {
			logger.Fatal("open file store", zap.String("dir", *dataDir), zap.Error(err))
		}
		backing = fs
	case "postgres":
		if *dsn == "" {
			logger.Fatal("postgres backend requires --dsn")
		}
		if err := postgres.Migrate(ctx, *dsn); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err := postgres.New(ctx, *dsn)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		backing = postgres.NewStore(db)
	default:
		logger.Fatal("unknown storage backend", zap.String("store", *backend))
	}

	// Composition root: everything is constructed here and injected down.
	adapter := storage.New(backing, logger)
	st := store.NewStore(adapter, logger)
	defer st.Close()

	authSvc := auth.NewService(st, []byte(*signKey), logger,
		auth.WithSessionTTL(*sessionTTL),
		auth.WithDelays(*verifyDelay, *otpDelay),
	)
	dataSvc := data.New(st, logger)

	agg, err := aggregate.New()
	if err != nil {
		logger.Fatal("load fixtures", zap.Error(err))
	}

	handlers := api.NewHandlers(authSvc, dataSvc, agg, st, logger)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.NewRouter(handlers, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

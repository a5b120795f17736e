package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/example/ride-ledger/internal/config"
	"github.com/example/ride-ledger/internal/events"
	httpapi "github.com/example/ride-ledger/internal/http"
	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/logging"
	"github.com/example/ride-ledger/internal/observability"
	"github.com/example/ride-ledger/internal/payments"
	"github.com/example/ride-ledger/internal/storage"
	"github.com/example/ride-ledger/internal/stream"
)

func main() {
	cfg, err := config.LoadServerConfig()
	logger := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	if cfg.PGDSN != "" && cfg.RunMigrations {
		if err := runMigrations(cfg.PGDSN); err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	obs := stream.NewRegistry(logger)
	sinks := events.Fanout{observability.MetricsSink{}, obs}

	var journal storage.EventJournal
	if cfg.PGDSN != "" {
		pj, err := storage.NewPostgresJournal(cfg.PGDSN)
		if err != nil {
			logger.Error("journal open failed", "error", err)
			os.Exit(1)
		}
		defer pj.Close()
		journal = pj
	} else {
		journal = storage.NewMemoryJournal()
	}
	sinks = append(sinks, &storage.JournalSink{Journal: journal, Logger: logger})

	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		sinks = append(sinks, kp)
	}

	// a slow broker or socket must not stall ledger operations
	emitter := events.NewBuffered(sinks, 1024)
	defer emitter.Close()
	core := ledger.New(ledger.WithEmitter(emitter))

	var mirror *payments.Mirror
	if os.Getenv("STRIPE_API_KEY") != "" {
		mirror = payments.NewMirror(payments.NewClient(cfg.StripeCurrency), logger)
	}

	api := httpapi.NewServer(httpapi.Deps{
		Core:            core,
		Stream:          obs,
		Mirror:          mirror,
		Logger:          logger,
		MaxListPageSize: cfg.MaxListPageSize,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("ride-ledger listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	b, err := os.ReadFile(filepath.Join("migrations", "001_create_ledger_events.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(string(b))
	return err
}

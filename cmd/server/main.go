// Server runs the presence API: tracker ingest, dashboard reads, and the
// live websocket stream. Set DATABASE_URL; JWT_SECRET is required in
// production. KAFKA_BROKERS or OTLP_ENDPOINT enable archiving.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"workeye/backend/internal/archive"
	archiveotel "workeye/backend/internal/archive/otel"
	"workeye/backend/internal/archive/producer"
	"workeye/backend/internal/broadcast"
	"workeye/backend/internal/config"
	dashboardhandler "workeye/backend/internal/dashboard/handler"
	"workeye/backend/internal/db"
	devicerepo "workeye/backend/internal/device/repository"
	healthhandler "workeye/backend/internal/health/handler"
	"workeye/backend/internal/ingest"
	"workeye/backend/internal/ledger"
	memberrepo "workeye/backend/internal/member/repository"
	"workeye/backend/internal/security"
	"workeye/backend/internal/server"
	sessionrepo "workeye/backend/internal/session/repository"
	tenantrepo "workeye/backend/internal/tenant/repository"
	trackerhandler "workeye/backend/internal/tracker/handler"
	confighandler "workeye/backend/internal/trackingconfig/handler"
	configrepo "workeye/backend/internal/trackingconfig/repository"
)

const serviceName = "workeye-presence"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := archiveotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure, logger)
	if err != nil {
		logger.Fatal("otel setup failed", zap.Error(err))
	}
	providers.SetGlobal()

	var emitter archive.Emitter
	if brokers := cfg.ArchiveKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.ArchiveKafkaTopic)
		if err != nil {
			logger.Fatal("kafka producer failed", zap.Error(err))
		}
		emitter = kp
		logger.Info("archiving to kafka", zap.Strings("brokers", brokers), zap.String("topic", cfg.ArchiveKafkaTopic))
	} else if cfg.OTLPEndpoint != "" {
		emitter = archiveotel.NewEmitter(providers.LoggerProvider)
		logger.Info("archiving to otel logs", zap.String("endpoint", cfg.OTLPEndpoint))
	}

	tenants := tenantrepo.NewPostgresRepository(conn)
	members := memberrepo.NewPostgresRepository(conn)
	devices := devicerepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	configs := configrepo.NewPostgresRepository(conn)

	hub := broadcast.NewHub(logger)
	store := ledger.NewPostgresStore(conn)
	ledgerSvc := ledger.NewService(store, hub, emitter, logger)
	guard := ingest.NewGuard(members, devices, configs, store, hub, emitter, logger)

	router := server.NewRouter(server.Deps{
		Log:            logger,
		Tenants:        tenants,
		TokenComparer:  security.NewHasher(0),
		TokenValidator: security.NewTokenValidator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		RequestTimeout: cfg.RequestTimeoutDuration(),
		Tracker:        trackerhandler.New(ledgerSvc, guard, members, sessions, logger),
		Dashboard:      dashboardhandler.New(members, logger),
		Config:         confighandler.New(configs, logger),
		Health:         healthhandler.New(conn),
		WS:             broadcast.NewWSHandler(hub, logger),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	hub.Close()

	// Let in-flight async emits finish before closing their sinks.
	time.Sleep(archive.ShutdownDrainDuration)
	if emitter != nil {
		if err := emitter.Close(); err != nil {
			logger.Error("emitter close failed", zap.Error(err))
		}
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		logger.Error("otel shutdown failed", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

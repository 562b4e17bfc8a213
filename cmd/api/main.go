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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/admir900-maker/ticket-gate/internal/app"
	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/config"
	"github.com/admir900-maker/ticket-gate/internal/policy"
	"github.com/admir900-maker/ticket-gate/internal/replay"
	"github.com/admir900-maker/ticket-gate/internal/storage/postgres"
	transporthttp "github.com/admir900-maker/ticket-gate/internal/transport/http"
	"github.com/admir900-maker/ticket-gate/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	clk := clock.NewSystem()

	// The replay guard prefers Redis so captures are caught across
	// instances; without Redis the in-process guard still covers a
	// single-node deployment.
	var guard replay.Guard
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		logger.Printf("WARN: redis unreachable at %s, using in-memory replay guard: %v", cfg.RedisAddr, err)
		guard = replay.NewMemoryGuard(clk)
	} else {
		guard = replay.NewRedisGuard(redisClient)
	}

	ticketRepo := postgres.NewTicketRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	resolver := policy.NewResolver(settingsRepo, clk,
		policy.WithTTL(cfg.PolicyTTL),
		policy.WithLogger(logger),
	)

	validationSvc := app.NewValidationService(ticketRepo, auditRepo, resolver, guard, clk,
		app.WithReplayWindow(cfg.ReplayWindow),
		app.WithValidationLogger(logger),
	)
	issueSvc := app.NewIssueService(ticketRepo, clk)
	settingsSvc := app.NewSettingsService(settingsRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/validate", transporthttp.HandleValidate(validationSvc))
	mux.Handle("/validate/image", transporthttp.HandleValidateImage(validationSvc))
	mux.Handle("/admin/events", transporthttp.HandleAdminEvents(issueSvc))
	mux.Handle("/admin/events/", transporthttp.HandleIssueTicket(issueSvc))
	mux.Handle("/admin/settings", transporthttp.HandleAdminSettings(settingsSvc))
	mux.Handle("/admin/logs", transporthttp.HandleAdminLogs(auditRepo))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

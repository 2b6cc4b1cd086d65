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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"user-management-backend/internal/audit"
	auditrepo "user-management-backend/internal/audit/repository"
	authhandler "user-management-backend/internal/auth/handler"
	authservice "user-management-backend/internal/auth/service"
	"user-management-backend/internal/config"
	"user-management-backend/internal/db"
	"user-management-backend/internal/metrics"
	rolehandler "user-management-backend/internal/role/handler"
	rolerepo "user-management-backend/internal/role/repository"
	roleservice "user-management-backend/internal/role/service"
	"user-management-backend/internal/security"
	"user-management-backend/internal/server"
	"user-management-backend/internal/server/middleware"
	sessionrepo "user-management-backend/internal/session/repository"
	"user-management-backend/internal/telemetry"
	telemetryotel "user-management-backend/internal/telemetry/otel"
	"user-management-backend/internal/telemetry/producer"
	userhandler "user-management-backend/internal/user/handler"
	userrepo "user-management-backend/internal/user/repository"
	userservice "user-management-backend/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "user-management-backend", cfg.Env != "prod")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	// Auth events go to Kafka when brokers are configured, otherwise straight
	// to the OTel log pipeline.
	var emitter telemetry.EventEmitter
	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("telemetry: kafka producer: %v", err)
	}
	if kafkaProducer != nil {
		defer kafkaProducer.Close()
		emitter = kafkaProducer
	} else {
		emitter = telemetryotel.NewEventEmitter(providers.LoggerProvider)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenProvider([]byte(cfg.JWTSecret), cfg.JWTAlgorithm, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())

	users := userrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	roles := rolerepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(audits, nil)

	authSvc := authservice.NewAuthService(users, sessions, hasher, tokens, cfg.RefreshTTL(), cfg.RefreshRotation)
	userSvc := userservice.NewUserService(users, hasher)
	roleSvc := roleservice.NewRoleService(roles, users)

	gaugeCtx, stopGauges := context.WithCancel(ctx)
	defer stopGauges()
	go refreshGauges(gaugeCtx, m, users, sessions)

	router := server.NewRouter(server.Deps{
		Auth:           authhandler.New(authSvc, auditLogger, emitter, m),
		Users:          userhandler.New(userSvc, roleSvc, auditLogger),
		Roles:          rolehandler.New(roleSvc, roleSvc, auditLogger),
		Tokens:         tokens,
		RateLimiter:    middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.RateWindow()),
		Metrics:        m,
		Registry:       registry,
		DB:             conn,
		AllowedOrigins: cfg.AllowedOriginsList(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight audit writes and async telemetry emits finish before the
	// database connection and providers go away.
	auditLogger.Flush()
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// refreshGauges keeps the registered-user and active-session gauges current.
// The counts are approximate by nature; a minute of staleness is fine.
func refreshGauges(ctx context.Context, m *metrics.Metrics, users *userrepo.PostgresRepository, sessions *sessionrepo.PostgresRepository) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		if n, err := users.Count(ctx); err == nil {
			m.ActiveUsers.Set(float64(n))
		}
		if n, err := sessions.CountActive(ctx, time.Now().UTC()); err == nil {
			m.ActiveSessions.Set(float64(n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

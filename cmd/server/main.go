package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/wasteline/internal/auth"
	"github.com/mmynk/wasteline/internal/calculator"
	"github.com/mmynk/wasteline/internal/config"
	"github.com/mmynk/wasteline/internal/latency"
	"github.com/mmynk/wasteline/internal/models"
	"github.com/mmynk/wasteline/internal/notify"
	"github.com/mmynk/wasteline/internal/repository"
	"github.com/mmynk/wasteline/internal/service"
	"github.com/mmynk/wasteline/internal/storage"
	"github.com/mmynk/wasteline/internal/storage/memory"
	"github.com/mmynk/wasteline/internal/storage/postgres"
	"github.com/mmynk/wasteline/internal/storage/seed"
	"github.com/mmynk/wasteline/internal/storage/sqlite"
	"github.com/mmynk/wasteline/internal/telemetry"
	"github.com/mmynk/wasteline/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info")
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Store.Driver)

	if err := seedStore(ctx, store, cfg); err != nil {
		return fmt.Errorf("failed to seed storage: %w", err)
	}

	notifier, closeNotifier, err := openNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	defer closeNotifier()

	repo := repository.New(store, repository.Options{
		Latency:      latency.New(cfg.SimulatedLatency),
		Notifier:     notifier,
		HouseholdFee: cfg.Billing.HouseholdFee,
	})

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		slog.Warn("JWT_SECRET not set; sessions will not survive a restart")
	}
	jwtManager := auth.NewJWTManager(secret, cfg.Auth.TokenTTL)
	codes := auth.NewCodeIssuer(repo, notifier, auth.CodeOptions{
		TTL:         cfg.Auth.CodeTTL,
		MaxAttempts: cfg.Auth.CodeMaxAttempts,
	})
	rates := calculator.Rates{
		HouseholdFee:     cfg.Billing.HouseholdFee,
		CommercialIncome: cfg.Billing.CommercialIncome,
		TotalSalaries:    cfg.Billing.TotalSalaries,
	}
	metrics := telemetry.New()

	opts := service.HandlerOptions(jwtManager, metrics)

	router := newRouter()
	service.Mount(router,
		service.NewAuthService(repo, auth.NewPasswordAuthenticator(repo), codes, jwtManager).Routes(opts...),
		service.NewHouseholdService(repo).Routes(opts...),
		service.NewStaffService(repo).Routes(opts...),
		service.NewReportService(repo, rates, cfg.Billing.SalarySource == config.SalaryStaff, metrics).Routes(opts...),
	)
	router.Handle("/metrics", metrics.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.StoreSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorePostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return memory.New(), nil
	}
}

// seedStore loads the start-up dataset. Stores that already hold
// households only get the admin credential refreshed.
func seedStore(ctx context.Context, store storage.Store, cfg config.Config) error {
	password := cfg.Auth.AdminPassword
	if password == "" {
		password = uuid.NewString()
		slog.Warn("ADMIN_PASSWORD not set; generated a password for this run",
			"username", cfg.Auth.AdminUsername,
			"password", password,
		)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	data := seed.Dataset(seed.Options{
		Households: cfg.Seed.Households,
		Fee:        cfg.Billing.HouseholdFee,
		RandomSeed: cfg.Seed.RandomSeed,
		Now:        time.Now(),
	}, models.Admin{Username: cfg.Auth.AdminUsername, PasswordHash: hash})

	if err := store.Seed(ctx, data); err != nil {
		return err
	}
	slog.Info("Storage seeded", "households", cfg.Seed.Households)
	return nil
}

func openNotifier(cfg config.NotifyConfig) (notify.Notifier, func(), error) {
	if cfg.Kind != config.NotifierAMQP {
		return notify.NewLogNotifier(nil), func() {}, nil
	}
	n, err := notify.DialAMQP(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		return nil, nil, err
	}
	return n, func() {
		if err := n.Close(); err != nil {
			slog.Warn("Failed to close AMQP notifier", "error", err)
		}
	}, nil
}

// newRouter returns a chi router carrying the shared middleware stack.
// loggingMiddleware sits inside RequestID so every line carries the id.
func newRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(loggingMiddleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(corsMiddleware)
	return router
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

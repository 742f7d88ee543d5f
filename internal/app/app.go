// Package app wires the terminal's components into one process.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/pos-terminal/internal/backend"
	"github.com/xenking/pos-terminal/internal/catalog"
	"github.com/xenking/pos-terminal/internal/domain/kitchen"
	"github.com/xenking/pos-terminal/internal/domain/order"
	"github.com/xenking/pos-terminal/internal/handler"
	"github.com/xenking/pos-terminal/internal/notify"
	"github.com/xenking/pos-terminal/internal/session"
	"github.com/xenking/pos-terminal/internal/storage/memory"
	"github.com/xenking/pos-terminal/internal/storage/postgres"
	"github.com/xenking/pos-terminal/internal/terminal"
	"github.com/xenking/pos-terminal/pkg/health"
	"github.com/xenking/pos-terminal/pkg/httpmiddleware"
)

// journal archives receipts and finds them again for reprint.
type journal interface {
	order.ReceiptJournal
	terminal.Receipts
}

// Run creates all dependencies, starts the terminal pollers and the local API
// server, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.Backend.URL),
		zap.String("state_dir", cfg.StateDir),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck(health.Check{
		Name:    "goroutines",
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(10000),
	})

	// Receipt journal: PostgreSQL when configured, memory otherwise.
	var receipts journal = memory.NewJournal(memory.DefaultCapacity)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		receipts = postgres.NewReceiptRepository(pool)
		healthSvc.AddReadinessCheck(health.Check{
			Name:    "postgres",
			Timeout: 5 * time.Second,
			Func:    pool.Ping,
		})
		lg.Info("Receipt journal in PostgreSQL")
	}

	client, err := backend.New(cfg.Backend.URL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithTelemetry(m.TracerProvider(), m.MeterProvider()),
	)
	if err != nil {
		return errors.Wrap(err, "create backend client")
	}

	cache := catalog.New(client, lg.Named("catalog"))
	healthSvc.AddReadinessCheck(health.Check{
		Name:    "catalog",
		Timeout: time.Second,
		// RefreshPending bumps FetchedAt on every successful poll.
		Func: health.FreshnessCheck(func() time.Time {
			return cache.Snapshot().FetchedAt
		}, max(time.Minute, 10*cfg.Poll.Pending), nil),
	})

	term, err := terminal.New(terminal.Options{
		Sessions:        session.NewManager(client, session.NewFileStore(cfg.StateDir), lg.Named("session")),
		Catalog:         cache,
		Orders:          order.NewService(client, receipts, lg.Named("order"), m.TracerProvider()),
		Tables:          client,
		Kitchen:         kitchen.NewTracker(client, lg.Named("kitchen"), cfg.Poll.Kitchen),
		Receipts:        receipts,
		Notify:          notify.New(lg.Named("notify"), notify.WithTTL(cfg.Notify.TTL)),
		Logger:          lg.Named("terminal"),
		MeterProvider:   m.MeterProvider(),
		PendingInterval: cfg.Poll.Pending,
	})
	if err != nil {
		return errors.Wrap(err, "create terminal")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(term).Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		// Checkout waits on the backend.
		WriteTimeout:   cfg.Backend.Timeout + 5*time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
		Addr:           cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
				ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.Throttle(ctx, httpmiddleware.ThrottleConfig{
				Max:    cfg.Login.MaxAttempts,
				Window: cfg.Login.Window,
				Match: func(r *http.Request) bool {
					return r.Method == http.MethodPost && r.URL.Path == "/api/session/login"
				},
				Message: "Too many login attempts. Please wait and try again.",
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("pos-terminal", m),
			httpmiddleware.LogRequests(),
		),
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return term.Run(gctx)
	})
	g.Go(func() error {
		// Graceful shutdown: wait for cancellation, drain, then stop.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"touristid/internal/artifact"
	"touristid/internal/audit"
	"touristid/internal/credential/issuer"
	"touristid/internal/document"
	"touristid/internal/identity"
	"touristid/internal/issuance/handler"
	"touristid/internal/issuance/metrics"
	"touristid/internal/issuance/service"
	"touristid/internal/issuance/tracer"
	jwttoken "touristid/internal/jwt_token"
	"touristid/internal/platform/config"
	"touristid/internal/platform/health"
	"touristid/internal/platform/httpserver"
	"touristid/internal/platform/logger"
	httptransport "touristid/internal/transport/http"
	"touristid/pkg/platform/middleware/request"
)

const (
	shutdownTimeout   = 10 * time.Second
	rateLimitSweep    = time.Minute
	trackerSweep      = 5 * time.Minute
	poolStatsInterval = 15 * time.Second
	auditBufferSize   = 256
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing touristid",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"credential_store", cfg.CredentialStore,
		"key_store", cfg.KeyStore,
		"tracker_store", cfg.TrackerStore,
	)

	var tp trace.TracerProvider
	if cfg.TracesToStdout {
		provider, shutdown, err := tracer.NewStdoutProvider(os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				log.Warn("trace flush failed", "error", err)
			}
		}()
		tp = provider
	}

	checks := health.New(cfg.Environment)
	stores, err := openBackends(ctx, cfg, tp, checks, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("closing backends failed", "error", err)
		}
	}()

	publisher := audit.NewPublisher(stores.auditStore,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
	)
	defer publisher.Close()

	reg := prometheus.DefaultRegisterer
	identities := identity.NewProvider(stores.keys, identity.WithLogger(log))
	tokens := jwttoken.NewJWTService(cfg.TokenSecret, cfg.TokenTTL)
	svc := service.New(
		identities,
		issuer.New(identities, log),
		stores.credentials,
		tokens,
		artifact.New(tokens, cfg.VerifyBaseURL, cfg.TokenTTL),
		document.New(document.WithCompression(true), document.WithLogger(log)),
		service.WithLogger(log),
		service.WithMetrics(metrics.New(reg)),
		service.WithTracer(tracer.NewOTel()),
		service.WithAuditPublisher(publisher),
		service.WithIssuanceStore(stores.issuances),
		service.WithTokenTTL(cfg.TokenTTL),
	)

	httpMetrics := request.NewMetrics(reg)
	limiter := request.NewRateLimiter(cfg.IssueRatePerMinute, cfg.IssueRateBurst, httpMetrics)
	issuance := handler.New(svc, log, handler.WithIssueMiddleware(limiter.Middleware))

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.Handler(),
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		TrustedProxies: cfg.TrustedProxies,
	}, checks, issuance)

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		sweepEvery(gctx, rateLimitSweep, "rate_limiter", limiter, log)
		return nil
	})
	if stores.trackerSweeper != nil {
		g.Go(func() error {
			sweepEvery(gctx, trackerSweep, "issuance_tracker", stores.trackerSweeper, log)
			return nil
		})
	}
	if stores.redis != nil {
		g.Go(func() error {
			every(gctx, poolStatsInterval, stores.redis.RecordPoolStats)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// sweeper drops expired or idle in-process entries.
type sweeper interface {
	Sweep() int
}

// sweepEvery runs s.Sweep on each tick until ctx is done.
func sweepEvery(ctx context.Context, interval time.Duration, name string, s sweeper, log *slog.Logger) {
	every(ctx, interval, func() {
		if n := s.Sweep(); n > 0 {
			log.Debug("swept expired entries", "store", name, "removed", n)
		}
	})
}

// every calls fn on each tick until ctx is done.
func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

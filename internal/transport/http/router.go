package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"touristid/pkg/platform/middleware/request"
	"touristid/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a feature's routes on the shared router.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the cross-cutting settings for the middleware stack.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *request.Metrics
	MetricsHandler http.Handler
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix
}

// NewRouter wires all public endpoints with middleware.
// Registrars are mounted in order; health and feature handlers share the stack.
func NewRouter(cfg RouterConfig, registrars ...RouteRegistrar) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.Logger(logger))
	r.Use(request.LatencyMiddleware(cfg.Metrics))
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}
	r.Use(request.ContentTypeJSON)

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	for _, reg := range registrars {
		if reg != nil {
			reg.Register(r)
		}
	}

	return r
}

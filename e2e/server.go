package e2e

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"touristid/internal/artifact"
	"touristid/internal/audit"
	"touristid/internal/credential/issuer"
	credstore "touristid/internal/credential/store"
	"touristid/internal/document"
	"touristid/internal/identity"
	"touristid/internal/identity/keystore"
	"touristid/internal/issuance/handler"
	"touristid/internal/issuance/metrics"
	"touristid/internal/issuance/service"
	jwttoken "touristid/internal/jwt_token"
	"touristid/internal/platform/health"
	"touristid/internal/platform/logger"
	httptransport "touristid/internal/transport/http"
	"touristid/pkg/platform/middleware/request"
)

const (
	inProcessSecret   = "e2e-secret"
	inProcessTokenTTL = time.Hour
)

// startInProcessServer runs the full HTTP stack on in-memory backends.
func startInProcessServer() *httptest.Server {
	log := logger.NewWithWriter(io.Discard, slog.LevelInfo)
	reg := prometheus.NewRegistry()

	identities := identity.NewProvider(keystore.NewMemory(), identity.WithLogger(log))
	tokens := jwttoken.NewJWTService(inProcessSecret, inProcessTokenTTL)
	svc := service.New(
		identities,
		issuer.New(identities, log),
		credstore.NewInMemory(),
		tokens,
		artifact.New(tokens, "", inProcessTokenTTL),
		document.New(document.WithLogger(log)),
		service.WithLogger(log),
		service.WithMetrics(metrics.New(reg)),
		service.WithAuditPublisher(audit.NewPublisher(audit.NewInMemoryStore())),
		service.WithTokenTTL(inProcessTokenTTL),
	)

	httpMetrics := request.NewMetrics(reg)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RequestTimeout: 30 * time.Second,
		MaxBodyBytes:   1 << 20,
	}, health.New("e2e"), handler.New(svc, log))

	return httptest.NewServer(router)
}

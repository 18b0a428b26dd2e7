// Package service orchestrates credential issuance: identities, signing,
// persistence, access tokens, the QR artifact and the PDF deliverable.
package service

import (
	"context"
	"log/slog"
	"time"

	"touristid/internal/artifact"
	"touristid/internal/audit"
	credmodels "touristid/internal/credential/models"
	idmodels "touristid/internal/identity/models"
	"touristid/internal/issuance/metrics"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/tracer"
	"touristid/internal/issuance/tracker"
	jwttoken "touristid/internal/jwt_token"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// IdentityProvider creates and resolves did:key identities.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context) (*idmodels.DID, error)
	ResolveIdentity(ctx context.Context, did string) (*idmodels.Document, error)
}

// CredentialIssuer signs and checks verifiable credentials.
type CredentialIssuer interface {
	Issue(ctx context.Context, issuerDID, subjectDID string, claims credmodels.TouristClaims) (*credmodels.VerifiableCredential, error)
	Verify(ctx context.Context, vc *credmodels.VerifiableCredential) (*credmodels.VerificationResult, error)
}

// CredentialStore persists issued credentials.
// Error Contract: Get returns sentinel.ErrNotFound when no record exists.
type CredentialStore interface {
	Save(ctx context.Context, userID string, vc *credmodels.VerifiableCredential, metadata credmodels.Metadata) (string, error)
	Get(ctx context.Context, userID, recordID string) (*credmodels.StoredCredentialRecord, error)
}

// TokenService mints and validates credential access tokens.
type TokenService interface {
	Mint(ctx context.Context, userID, recordID string, ttl time.Duration) (string, error)
	Validate(ctx context.Context, token string) (*jwttoken.AccessTokenClaims, error)
}

// ArtifactGenerator encodes verification URLs as QR images.
type ArtifactGenerator interface {
	Generate(ctx context.Context, recordID, userID, baseURL, kind string) (*artifact.Artifact, error)
	ForToken(token, baseURL, kind string) (*artifact.Artifact, error)
}

// DocumentRenderer produces the printable credential.
type DocumentRenderer interface {
	Render(ctx context.Context, record *credmodels.StoredCredentialRecord, artifactPNG []byte) ([]byte, error)
}

// IssuanceStore keeps issuance progress.
// Error Contract: Get returns sentinel.ErrNotFound for unknown or expired ids.
type IssuanceStore interface {
	Save(ctx context.Context, issuance *models.Issuance) error
	Get(ctx context.Context, id string) (*models.Issuance, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the issuance pipeline and the verification paths. Each call is
// strictly sequential and there is no compensation: a stored credential
// survives a later failure, and the tracker records how far the run got.
type Service struct {
	identities  IdentityProvider
	issuer      CredentialIssuer
	credentials CredentialStore
	tokens      TokenService
	artifacts   ArtifactGenerator
	documents   DocumentRenderer

	issuances  IssuanceStore
	auditor    AuditPublisher
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger
	tokenTTL   time.Duration
	selfVerify bool
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

// WithIssuanceStore replaces the default in-memory tracker.
func WithIssuanceStore(store IssuanceStore) Option {
	return func(s *Service) {
		s.issuances = store
	}
}

// WithTokenTTL sets the access token lifetime. Non-positive values keep the
// token service default.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithSelfVerify toggles verifying each credential right after signing.
// Enabled by default.
func WithSelfVerify(enabled bool) Option {
	return func(s *Service) {
		s.selfVerify = enabled
	}
}

// New creates the issuance service. Panics if a pipeline dependency is nil.
func New(
	identities IdentityProvider,
	issuer CredentialIssuer,
	credentials CredentialStore,
	tokens TokenService,
	artifacts ArtifactGenerator,
	documents DocumentRenderer,
	opts ...Option,
) *Service {
	if identities == nil {
		panic("service.New: identity provider is required")
	}
	if issuer == nil {
		panic("service.New: credential issuer is required")
	}
	if credentials == nil {
		panic("service.New: credential store is required")
	}
	if tokens == nil {
		panic("service.New: token service is required")
	}
	if artifacts == nil {
		panic("service.New: artifact generator is required")
	}
	if documents == nil {
		panic("service.New: document renderer is required")
	}

	s := &Service{
		identities:  identities,
		issuer:      issuer,
		credentials: credentials,
		tokens:      tokens,
		artifacts:   artifacts,
		documents:   documents,
		selfVerify:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = tracer.NewNoop()
	}
	if s.issuances == nil {
		s.issuances = tracker.NewInMemory(tracker.DefaultTTL)
	}
	return s
}

func (s *Service) emitAudit(ctx context.Context, span tracer.Span, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"user_id", event.UserID,
			"error", err,
		)
		return
	}
	if span != nil {
		span.AddEvent(tracer.EventAuditEmitted, tracer.String("action", event.Action))
	}
}

func (s *Service) incrementIssuance(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementIssuance(outcome)
	}
}

func (s *Service) incrementStepFailure(step string) {
	if s.metrics != nil {
		s.metrics.IncrementStepFailure(step)
	}
}

func (s *Service) incrementVerification(method, outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementVerification(method, outcome)
	}
}

func (s *Service) incrementTokenRejection(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementTokenRejection(reason)
	}
}

func (s *Service) observeIssuanceLatency(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveIssuanceLatency(time.Since(start).Seconds())
	}
}

func (s *Service) observeDocument(size int) {
	if s.metrics != nil {
		s.metrics.ObserveDocument(size)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"touristid/internal/artifact"
	"touristid/internal/audit"
	credmodels "touristid/internal/credential/models"
	idmodels "touristid/internal/identity/models"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/service/mocks"
	"touristid/internal/issuance/tracker"
	jwttoken "touristid/internal/jwt_token"
	"touristid/internal/sentinel"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx context.Context

	ctrl        *gomock.Controller
	identities  *mocks.MockIdentityProvider
	issuer      *mocks.MockCredentialIssuer
	credentials *mocks.MockCredentialStore
	tokens      *mocks.MockTokenService
	artifacts   *mocks.MockArtifactGenerator
	documents   *mocks.MockDocumentRenderer
	auditor     *mocks.MockAuditPublisher
	issuances   *tracker.InMemoryStore

	svc *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixedNow), "req-1")
	s.ctrl = gomock.NewController(s.T())
	s.identities = mocks.NewMockIdentityProvider(s.ctrl)
	s.issuer = mocks.NewMockCredentialIssuer(s.ctrl)
	s.credentials = mocks.NewMockCredentialStore(s.ctrl)
	s.tokens = mocks.NewMockTokenService(s.ctrl)
	s.artifacts = mocks.NewMockArtifactGenerator(s.ctrl)
	s.documents = mocks.NewMockDocumentRenderer(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.issuances = tracker.NewInMemory(time.Hour)

	s.svc = New(s.identities, s.issuer, s.credentials, s.tokens, s.artifacts, s.documents,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(s.auditor),
		WithIssuanceStore(s.issuances),
		WithTokenTTL(30*time.Minute),
	)
}

func (s *ServiceSuite) command() models.IssueCommand {
	return models.IssueCommand{
		Claims: credmodels.TouristClaims{
			FullName:         "Jane Roe",
			Nationality:      "CA",
			EmergencyContact: "+1-555-0100",
		},
		UserID:  "user_42",
		Options: models.Options{QRType: "verification", BaseURL: "https://tour.example"},
	}
}

var (
	issuerDID  = &idmodels.DID{ID: "did:key:zIssuer", Keys: []idmodels.KeyEntry{{KID: "did:key:zIssuer#zIssuer", Type: idmodels.KeyTypeEd25519}}}
	subjectDID = &idmodels.DID{ID: "did:key:zTourist", Keys: []idmodels.KeyEntry{{KID: "did:key:zTourist#zTourist", Type: idmodels.KeyTypeEd25519}}}
)

func sampleVC() *credmodels.VerifiableCredential {
	return &credmodels.VerifiableCredential{
		Context:           []string{credmodels.ContextCredentialsV1},
		Type:              []string{credmodels.TypeVerifiableCredential, credmodels.TypeTouristCredential},
		Issuer:            credmodels.Issuer{ID: issuerDID.ID},
		IssuanceDate:      fixedNow.Format(time.RFC3339),
		CredentialSubject: map[string]any{"id": subjectDID.ID, "fullName": "Jane Roe"},
		Proof:             &credmodels.Proof{Type: credmodels.ProofTypeJWT, JWT: "a.b.c"},
	}
}

func sampleArtifact() *artifact.Artifact {
	return &artifact.Artifact{
		ImageData:    []byte("png"),
		DataURI:      "data:image/png;base64,cG5n",
		PlaintextURL: "https://tour.example/verify?token=tok",
		Kind:         "verification",
		Token:        "tok",
	}
}

// expectThroughPersist wires the pipeline up to and including the store save.
func (s *ServiceSuite) expectThroughPersist(vc *credmodels.VerifiableCredential) *gomock.Call {
	return s.expectThroughPersistWith(vc, nil)
}

func (s *ServiceSuite) expectThroughPersistWith(vc *credmodels.VerifiableCredential, saveErr error) *gomock.Call {
	recordID := "vc_1777887000000_abcdefghi"
	if saveErr != nil {
		recordID = ""
	}
	gomock.InOrder(
		s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(issuerDID, nil),
		s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(subjectDID, nil),
		s.issuer.EXPECT().Issue(gomock.Any(), issuerDID.ID, subjectDID.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, claims credmodels.TouristClaims) (*credmodels.VerifiableCredential, error) {
				s.Equal("Jane Roe", claims.FullName)
				s.True(fixedNow.Equal(claims.IssuedAt))
				return vc, nil
			}),
		s.issuer.EXPECT().Verify(gomock.Any(), vc).Return(&credmodels.VerificationResult{Verified: true, Issuer: issuerDID.ID}, nil),
	)
	return s.credentials.EXPECT().Save(gomock.Any(), "user_42", vc, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ *credmodels.VerifiableCredential, md credmodels.Metadata) (string, error) {
			s.Equal(issuerDID.ID, md.IssuerDID)
			s.Equal(subjectDID.ID, md.TouristDID)
			s.Equal(credmodels.Framework, md.Framework)
			s.Require().NotNil(md.Verification)
			s.True(md.Verification.Verified)
			return recordID, saveErr
		})
}

func (s *ServiceSuite) TestIssueAndProcess() {
	vc := sampleVC()
	art := sampleArtifact()
	save := s.expectThroughPersist(vc)
	gomock.InOrder(
		save,
		s.tokens.EXPECT().Mint(gomock.Any(), "user_42", "vc_1777887000000_abcdefghi", 30*time.Minute).Return("tok", nil),
		s.artifacts.EXPECT().ForToken("tok", "https://tour.example", "verification").Return(art, nil),
		s.documents.EXPECT().Render(gomock.Any(), gomock.Any(), art.ImageData).
			DoAndReturn(func(_ context.Context, record *credmodels.StoredCredentialRecord, _ []byte) ([]byte, error) {
				s.Equal("vc_1777887000000_abcdefghi", record.ID)
				s.Equal(credmodels.StatusActive, record.Metadata.Status)
				s.True(fixedNow.Equal(record.Metadata.CreatedAt))
				return []byte("%PDF-1.3"), nil
			}),
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(string(audit.EventCredentialIssued), event.Action)
				s.Equal("user_42", event.UserID)
				s.Equal("vc_1777887000000_abcdefghi", event.Subject)
				s.Equal("req-1", event.RequestID)
				s.NotEmpty(event.IssuanceID)
				return nil
			}),
	)

	result, err := s.svc.IssueAndProcess(s.ctx, s.command())
	s.Require().NoError(err)

	s.Equal("user_42", result.UserID)
	s.Equal("vc_1777887000000_abcdefghi", result.RecordID)
	s.Equal(vc, result.Credential)
	s.Equal(issuerDID, result.IssuerDID)
	s.Equal(subjectDID, result.SubjectDID)
	s.True(result.Verification.Verified)
	s.Equal("tok", result.AccessToken)
	s.Equal(art.PlaintextURL, result.VerifyURL)
	s.Equal([]byte("%PDF-1.3"), result.Document)
	s.Equal(credmodels.StatusActive, result.Metadata.Status)
	s.True(fixedNow.Equal(result.IssuedAt))

	run, err := s.svc.GetIssuance(s.ctx, result.IssuanceID)
	s.Require().NoError(err)
	s.Equal(models.StateCompleted, run.State)
	s.Equal(result.RecordID, run.RecordID)
	states := make([]models.State, 0, len(run.Steps))
	for _, step := range run.Steps {
		states = append(states, step.State)
	}
	s.Equal([]models.State{
		models.StateStarted,
		models.StateIssuerIdentityCreated,
		models.StateSubjectIdentityCreated,
		models.StateCredentialSigned,
		models.StateCredentialVerified,
		models.StateCredentialPersisted,
		models.StateTokenMinted,
		models.StateArtifactGenerated,
		models.StateDocumentRendered,
		models.StateCompleted,
	}, states)
}

func (s *ServiceSuite) TestIssueAndProcessValidation() {
	cmd := s.command()
	cmd.Claims.Nationality = "  "

	_, err := s.svc.IssueAndProcess(s.ctx, cmd)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal([]string{"fullName", "nationality", "emergencyContact"}, domainErr.Details["required"])
}

func (s *ServiceSuite) TestIssueAndProcessGeneratesUserID() {
	cmd := s.command()
	cmd.UserID = ""
	cmd.Claims.FullName = ""

	// validation still runs first, so nothing is generated or called
	_, err := s.svc.IssueAndProcess(s.ctx, cmd)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	cmd.Claims.FullName = "Jane Roe"
	s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeKeyGeneration, "failed to generate key pair"))

	_, err = s.svc.IssueAndProcess(s.ctx, cmd)
	s.Require().Error(err)

	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	issuanceID, _ := domainErr.Details["issuanceId"].(string)
	run, lookupErr := s.svc.GetIssuance(s.ctx, issuanceID)
	s.Require().NoError(lookupErr)
	s.Regexp(regexp.MustCompile(`^user_\d+_[a-z0-9]{9}$`), run.UserID)
}

func (s *ServiceSuite) TestIssueAndProcessKeyGenerationFailure() {
	s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeKeyGeneration, "failed to generate key pair"))

	_, err := s.svc.IssueAndProcess(s.ctx, s.command())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeKeyGeneration))

	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(models.StepIssuerIdentity, domainErr.Details["step"])
	s.Equal("failed to generate key pair", domainErr.Message)
}

func (s *ServiceSuite) TestIssueAndProcessPersistFailureHidesCause() {
	s.expectThroughPersistWith(sampleVC(), errors.New("pq: connection refused"))

	_, err := s.svc.IssueAndProcess(s.ctx, s.command())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.NotContains(err.Error(), "connection refused")

	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(models.StepPersist, domainErr.Details["step"])

	run, lookupErr := s.svc.GetIssuance(s.ctx, domainErr.Details["issuanceId"].(string))
	s.Require().NoError(lookupErr)
	s.Equal(models.StateFailed, run.State)
	s.False(run.Persisted())
	s.NotContains(run.Error, "connection refused")
}

func (s *ServiceSuite) TestIssueAndProcessRenderFailureKeepsRecord() {
	art := sampleArtifact()
	save := s.expectThroughPersist(sampleVC())
	gomock.InOrder(
		save,
		s.tokens.EXPECT().Mint(gomock.Any(), "user_42", gomock.Any(), gomock.Any()).Return("tok", nil),
		s.artifacts.EXPECT().ForToken("tok", gomock.Any(), gomock.Any()).Return(art, nil),
		s.documents.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeRender, "verification artifact is not a PNG image")),
	)

	_, err := s.svc.IssueAndProcess(s.ctx, s.command())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeRender))

	var domainErr *dErrors.Error
	s.Require().True(errors.As(err, &domainErr))
	s.Equal(models.StepRenderDocument, domainErr.Details["step"])

	run, lookupErr := s.svc.GetIssuance(s.ctx, domainErr.Details["issuanceId"].(string))
	s.Require().NoError(lookupErr)
	s.Equal(models.StateFailed, run.State)
	s.Equal(models.StepRenderDocument, run.FailedStep)
	s.Equal("vc_1777887000000_abcdefghi", run.RecordID)
	s.True(run.Persisted())
}

func (s *ServiceSuite) TestIssueAndProcessWithoutSelfVerify() {
	svc := New(s.identities, s.issuer, s.credentials, s.tokens, s.artifacts, s.documents,
		WithSelfVerify(false),
		WithIssuanceStore(s.issuances),
	)
	vc := sampleVC()
	art := sampleArtifact()
	gomock.InOrder(
		s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(issuerDID, nil),
		s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(subjectDID, nil),
		s.issuer.EXPECT().Issue(gomock.Any(), issuerDID.ID, subjectDID.ID, gomock.Any()).Return(vc, nil),
		s.credentials.EXPECT().Save(gomock.Any(), "user_42", vc, gomock.Any()).Return("vc_1_abc", nil),
		s.tokens.EXPECT().Mint(gomock.Any(), "user_42", "vc_1_abc", time.Duration(0)).Return("tok", nil),
		s.artifacts.EXPECT().ForToken("tok", gomock.Any(), gomock.Any()).Return(art, nil),
		s.documents.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Return([]byte("%PDF"), nil),
	)

	result, err := svc.IssueAndProcess(s.ctx, s.command())
	s.Require().NoError(err)
	s.False(result.Verification.Verified)

	run, err := svc.GetIssuance(s.ctx, result.IssuanceID)
	s.Require().NoError(err)
	for _, step := range run.Steps {
		s.NotEqual(models.StateCredentialVerified, step.State)
	}
}

func (s *ServiceSuite) TestGetIssuanceUnknown() {
	_, err := s.svc.GetIssuance(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) storedRecord() *credmodels.StoredCredentialRecord {
	return &credmodels.StoredCredentialRecord{
		ID:         "vc_1_abc",
		UserID:     "user_42",
		Credential: *sampleVC(),
		Metadata: credmodels.Metadata{
			CreatedAt: fixedNow.Add(-time.Hour),
			Status:    credmodels.StatusActive,
		},
	}
}

func (s *ServiceSuite) TestVerifyByToken() {
	record := s.storedRecord()
	s.tokens.EXPECT().Validate(gomock.Any(), "tok").Return(&jwttoken.AccessTokenClaims{UserID: "user_42", VCID: "vc_1_abc", Type: jwttoken.TokenTypeAccess}, nil)
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_1_abc").Return(record, nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventCredentialVerified), event.Action)
			return nil
		})

	result, err := s.svc.VerifyByToken(s.ctx, "tok")
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal("vc_1_abc", result.RecordID)
	s.Equal("user_42", result.UserID)
	s.Equal(record.Credential, result.Credential)
	s.True(fixedNow.Equal(result.VerifiedAt))
}

func (s *ServiceSuite) TestVerifyByTokenRejected() {
	rejection := dErrors.Wrap(jwttoken.ErrExpired, dErrors.CodeInvalidToken, "invalid or expired token")
	s.tokens.EXPECT().Validate(gomock.Any(), "expired").Return(nil, rejection)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event audit.Event) error {
			s.Equal(string(audit.EventVerificationFailed), event.Action)
			s.Equal(reasonInvalidToken, event.Reason)
			return nil
		})

	_, err := s.svc.VerifyByToken(s.ctx, "expired")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidToken))
	s.Equal("invalid or expired token", err.Error())
}

func (s *ServiceSuite) TestVerifyByTokenMissing() {
	_, err := s.svc.VerifyByToken(s.ctx, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestVerifyByTokenUnknownRecord() {
	s.tokens.EXPECT().Validate(gomock.Any(), "tok").Return(&jwttoken.AccessTokenClaims{UserID: "user_42", VCID: "vc_9_zzz"}, nil)
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_9_zzz").Return(nil, sentinel.ErrNotFound)

	_, err := s.svc.VerifyByToken(s.ctx, "tok")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyByRecord() {
	record := s.storedRecord()
	presented, err := json.Marshal(record.Credential)
	s.Require().NoError(err)

	tampered := *sampleVC()
	tampered.CredentialSubject = map[string]any{"id": subjectDID.ID, "fullName": "John Roe"}
	tamperedJSON, err := json.Marshal(tampered)
	s.Require().NoError(err)

	tests := []struct {
		name       string
		presented  json.RawMessage
		status     string
		wantMatch  bool
		wantVerify bool
		wantAction audit.AuditEvent
		wantReason string
	}{
		{name: "no credential presented", status: credmodels.StatusActive, wantMatch: true, wantVerify: true, wantAction: audit.EventCredentialVerified, wantReason: "record"},
		{name: "null credential", presented: json.RawMessage("null"), status: credmodels.StatusActive, wantMatch: true, wantVerify: true, wantAction: audit.EventCredentialVerified, wantReason: "record"},
		{name: "matching credential", presented: presented, status: credmodels.StatusActive, wantMatch: true, wantVerify: true, wantAction: audit.EventCredentialVerified, wantReason: "record"},
		{name: "mismatching credential", presented: tamperedJSON, status: credmodels.StatusActive, wantMatch: false, wantVerify: false, wantAction: audit.EventVerificationFailed, wantReason: reasonCredentialMismatch},
		{name: "revoked record", presented: presented, status: "revoked", wantMatch: true, wantVerify: false, wantAction: audit.EventVerificationFailed, wantReason: reasonInactive},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			stored := s.storedRecord()
			stored.Metadata.Status = tt.status
			s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_1_abc").Return(stored, nil)
			s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, event audit.Event) error {
					s.Equal(string(tt.wantAction), event.Action)
					s.Equal(tt.wantReason, event.Reason)
					return nil
				})

			result, err := s.svc.VerifyByRecord(s.ctx, "user_42", "vc_1_abc", tt.presented)
			s.Require().NoError(err)
			s.Equal(tt.wantMatch, result.CredentialMatch)
			s.Equal(tt.wantVerify, result.Verified)
			s.Equal(tt.status, result.Status)
			s.True(stored.Metadata.CreatedAt.Equal(result.IssuedAt))
			s.True(fixedNow.Equal(result.VerifiedAt))
		})
	}
}

func (s *ServiceSuite) TestVerifyByRecordNotFound() {
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_0_none").Return(nil, sentinel.ErrNotFound)

	_, err := s.svc.VerifyByRecord(s.ctx, "user_42", "vc_0_none", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerifyByRecordMissingIDs() {
	_, err := s.svc.VerifyByRecord(s.ctx, "", "vc_1_abc", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestRenderDocument() {
	record := s.storedRecord()
	art := sampleArtifact()
	gomock.InOrder(
		s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_1_abc").Return(record, nil),
		s.artifacts.EXPECT().Generate(gomock.Any(), "vc_1_abc", "user_42", "https://tour.example", "verification").Return(art, nil),
		s.documents.EXPECT().Render(gomock.Any(), record, art.ImageData).Return([]byte("%PDF"), nil),
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, event audit.Event) error {
				s.Equal(string(audit.EventDocumentRendered), event.Action)
				return nil
			}),
	)

	pdf, err := s.svc.RenderDocument(s.ctx, "user_42", "vc_1_abc", models.Options{QRType: "verification", BaseURL: "https://tour.example"})
	s.Require().NoError(err)
	s.Equal([]byte("%PDF"), pdf)
}

func (s *ServiceSuite) TestRenderDocumentNotFound() {
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_0_none").Return(nil, sentinel.ErrNotFound)

	_, err := s.svc.RenderDocument(s.ctx, "user_42", "vc_0_none", models.Options{})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRenderDocumentRenderFailure() {
	record := s.storedRecord()
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_1_abc").Return(record, nil)
	s.artifacts.EXPECT().Generate(gomock.Any(), "vc_1_abc", "user_42", "", "").Return(sampleArtifact(), nil)
	s.documents.EXPECT().Render(gomock.Any(), record, gomock.Any()).Return(nil, dErrors.New(dErrors.CodeRender, "bad image"))

	_, err := s.svc.RenderDocument(s.ctx, "user_42", "vc_1_abc", models.Options{})
	s.True(dErrors.HasCode(err, dErrors.CodeRender))
}

func (s *ServiceSuite) TestProbe() {
	s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(subjectDID, nil)
	s.identities.EXPECT().ResolveIdentity(gomock.Any(), subjectDID.ID).Return(&idmodels.Document{ID: subjectDID.ID}, nil)

	result, err := s.svc.Probe(s.ctx)
	s.Require().NoError(err)
	s.True(result.Capabilities.DIDGeneration)
	s.True(result.Capabilities.CredentialVerification)
	s.Equal(subjectDID.ID, result.TestResults.DID)
	s.True(result.TestResults.Resolved)
	s.Equal(1, result.TestResults.KeyCount)
	s.Equal([]string{idmodels.KeyTypeEd25519}, result.TestResults.KeyTypes)
	s.True(result.TestResults.QRRoundTrip)
}

func (s *ServiceSuite) TestProbeResolutionFailure() {
	s.identities.EXPECT().CreateIdentity(gomock.Any()).Return(subjectDID, nil)
	s.identities.EXPECT().ResolveIdentity(gomock.Any(), subjectDID.ID).Return(nil, dErrors.New(dErrors.CodeNotFound, "did not found"))

	_, err := s.svc.Probe(s.ctx)
	s.Error(err)
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailVerification() {
	s.credentials.EXPECT().Get(gomock.Any(), "user_42", "vc_1_abc").Return(s.storedRecord(), nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	result, err := s.svc.VerifyByRecord(s.ctx, "user_42", "vc_1_abc", nil)
	s.Require().NoError(err)
	s.True(result.Verified)
}

func (s *ServiceSuite) TestNewPanicsOnMissingDependency() {
	s.Panics(func() {
		New(nil, s.issuer, s.credentials, s.tokens, s.artifacts, s.documents)
	})
}

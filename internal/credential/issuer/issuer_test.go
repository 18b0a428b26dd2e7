package issuer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"touristid/internal/credential/models"
	"touristid/internal/identity"
	"touristid/internal/identity/keystore"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/middleware/requesttime"
)

type IssuerSuite struct {
	suite.Suite
	ctx        context.Context
	identities *identity.Provider
	issuer     *Issuer
	issuerDID  string
	subjectDID string
}

func TestIssuerSuite(t *testing.T) {
	suite.Run(t, new(IssuerSuite))
}

func (s *IssuerSuite) SetupTest() {
	s.ctx = requesttime.WithTime(context.Background(), time.Date(2025, 6, 1, 9, 30, 15, 500, time.UTC))
	s.identities = identity.NewProvider(keystore.NewMemory())
	s.issuer = New(s.identities, nil)

	issuer, err := s.identities.CreateIdentity(s.ctx)
	s.Require().NoError(err)
	subject, err := s.identities.CreateIdentity(s.ctx)
	s.Require().NoError(err)
	s.issuerDID, s.subjectDID = issuer.ID, subject.ID
}

func (s *IssuerSuite) claims() models.TouristClaims {
	return models.TouristClaims{
		FullName:         "Jane Roe",
		Nationality:      "CA",
		EmergencyContact: "+1-555-0100",
	}
}

func (s *IssuerSuite) issue() *models.VerifiableCredential {
	vc, err := s.issuer.Issue(s.ctx, s.issuerDID, s.subjectDID, s.claims())
	s.Require().NoError(err)
	return vc
}

func (s *IssuerSuite) TestIssueShape() {
	vc := s.issue()

	s.Equal([]string{"https://www.w3.org/2018/credentials/v1"}, vc.Context)
	s.Equal([]string{"VerifiableCredential", "TouristCredential"}, vc.Type)
	s.Equal(s.issuerDID, vc.Issuer.ID)
	s.Equal("2025-06-01T09:30:15Z", vc.IssuanceDate)
	s.Equal(s.subjectDID, vc.SubjectID())
	s.Equal("Jane Roe", vc.CredentialSubject["fullName"])
	s.Equal("CA", vc.CredentialSubject["nationality"])
	s.Equal("+1-555-0100", vc.CredentialSubject["emergencyContact"])
	s.Equal(models.DefaultCredentialType, vc.CredentialSubject["credentialType"])
	s.Equal("2025-06-01T09:30:15Z", vc.CredentialSubject["issuedAt"])

	s.Require().NotNil(vc.Proof)
	s.Equal("JwtProof2020", vc.Proof.Type)
	s.Len(strings.Split(vc.Proof.JWT, "."), 3)
}

func (s *IssuerSuite) TestIssueThenVerify() {
	result, err := s.issuer.Verify(s.ctx, s.issue())
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal(s.issuerDID, result.Issuer)
	s.Empty(result.Reason)
}

func (s *IssuerSuite) TestExtensionsCannotOverrideReservedKeys() {
	claims := s.claims()
	claims.Extensions = map[string]any{
		"id":          "did:key:zAttacker",
		"fullName":    "Mallory",
		"passportRef": "X123",
	}
	vc, err := s.issuer.Issue(s.ctx, s.issuerDID, s.subjectDID, claims)
	s.Require().NoError(err)

	s.Equal(s.subjectDID, vc.SubjectID())
	s.Equal("Jane Roe", vc.CredentialSubject["fullName"])
	s.Equal("X123", vc.CredentialSubject["passportRef"])

	result, err := s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.True(result.Verified)
}

func (s *IssuerSuite) TestExplicitClaimValues() {
	claims := s.claims()
	claims.CredentialType = "Tourist Visa"
	claims.IssuedAt = time.Date(2024, 12, 24, 8, 0, 0, 0, time.UTC)

	vc, err := s.issuer.Issue(s.ctx, s.issuerDID, s.subjectDID, claims)
	s.Require().NoError(err)
	s.Equal("Tourist Visa", vc.CredentialSubject["credentialType"])
	s.Equal("2024-12-24T08:00:00Z", vc.CredentialSubject["issuedAt"])
}

func (s *IssuerSuite) TestTamperedSubjectFailsVerification() {
	vc := s.issue()
	vc.CredentialSubject["fullName"] = "John Roe"

	result, err := s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(ReasonPayloadMismatch, result.Reason)
}

func (s *IssuerSuite) TestTamperedIssuanceDateFailsVerification() {
	vc := s.issue()
	vc.IssuanceDate = "2030-01-01T00:00:00Z"

	result, err := s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.False(result.Verified)
}

func (s *IssuerSuite) TestTamperedSignatureFailsVerification() {
	vc := s.issue()
	parts := strings.Split(vc.Proof.JWT, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	vc.Proof.JWT = parts[0] + "." + parts[1] + "." + string(sig)

	result, err := s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(ReasonInvalidSignature, result.Reason)
}

func (s *IssuerSuite) TestMissingAndMalformedProof() {
	vc := s.issue()
	vc.Proof = nil
	result, err := s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(ReasonMissingProof, result.Reason)

	vc.Proof = &models.Proof{Type: models.ProofTypeJWT, JWT: "not-a-jwt"}
	result, err = s.issuer.Verify(s.ctx, vc)
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(ReasonMalformedProof, result.Reason)
}

func (s *IssuerSuite) TestUnresolvableIssuer() {
	other := identity.NewProvider(keystore.NewMemory())
	foreignIssuer, err := other.CreateIdentity(s.ctx)
	s.Require().NoError(err)

	vc, err := New(other, nil).Issue(s.ctx, foreignIssuer.ID, s.subjectDID, s.claims())
	s.Require().NoError(err)

	_, err = s.issuer.Verify(s.ctx, vc)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeResolution))
}

func (s *IssuerSuite) TestIssueWithUnknownIssuerKey() {
	_, err := s.issuer.Issue(s.ctx, "did:key:z6MkUnknown", s.subjectDID, s.claims())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSigning))
}

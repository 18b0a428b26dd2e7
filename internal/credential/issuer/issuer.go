// Package issuer signs tourist credentials as JWT-proofed W3C VCs and verifies them.
package issuer

import (
	"context"
	"crypto/ed25519"
	"log/slog"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"touristid/internal/credential/models"
	"touristid/internal/identity"
	idmodels "touristid/internal/identity/models"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/middleware/requesttime"
)

// IdentityProvider resolves DIDs and hands out issuer signing keys.
// Error Contract:
// - ResolveIdentity returns a not_found domain error for unknown DIDs
// - Signer returns a signing_failed domain error when key material is missing
type IdentityProvider interface {
	ResolveIdentity(ctx context.Context, did string) (*idmodels.Document, error)
	Signer(ctx context.Context, did string) (ed25519.PrivateKey, error)
}

// Verification failure reasons.
const (
	ReasonMissingProof     = "missing proof"
	ReasonMalformedProof   = "malformed proof"
	ReasonInvalidSignature = "invalid signature"
	ReasonPayloadMismatch  = "credential does not match proof"
)

type vcPayload struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	CredentialSubject map[string]any `json:"credentialSubject"`
}

// credentialClaims is the JWT-VC encoding: the subject DID moves to sub,
// the issuer to iss and issuanceDate to nbf.
type credentialClaims struct {
	VC vcPayload `json:"vc"`
	jwt.RegisteredClaims
}

type Issuer struct {
	identities IdentityProvider
	logger     *slog.Logger
}

func New(identities IdentityProvider, logger *slog.Logger) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{identities: identities, logger: logger}
}

// Issue builds a TouristCredential for subjectDID and signs it with issuerDID's key.
func (i *Issuer) Issue(ctx context.Context, issuerDID, subjectDID string, claims models.TouristClaims) (*models.VerifiableCredential, error) {
	now := requesttime.Now(ctx).UTC().Truncate(time.Second)

	key, err := i.identities.Signer(ctx, issuerDID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigning, "issuer key unavailable")
	}

	subject := buildSubject(subjectDID, claims, now)
	vc := &models.VerifiableCredential{
		Context:           []string{models.ContextCredentialsV1},
		Type:              []string{models.TypeVerifiableCredential, models.TypeTouristCredential},
		Issuer:            models.Issuer{ID: issuerDID},
		IssuanceDate:      now.Format(time.RFC3339),
		CredentialSubject: subject,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, credentialClaims{
		VC: vcPayload{
			Context:           vc.Context,
			Type:              vc.Type,
			CredentialSubject: withoutID(subject),
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerDID,
			Subject:   subjectDID,
			NotBefore: jwt.NewNumericDate(now),
		},
	})
	token.Header["kid"] = identity.KeyID(issuerDID)

	signed, err := token.SignedString(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigning, "failed to sign credential")
	}
	vc.Proof = &models.Proof{Type: models.ProofTypeJWT, JWT: signed}
	return vc, nil
}

// Verify checks the credential proof against the issuer's resolved key and
// that the visible credential matches what was signed. A bad signature or a
// mismatch yields Verified=false without an error.
func (i *Issuer) Verify(ctx context.Context, vc *models.VerifiableCredential) (*models.VerificationResult, error) {
	if vc == nil || vc.Proof == nil || vc.Proof.JWT == "" {
		return &models.VerificationResult{Reason: ReasonMissingProof}, nil
	}

	unverified := &credentialClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(vc.Proof.JWT, unverified); err != nil || unverified.Issuer == "" {
		return &models.VerificationResult{Reason: ReasonMalformedProof}, nil
	}
	issuerDID := unverified.Issuer

	doc, err := i.identities.ResolveIdentity(ctx, issuerDID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeResolution, "issuer DID could not be resolved")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeResolution, "issuer DID resolution failed")
	}
	pub, err := identity.PublicKeyFromDocument(doc)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeResolution, "issuer DID document has no usable key")
	}

	signed := &credentialClaims{}
	_, err = jwt.ParseWithClaims(vc.Proof.JWT, signed,
		func(*jwt.Token) (any, error) { return pub, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return requesttime.Now(ctx) }),
	)
	if err != nil {
		i.logger.DebugContext(ctx, "credential proof rejected", "issuer", issuerDID, "error", err)
		return &models.VerificationResult{Issuer: issuerDID, Reason: ReasonInvalidSignature}, nil
	}

	if !matchesPayload(vc, signed) {
		return &models.VerificationResult{Issuer: issuerDID, Reason: ReasonPayloadMismatch}, nil
	}
	return &models.VerificationResult{Verified: true, Issuer: issuerDID}, nil
}

func buildSubject(subjectDID string, claims models.TouristClaims, now time.Time) map[string]any {
	credentialType := claims.CredentialType
	if credentialType == "" {
		credentialType = models.DefaultCredentialType
	}
	issuedAt := claims.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = now
	}

	subject := make(map[string]any, len(claims.Extensions)+6)
	maps.Copy(subject, claims.Extensions)
	subject[models.SubjectKeyFullName] = claims.FullName
	subject[models.SubjectKeyNationality] = claims.Nationality
	subject[models.SubjectKeyEmergencyContact] = claims.EmergencyContact
	subject[models.SubjectKeyCredentialType] = credentialType
	subject[models.SubjectKeyIssuedAt] = issuedAt.UTC().Format(time.RFC3339)
	subject[models.SubjectKeyID] = subjectDID
	return subject
}

func withoutID(subject map[string]any) map[string]any {
	out := maps.Clone(subject)
	delete(out, models.SubjectKeyID)
	return out
}

func matchesPayload(vc *models.VerifiableCredential, signed *credentialClaims) bool {
	if vc.Issuer.ID != signed.Issuer || vc.SubjectID() != signed.Subject {
		return false
	}
	if signed.NotBefore == nil {
		return false
	}
	issued, err := time.Parse(time.RFC3339, vc.IssuanceDate)
	if err != nil || !issued.Equal(signed.NotBefore.Time) {
		return false
	}
	return models.CanonicalEqual(vc.Context, signed.VC.Context) &&
		models.CanonicalEqual(vc.Type, signed.VC.Type) &&
		models.CanonicalEqual(withoutID(vc.CredentialSubject), signed.VC.CredentialSubject)
}

package testutil

import (
	"maps"

	credmodels "touristid/internal/credential/models"
	idmodels "touristid/internal/identity/models"
)

// TestDIDs provides fixed identifiers for tests that do not sign anything.
var TestDIDs = struct {
	Issuer  string
	Tourist string
}{
	Issuer:  "did:key:z6MkhaXgBZDvotDkL5257faiztiGiC2QtKLGpbnnEGta2doK",
	Tourist: "did:key:z6MkjchhfUsD6mmvni8mCdXHw216Xrm9bQe2mBH1P5RDjVJG",
}

// CredentialBuilder provides a fluent interface for building test credentials.
// The built credential carries a placeholder proof and does not verify.
type CredentialBuilder struct {
	vc *credmodels.VerifiableCredential
}

// NewCredentialBuilder creates a CredentialBuilder for the Jane Roe tourist.
func NewCredentialBuilder() *CredentialBuilder {
	return &CredentialBuilder{
		vc: &credmodels.VerifiableCredential{
			Context:      []string{credmodels.ContextCredentialsV1},
			Type:         []string{credmodels.TypeVerifiableCredential, credmodels.TypeTouristCredential},
			Issuer:       credmodels.Issuer{ID: TestDIDs.Issuer},
			IssuanceDate: "2025-06-01T09:30:00Z",
			CredentialSubject: map[string]any{
				credmodels.SubjectKeyID:               TestDIDs.Tourist,
				credmodels.SubjectKeyFullName:         "Jane Roe",
				credmodels.SubjectKeyNationality:      "CA",
				credmodels.SubjectKeyEmergencyContact: "+1-555-0100",
				credmodels.SubjectKeyCredentialType:   credmodels.DefaultCredentialType,
				credmodels.SubjectKeyIssuedAt:         "2025-06-01T09:30:00Z",
			},
			Proof: &credmodels.Proof{Type: credmodels.ProofTypeJWT, JWT: "header.payload.signature"},
		},
	}
}

func (b *CredentialBuilder) WithClaim(key string, value any) *CredentialBuilder {
	b.vc.CredentialSubject[key] = value
	return b
}

func (b *CredentialBuilder) Build() *credmodels.VerifiableCredential {
	out := *b.vc
	out.CredentialSubject = maps.Clone(b.vc.CredentialSubject)
	return &out
}

// NewMetadata returns issuance metadata matching the builder defaults.
func NewMetadata() credmodels.Metadata {
	return credmodels.Metadata{
		IssuerDID:  TestDIDs.Issuer,
		TouristDID: TestDIDs.Tourist,
		IssuerIdentifier: &idmodels.DID{
			ID:   TestDIDs.Issuer,
			Keys: []idmodels.KeyEntry{{KID: TestDIDs.Issuer + "#key-1", Type: idmodels.KeyTypeEd25519, PublicKeyHex: "00"}},
		},
		TouristIdentifier: &idmodels.DID{
			ID:   TestDIDs.Tourist,
			Keys: []idmodels.KeyEntry{{KID: TestDIDs.Tourist + "#key-1", Type: idmodels.KeyTypeEd25519, PublicKeyHex: "01"}},
		},
		Verification: &credmodels.VerificationEcho{Verified: true, Issuer: TestDIDs.Issuer},
		Framework:    credmodels.Framework,
	}
}

package models

import (
	"time"

	idmodels "touristid/internal/identity/models"
)

// Credential vocabulary.
const (
	ContextCredentialsV1     = "https://www.w3.org/2018/credentials/v1"
	TypeVerifiableCredential = "VerifiableCredential"
	TypeTouristCredential    = "TouristCredential"
	ProofTypeJWT             = "JwtProof2020"

	// DefaultCredentialType is the credentialType claim written when none is given.
	DefaultCredentialType = "Tourist Verification"

	StatusActive = "active"
	Framework    = "touristid"
)

// Well-known credentialSubject keys, in display order.
const (
	SubjectKeyID               = "id"
	SubjectKeyFullName         = "fullName"
	SubjectKeyNationality      = "nationality"
	SubjectKeyEmergencyContact = "emergencyContact"
	SubjectKeyCredentialType   = "credentialType"
	SubjectKeyIssuedAt         = "issuedAt"
)

// KnownSubjectKeys lists the claim keys with a fixed position.
var KnownSubjectKeys = []string{
	SubjectKeyFullName,
	SubjectKeyNationality,
	SubjectKeyEmergencyContact,
	SubjectKeyCredentialType,
	SubjectKeyIssuedAt,
}

// TouristClaims are the claims about a tourist carried in the credential subject.
// Extensions are copied verbatim but can never replace id or a known key.
type TouristClaims struct {
	FullName         string
	Nationality      string
	EmergencyContact string
	CredentialType   string
	IssuedAt         time.Time
	Extensions       map[string]any
}

// Issuer identifies the credential issuer.
type Issuer struct {
	ID string `json:"id"`
}

// Proof carries the signed JWT form of the credential.
type Proof struct {
	Type string `json:"type"`
	JWT  string `json:"jwt"`
}

// VerifiableCredential is a W3C VC with a JWT proof.
type VerifiableCredential struct {
	Context           []string       `json:"@context"`
	Type              []string       `json:"type"`
	Issuer            Issuer         `json:"issuer"`
	IssuanceDate      string         `json:"issuanceDate"`
	CredentialSubject map[string]any `json:"credentialSubject"`
	Proof             *Proof         `json:"proof,omitempty"`
}

// SubjectID returns the DID the credential is about.
func (vc *VerifiableCredential) SubjectID() string {
	id, _ := vc.CredentialSubject[SubjectKeyID].(string)
	return id
}

// VerificationResult is the outcome of checking a credential's proof.
type VerificationResult struct {
	Verified bool   `json:"verified"`
	Issuer   string `json:"issuer"`
	Reason   string `json:"reason,omitempty"`
}

// VerificationEcho is the verification outcome stored alongside a record.
type VerificationEcho struct {
	Verified bool   `json:"verified"`
	Issuer   string `json:"issuer"`
}

// Metadata is stored next to each credential.
type Metadata struct {
	CreatedAt         time.Time         `json:"createdAt" bson:"createdAt"`
	Status            string            `json:"status" bson:"status"`
	IssuerDID         string            `json:"issuerDid" bson:"issuerDid"`
	TouristDID        string            `json:"touristDid" bson:"touristDid"`
	IssuerIdentifier  *idmodels.DID     `json:"issuerIdentifier,omitempty" bson:"issuerIdentifier,omitempty"`
	TouristIdentifier *idmodels.DID     `json:"touristIdentifier,omitempty" bson:"touristIdentifier,omitempty"`
	Verification      *VerificationEcho `json:"verification,omitempty" bson:"verification,omitempty"`
	Framework         string            `json:"framework" bson:"framework"`
}

// IsActive reports whether the record may still be presented.
func (m Metadata) IsActive() bool {
	return m.Status == StatusActive
}

// StoredCredentialRecord is a persisted credential.
type StoredCredentialRecord struct {
	ID         string               `json:"id"`
	UserID     string               `json:"userId"`
	Credential VerifiableCredential `json:"credential"`
	Metadata   Metadata             `json:"metadata"`
}

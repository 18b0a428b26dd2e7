package models

import (
	"time"

	"touristid/internal/artifact"
	credmodels "touristid/internal/credential/models"
	idmodels "touristid/internal/identity/models"
)

// State is a step of the issuance pipeline.
type State string

const (
	StateStarted                State = "started"
	StateIssuerIdentityCreated  State = "issuer_identity_created"
	StateSubjectIdentityCreated State = "subject_identity_created"
	StateCredentialSigned       State = "credential_signed"
	StateCredentialVerified     State = "credential_verified"
	StateCredentialPersisted    State = "credential_persisted"
	StateTokenMinted            State = "token_minted"
	StateArtifactGenerated      State = "artifact_generated"
	StateDocumentRendered       State = "document_rendered"
	StateCompleted              State = "completed"
	StateFailed                 State = "failed"
)

// Step names reported when a stage fails. They name the work being attempted,
// not the state that was reached.
const (
	StepValidation       = "validation"
	StepIssuerIdentity   = "issuer_identity"
	StepSubjectIdentity  = "subject_identity"
	StepSign             = "sign_credential"
	StepVerify           = "verify_credential"
	StepPersist          = "persist_credential"
	StepMintToken        = "mint_token"
	StepGenerateArtifact = "generate_artifact"
	StepRenderDocument   = "render_document"
	StepTracker          = "tracker"
)

// Required claim field names, in the order they are reported.
var RequiredFields = []string{"fullName", "nationality", "emergencyContact"}

// StepRecord is one transition in an issuance history.
type StepRecord struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// Issuance tracks the progress of one issuance request.
type Issuance struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	RecordID   string       `json:"vcId,omitempty"`
	State      State        `json:"state"`
	FailedStep string       `json:"failedStep,omitempty"`
	Error      string       `json:"error,omitempty"`
	Steps      []StepRecord `json:"steps"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Advance appends a transition.
func (i *Issuance) Advance(state State, at time.Time) {
	i.State = state
	i.UpdatedAt = at
	i.Steps = append(i.Steps, StepRecord{State: state, At: at})
}

// Fail marks the issuance failed at step.
func (i *Issuance) Fail(step string, cause error, at time.Time) {
	i.FailedStep = step
	if cause != nil {
		i.Error = cause.Error()
	}
	i.Advance(StateFailed, at)
}

// Persisted reports whether the credential reached storage.
func (i *Issuance) Persisted() bool {
	return i.RecordID != ""
}

// Options tune the verification artifact.
type Options struct {
	QRType  string
	BaseURL string
}

// IssueCommand is the input of one issuance.
type IssueCommand struct {
	Claims  credmodels.TouristClaims
	UserID  string
	Options Options
}

// IssueResult is everything produced by a completed issuance.
type IssueResult struct {
	IssuanceID   string
	UserID       string
	RecordID     string
	Credential   *credmodels.VerifiableCredential
	IssuerDID    *idmodels.DID
	SubjectDID   *idmodels.DID
	Verification *credmodels.VerificationResult
	Artifact     *artifact.Artifact
	Document     []byte
	AccessToken  string
	VerifyURL    string
	Metadata     credmodels.Metadata
	IssuedAt     time.Time
}

// TokenVerification is the outcome of verifying an access token link.
type TokenVerification struct {
	Verified   bool
	RecordID   string
	UserID     string
	Credential credmodels.VerifiableCredential
	Metadata   credmodels.Metadata
	VerifiedAt time.Time
}

// RecordVerification is the outcome of a direct credential submission.
type RecordVerification struct {
	Verified        bool
	RecordID        string
	UserID          string
	CredentialMatch bool
	Status          string
	IssuedAt        time.Time
	VerifiedAt      time.Time
}

// Capabilities reported by the probe.
type Capabilities struct {
	DIDGeneration          bool `json:"didGeneration"`
	DIDResolution          bool `json:"didResolution"`
	CredentialIssuance     bool `json:"credentialIssuance"`
	CredentialVerification bool `json:"credentialVerification"`
}

// ProbeTestResults describes the throwaway identity created by the probe.
type ProbeTestResults struct {
	DID      string   `json:"did"`
	Resolved bool     `json:"resolved"`
	KeyCount int      `json:"keyCount"`
	KeyTypes []string `json:"keyTypes"`
	// QRRoundTrip is true when a probe URL survives QR encode and decode.
	QRRoundTrip bool `json:"qrRoundTrip"`
}

// ProbeResult is the outcome of a capability probe.
type ProbeResult struct {
	Capabilities Capabilities
	TestResults  ProbeTestResults
	CheckedAt    time.Time
}

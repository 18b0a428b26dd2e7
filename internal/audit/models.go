package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	UserID     string    `json:"user_id"`
	Subject    string    `json:"subject,omitempty"`
	IssuanceID string    `json:"issuance_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Decision   string    `json:"decision,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

type AuditEvent string

const (
	EventCredentialIssued   AuditEvent = "vc_issued"
	EventCredentialVerified AuditEvent = "vc_verified"
	EventVerificationFailed AuditEvent = "vc_verification_failed"
	EventDocumentRendered   AuditEvent = "vc_document_rendered"
)

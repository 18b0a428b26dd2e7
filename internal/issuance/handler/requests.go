package handler

import (
	"encoding/json"
	"strings"

	credmodels "touristid/internal/credential/models"
	"touristid/internal/issuance/models"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/validation"
)

// IssueOptions tune the verification QR code.
type IssueOptions struct {
	QRType  string `json:"qrType" validate:"omitempty,oneof=presentation verification"`
	BaseURL string `json:"baseUrl" validate:"omitempty,http_url,max=2048"`
}

// IssueRequest is the body of POST /api/issue-vc.
type IssueRequest struct {
	FullName         string         `json:"fullName" validate:"max=200"`
	Nationality      string         `json:"nationality" validate:"max=200"`
	EmergencyContact string         `json:"emergencyContact" validate:"max=200"`
	UserID           string         `json:"userId" validate:"omitempty,max=128"`
	Extensions       map[string]any `json:"extensions,omitempty"`
	Options          *IssueOptions  `json:"options,omitempty"`
}

// Sanitize trims surrounding whitespace from free-text fields.
func (r *IssueRequest) Sanitize() {
	if r == nil {
		return
	}
	r.FullName = strings.TrimSpace(r.FullName)
	r.Nationality = strings.TrimSpace(r.Nationality)
	r.EmergencyContact = strings.TrimSpace(r.EmergencyContact)
	r.UserID = strings.TrimSpace(r.UserID)
	if r.Options != nil {
		r.Options.QRType = strings.TrimSpace(r.Options.QRType)
		r.Options.BaseURL = strings.TrimSpace(r.Options.BaseURL)
	}
}

// Validate reports all three required fields whenever any is missing, then
// applies length and format rules.
func (r *IssueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.FullName == "" || r.Nationality == "" || r.EmergencyContact == "" {
		return dErrors.NewWithDetails(dErrors.CodeValidation, "Missing required fields", map[string]any{
			"required": append([]string(nil), models.RequiredFields...),
		})
	}
	return validation.Validate(r)
}

// ToCommand converts the request into a pipeline command.
func (r *IssueRequest) ToCommand() models.IssueCommand {
	cmd := models.IssueCommand{
		Claims: credmodels.TouristClaims{
			FullName:         r.FullName,
			Nationality:      r.Nationality,
			EmergencyContact: r.EmergencyContact,
			Extensions:       r.Extensions,
		},
		UserID: r.UserID,
	}
	if r.Options != nil {
		cmd.Options = models.Options{QRType: r.Options.QRType, BaseURL: r.Options.BaseURL}
	}
	return cmd
}

// VerifyRequest is the body of POST /api/vc/verify.
type VerifyRequest struct {
	VCID       string          `json:"vcId" validate:"max=64,excludes=/"`
	UserID     string          `json:"userId" validate:"max=128"`
	Credential json.RawMessage `json:"credential,omitempty"`
}

func (r *VerifyRequest) Sanitize() {
	if r == nil {
		return
	}
	r.VCID = strings.TrimSpace(r.VCID)
	r.UserID = strings.TrimSpace(r.UserID)
}

func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.VCID == "" || r.UserID == "" {
		return dErrors.NewWithDetails(dErrors.CodeBadRequest, "Missing vcId or userId", map[string]any{
			"required": []string{"vcId", "userId"},
		})
	}
	return validation.Validate(r)
}

// DocumentQuery holds the query parameters of the PDF download.
type DocumentQuery struct {
	QRType  string `json:"qrType" validate:"omitempty,oneof=presentation verification"`
	BaseURL string `json:"baseUrl" validate:"omitempty,http_url,max=2048"`
}

func (q *DocumentQuery) Validate() error {
	return validation.Validate(q)
}

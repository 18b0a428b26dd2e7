package handler

import (
	"time"

	credmodels "touristid/internal/credential/models"
	"touristid/internal/document"
	"touristid/internal/issuance/models"
)

const (
	issueSuccessMessage = "Verifiable Credential issued and processed successfully"
	probeStatusRunning  = "Tourist credential issuer is running"
	probeStatusError    = "error"
)

// IssueResponse is returned by POST /api/issue-vc.
type IssueResponse struct {
	Success      bool                             `json:"success"`
	Message      string                           `json:"message"`
	IssuanceID   string                           `json:"issuanceId"`
	UserID       string                           `json:"userId"`
	VCID         string                           `json:"vcId"`
	Credential   *credmodels.VerifiableCredential `json:"credential"`
	IssuerDID    string                           `json:"issuerDid"`
	TouristDID   string                           `json:"touristDid"`
	Storage      StorageInfo                      `json:"storage"`
	QRCode       QRCodeInfo                       `json:"qrCode"`
	PDF          PDFInfo                          `json:"pdf"`
	AccessToken  string                           `json:"accessToken"`
	Verification VerificationInfo                 `json:"verification"`
	Metadata     credmodels.Metadata              `json:"metadata"`
	IssuedAt     time.Time                        `json:"issuedAt"`
}

type StorageInfo struct {
	Saved bool   `json:"saved"`
	VCID  string `json:"vcId"`
}

// QRCodeInfo carries the QR image as a data URL and the URL it encodes.
type QRCodeInfo struct {
	DataURL string `json:"dataURL"`
	Data    string `json:"data"`
	Type    string `json:"type"`
}

type PDFInfo struct {
	Size        int    `json:"size"`
	MimeType    string `json:"mimeType"`
	DownloadURL string `json:"downloadUrl"`
}

type VerificationInfo struct {
	Verified  bool   `json:"verified"`
	Issuer    string `json:"issuer"`
	VerifyURL string `json:"verifyUrl"`
}

func toIssueResponse(result *models.IssueResult) *IssueResponse {
	resp := &IssueResponse{
		Success:    true,
		Message:    issueSuccessMessage,
		IssuanceID: result.IssuanceID,
		UserID:     result.UserID,
		VCID:       result.RecordID,
		Credential: result.Credential,
		Storage:    StorageInfo{Saved: result.RecordID != "", VCID: result.RecordID},
		PDF: PDFInfo{
			Size:        len(result.Document),
			MimeType:    document.MimeType,
			DownloadURL: documentPath(result.UserID, result.RecordID),
		},
		AccessToken: result.AccessToken,
		Verification: VerificationInfo{
			VerifyURL: verifyPath + "?token=" + result.AccessToken,
		},
		Metadata: result.Metadata,
		IssuedAt: result.IssuedAt,
	}
	if result.IssuerDID != nil {
		resp.IssuerDID = result.IssuerDID.ID
	}
	if result.SubjectDID != nil {
		resp.TouristDID = result.SubjectDID.ID
	}
	if result.Artifact != nil {
		resp.QRCode = QRCodeInfo{
			DataURL: result.Artifact.DataURI,
			Data:    result.Artifact.PlaintextURL,
			Type:    result.Artifact.Kind,
		}
	}
	if result.Verification != nil {
		resp.Verification.Verified = result.Verification.Verified
		resp.Verification.Issuer = result.Verification.Issuer
	}
	return resp
}

// TokenVerifyResponse is returned by GET /api/vc/verify.
type TokenVerifyResponse struct {
	Success    bool                            `json:"success"`
	Verified   bool                            `json:"verified"`
	VCID       string                          `json:"vcId"`
	UserID     string                          `json:"userId"`
	Credential credmodels.VerifiableCredential `json:"credential"`
	Metadata   credmodels.Metadata             `json:"metadata"`
	VerifiedAt time.Time                       `json:"verifiedAt"`
}

func toTokenVerifyResponse(v *models.TokenVerification) *TokenVerifyResponse {
	return &TokenVerifyResponse{
		Success:    true,
		Verified:   v.Verified,
		VCID:       v.RecordID,
		UserID:     v.UserID,
		Credential: v.Credential,
		Metadata:   v.Metadata,
		VerifiedAt: v.VerifiedAt,
	}
}

// RecordVerifyResponse is returned by POST /api/vc/verify.
type RecordVerifyResponse struct {
	Success         bool      `json:"success"`
	Verified        bool      `json:"verified"`
	VCID            string    `json:"vcId"`
	UserID          string    `json:"userId"`
	CredentialMatch bool      `json:"credentialMatch"`
	Status          string    `json:"status"`
	IssuedAt        time.Time `json:"issuedAt"`
	VerifiedAt      time.Time `json:"verifiedAt"`
}

func toRecordVerifyResponse(v *models.RecordVerification) *RecordVerifyResponse {
	return &RecordVerifyResponse{
		Success:         true,
		Verified:        v.Verified,
		VCID:            v.RecordID,
		UserID:          v.UserID,
		CredentialMatch: v.CredentialMatch,
		Status:          v.Status,
		IssuedAt:        v.IssuedAt,
		VerifiedAt:      v.VerifiedAt,
	}
}

// ProbeResponse is returned by GET /api/issue-vc.
type ProbeResponse struct {
	Status         string                   `json:"status"`
	Capabilities   models.Capabilities      `json:"capabilities"`
	TestResults    *models.ProbeTestResults `json:"testResults,omitempty"`
	RequiredFields []string                 `json:"requiredFields"`
	Error          string                   `json:"error,omitempty"`
	Timestamp      time.Time                `json:"timestamp"`
}

// IssuanceResponse is returned by GET /api/issuances/{id}.
type IssuanceResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	VCID       string              `json:"vcId,omitempty"`
	State      models.State        `json:"state"`
	FailedStep string              `json:"failedStep,omitempty"`
	Error      string              `json:"error,omitempty"`
	Steps      []models.StepRecord `json:"steps"`
}

func toIssuanceResponse(i *models.Issuance) *IssuanceResponse {
	return &IssuanceResponse{
		ID:         i.ID,
		UserID:     i.UserID,
		VCID:       i.RecordID,
		State:      i.State,
		FailedStep: i.FailedStep,
		Error:      i.Error,
		Steps:      i.Steps,
	}
}

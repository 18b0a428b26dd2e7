package service

import (
	"bytes"
	"context"
	"encoding/json"

	"touristid/internal/audit"
	credmodels "touristid/internal/credential/models"
	"touristid/internal/issuance/metrics"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/tracer"
	jwttoken "touristid/internal/jwt_token"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/requestcontext"
)

// Audit reasons for failed verifications.
const (
	reasonInvalidToken       = "invalid_token"
	reasonCredentialMismatch = "credential_mismatch"
	reasonInactive           = "status_not_active"
)

// VerifyByToken validates an access token and loads the credential it points to.
// Token failure causes are logged and counted but never returned to the caller.
func (s *Service) VerifyByToken(ctx context.Context, token string) (result *models.TokenVerification, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerifyToken)
	defer func() { span.End(err) }()

	if token == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing token parameter")
	}

	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		reason := jwttoken.FailureReason(err)
		s.incrementTokenRejection(reason)
		s.incrementVerification(metrics.MethodToken, metrics.OutcomeInvalid)
		s.logger.WarnContext(ctx, "access token rejected",
			"reason", reason,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.emitAudit(ctx, span, audit.Event{
			Action:    string(audit.EventVerificationFailed),
			RequestID: requestcontext.RequestID(ctx),
			Decision:  "rejected",
			Reason:    reasonInvalidToken,
		})
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrUserID, claims.UserID),
		tracer.String(tracer.AttrRecordID, claims.VCID),
	)

	record, err := s.credentials.Get(ctx, claims.UserID, claims.VCID)
	if err != nil {
		s.incrementVerification(metrics.MethodToken, metrics.OutcomeFailure)
		return nil, translateLookupError(err, "Verifiable Credential not found", "failed to load credential")
	}

	s.incrementVerification(metrics.MethodToken, metrics.OutcomeSuccess)
	span.SetAttributes(tracer.Bool(tracer.AttrVerified, true))
	s.emitAudit(ctx, span, audit.Event{
		Action:    string(audit.EventCredentialVerified),
		UserID:    record.UserID,
		Subject:   record.ID,
		RequestID: requestcontext.RequestID(ctx),
		Decision:  "verified",
		Reason:    "token",
	})

	return &models.TokenVerification{
		Verified:   true,
		RecordID:   record.ID,
		UserID:     record.UserID,
		Credential: record.Credential,
		Metadata:   record.Metadata,
		VerifiedAt: requestcontext.Now(ctx),
	}, nil
}

// VerifyByRecord checks a stored credential by id. When a credential is
// presented it must match the stored one exactly (canonical JSON). A mismatch
// or a non-active status yields Verified=false, not an error.
func (s *Service) VerifyByRecord(ctx context.Context, userID, recordID string, presented json.RawMessage) (result *models.RecordVerification, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanVerifyRecord,
		tracer.String(tracer.AttrUserID, userID),
		tracer.String(tracer.AttrRecordID, recordID),
	)
	defer func() { span.End(err) }()

	if userID == "" || recordID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Missing vcId or userId")
	}

	record, err := s.credentials.Get(ctx, userID, recordID)
	if err != nil {
		s.incrementVerification(metrics.MethodRecord, metrics.OutcomeFailure)
		return nil, translateLookupError(err, "Verifiable Credential not found", "failed to load credential")
	}

	match := !isPresented(presented) || credmodels.CanonicalEqual(presented, record.Credential)
	active := record.Metadata.IsActive()
	verified := match && active

	event := audit.Event{
		Action:    string(audit.EventCredentialVerified),
		UserID:    userID,
		Subject:   recordID,
		RequestID: requestcontext.RequestID(ctx),
		Decision:  "verified",
		Reason:    "record",
	}
	outcome := metrics.OutcomeSuccess
	if !verified {
		outcome = metrics.OutcomeInvalid
		event.Action = string(audit.EventVerificationFailed)
		event.Decision = "rejected"
		event.Reason = reasonInactive
		if !match {
			event.Reason = reasonCredentialMismatch
		}
	}
	s.incrementVerification(metrics.MethodRecord, outcome)
	span.SetAttributes(tracer.Bool(tracer.AttrVerified, verified))
	s.emitAudit(ctx, span, event)

	return &models.RecordVerification{
		Verified:        verified,
		RecordID:        recordID,
		UserID:          userID,
		CredentialMatch: match,
		Status:          record.Metadata.Status,
		IssuedAt:        record.Metadata.CreatedAt,
		VerifiedAt:      requestcontext.Now(ctx),
	}, nil
}

func isPresented(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

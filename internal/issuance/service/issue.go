package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"touristid/internal/artifact"
	"touristid/internal/audit"
	credmodels "touristid/internal/credential/models"
	idmodels "touristid/internal/identity/models"
	"touristid/internal/issuance/metrics"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/tracer"
	"touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/requestcontext"
)

// IssueAndProcess runs the full pipeline for one tourist. Claims are
// validated before any side effect. A failure aborts the remaining steps and
// is returned as a domain error carrying the failed step in its details.
func (s *Service) IssueAndProcess(ctx context.Context, cmd models.IssueCommand) (result *models.IssueResult, err error) {
	start := time.Now()
	defer s.observeIssuanceLatency(start)

	if err := validateClaims(cmd.Claims); err != nil {
		s.incrementIssuance(metrics.OutcomeInvalid)
		return nil, err
	}

	// One instant for ids, timestamps, token iat and audit events.
	now := requestcontext.Now(ctx).UTC()
	ctx = requestcontext.WithTime(ctx, now)

	userID := cmd.UserID
	if userID == "" {
		if userID, err = domain.NewUserID(now); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate user id")
		}
	}

	run := &models.Issuance{
		ID:        domain.NewIssuanceID(now),
		UserID:    userID,
		CreatedAt: now,
	}
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue,
		tracer.String(tracer.AttrIssuanceID, run.ID),
		tracer.String(tracer.AttrUserID, userID),
	)
	defer func() { span.End(err) }()
	p := &pipeline{svc: s, run: run, span: span}
	p.advance(ctx, models.StateStarted)

	defer func() {
		if err != nil {
			s.incrementIssuance(metrics.OutcomeFailure)
			return
		}
		s.incrementIssuance(metrics.OutcomeSuccess)
	}()

	issuer, err := runStep(ctx, p, models.StepIssuerIdentity, models.StateIssuerIdentityCreated, s.identities.CreateIdentity)
	if err != nil {
		return nil, err
	}
	subject, err := runStep(ctx, p, models.StepSubjectIdentity, models.StateSubjectIdentityCreated, s.identities.CreateIdentity)
	if err != nil {
		return nil, err
	}

	claims := cmd.Claims
	claims.IssuedAt = now
	vc, err := runStep(ctx, p, models.StepSign, models.StateCredentialSigned, func(ctx context.Context) (*credmodels.VerifiableCredential, error) {
		return s.issuer.Issue(ctx, issuer.ID, subject.ID, claims)
	})
	if err != nil {
		return nil, err
	}

	verification := &credmodels.VerificationResult{Issuer: issuer.ID}
	if s.selfVerify {
		verification, err = runStep(ctx, p, models.StepVerify, models.StateCredentialVerified, func(ctx context.Context) (*credmodels.VerificationResult, error) {
			return s.issuer.Verify(ctx, vc)
		})
		if err != nil {
			return nil, err
		}
		if !verification.Verified {
			s.logger.WarnContext(ctx, "issued credential failed self-verification",
				"issuance_id", run.ID,
				"reason", verification.Reason,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}

	metadata := buildMetadata(issuer, subject, verification)
	recordID, err := runStep(ctx, p, models.StepPersist, models.StateCredentialPersisted, func(ctx context.Context) (string, error) {
		id, err := s.credentials.Save(ctx, userID, vc, metadata)
		if err == nil {
			run.RecordID = id
		}
		return id, err
	})
	if err != nil {
		return nil, err
	}
	metadata.CreatedAt = now
	metadata.Status = credmodels.StatusActive
	span.SetAttributes(tracer.String(tracer.AttrRecordID, recordID))

	token, err := runStep(ctx, p, models.StepMintToken, models.StateTokenMinted, func(ctx context.Context) (string, error) {
		return s.tokens.Mint(ctx, userID, recordID, s.tokenTTL)
	})
	if err != nil {
		return nil, err
	}

	art, err := runStep(ctx, p, models.StepGenerateArtifact, models.StateArtifactGenerated, func(context.Context) (*artifact.Artifact, error) {
		return s.artifacts.ForToken(token, cmd.Options.BaseURL, cmd.Options.QRType)
	})
	if err != nil {
		return nil, err
	}

	record := &credmodels.StoredCredentialRecord{ID: recordID, UserID: userID, Credential: *vc, Metadata: metadata}
	pdf, err := runStep(ctx, p, models.StepRenderDocument, models.StateDocumentRendered, func(ctx context.Context) ([]byte, error) {
		return s.documents.Render(ctx, record, art.ImageData)
	})
	if err != nil {
		return nil, err
	}
	s.observeDocument(len(pdf))
	span.SetAttributes(tracer.Int64(tracer.AttrPDFBytes, int64(len(pdf))))

	p.advance(ctx, models.StateCompleted)
	s.emitAudit(ctx, span, audit.Event{
		Action:     string(audit.EventCredentialIssued),
		UserID:     userID,
		Subject:    recordID,
		IssuanceID: run.ID,
		RequestID:  requestcontext.RequestID(ctx),
		Decision:   "issued",
	})
	s.logger.InfoContext(ctx, "credential issued",
		"issuance_id", run.ID,
		"user_id", userID,
		"vc_id", recordID,
		"verified", verification.Verified,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &models.IssueResult{
		IssuanceID:   run.ID,
		UserID:       userID,
		RecordID:     recordID,
		Credential:   vc,
		IssuerDID:    issuer,
		SubjectDID:   subject,
		Verification: verification,
		Artifact:     art,
		Document:     pdf,
		AccessToken:  token,
		VerifyURL:    art.PlaintextURL,
		Metadata:     metadata,
		IssuedAt:     now,
	}, nil
}

// GetIssuance returns the tracked progress of one issuance.
func (s *Service) GetIssuance(ctx context.Context, id string) (*models.Issuance, error) {
	issuance, err := s.issuances.Get(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "issuance not found", "failed to load issuance")
	}
	return issuance, nil
}

// pipeline tracks one issuance run as it moves through its states.
type pipeline struct {
	svc  *Service
	run  *models.Issuance
	span tracer.Span
}

func (p *pipeline) advance(ctx context.Context, state models.State) {
	now := requestcontext.Now(ctx)
	p.run.Advance(state, now)
	p.span.AddEvent(tracer.EventStateChanged, tracer.String("state", string(state)))
	p.save(ctx)
}

func (p *pipeline) fail(ctx context.Context, step string, cause error) error {
	err := stepError(step, p.run.ID, cause)
	// the tracker is client visible, so it keeps the public message only
	p.run.Fail(step, err, requestcontext.Now(ctx))
	p.span.AddEvent(tracer.EventStateChanged,
		tracer.String("state", string(models.StateFailed)),
		tracer.String(tracer.AttrStep, step),
	)
	p.save(ctx)
	p.svc.incrementStepFailure(step)
	p.svc.logger.ErrorContext(ctx, "issuance step failed",
		"issuance_id", p.run.ID,
		"user_id", p.run.UserID,
		"vc_id", p.run.RecordID,
		"step", step,
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
	return err
}

// save records progress. Tracker outages never fail an issuance.
func (p *pipeline) save(ctx context.Context) {
	if err := p.svc.issuances.Save(ctx, p.run); err != nil {
		p.svc.logger.WarnContext(ctx, "failed to record issuance progress",
			"issuance_id", p.run.ID,
			"state", p.run.State,
			"error", err,
		)
	}
}

func runStep[T any](ctx context.Context, p *pipeline, step string, next models.State, fn func(context.Context) (T, error)) (T, error) {
	stepCtx, span := p.svc.tracer.Start(ctx, tracer.SpanStep,
		tracer.String(tracer.AttrStep, step),
		tracer.String(tracer.AttrIssuanceID, p.run.ID),
	)
	out, err := fn(stepCtx)
	span.End(err)
	if err != nil {
		var zero T
		return zero, p.fail(ctx, step, err)
	}
	p.advance(ctx, next)
	return out, nil
}

// stepError keeps the cause's code and message and adds the failed step and
// issuance id so callers can look up the run. Non-domain causes become
// internal errors without exposing their text.
func stepError(step, issuanceID string, cause error) error {
	details := map[string]any{"step": step, "issuanceId": issuanceID}
	var domainErr *dErrors.Error
	if !errors.As(cause, &domainErr) {
		return &dErrors.Error{
			Code:    dErrors.CodeInternal,
			Message: "issuance failed at step " + step,
			Err:     cause,
			Details: details,
		}
	}
	for k, v := range domainErr.Details {
		if _, ok := details[k]; !ok {
			details[k] = v
		}
	}
	return &dErrors.Error{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     cause,
		Details: details,
	}
}

func validateClaims(claims credmodels.TouristClaims) error {
	if strings.TrimSpace(claims.FullName) != "" &&
		strings.TrimSpace(claims.Nationality) != "" &&
		strings.TrimSpace(claims.EmergencyContact) != "" {
		return nil
	}
	return dErrors.NewWithDetails(dErrors.CodeValidation, "Missing required fields", map[string]any{
		"required": append([]string(nil), models.RequiredFields...),
	})
}

func buildMetadata(issuer, subject *idmodels.DID, verification *credmodels.VerificationResult) credmodels.Metadata {
	return credmodels.Metadata{
		IssuerDID:         issuer.ID,
		TouristDID:        subject.ID,
		IssuerIdentifier:  issuer,
		TouristIdentifier: subject,
		Verification: &credmodels.VerificationEcho{
			Verified: verification.Verified,
			Issuer:   verification.Issuer,
		},
		Framework: credmodels.Framework,
	}
}

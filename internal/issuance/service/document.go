package service

import (
	"context"

	"touristid/internal/audit"
	"touristid/internal/issuance/models"
	"touristid/internal/issuance/tracer"
	"touristid/pkg/requestcontext"
)

// RenderDocument re-renders the PDF for a stored credential with a freshly
// minted access token. It backs the download endpoint and lets a caller
// recover from an issuance that stopped after persisting.
func (s *Service) RenderDocument(ctx context.Context, userID, recordID string, opts models.Options) (pdf []byte, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRenderDocument,
		tracer.String(tracer.AttrUserID, userID),
		tracer.String(tracer.AttrRecordID, recordID),
		tracer.String(tracer.AttrQRType, opts.QRType),
	)
	defer func() { span.End(err) }()

	record, err := s.credentials.Get(ctx, userID, recordID)
	if err != nil {
		return nil, translateLookupError(err, "VC not found", "failed to load credential")
	}

	art, err := s.artifacts.Generate(ctx, recordID, userID, opts.BaseURL, opts.QRType)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to generate verification artifact",
			"user_id", userID,
			"vc_id", recordID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	pdf, err = s.documents.Render(ctx, record, art.ImageData)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render credential document",
			"user_id", userID,
			"vc_id", recordID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	s.observeDocument(len(pdf))
	span.SetAttributes(tracer.Int64(tracer.AttrPDFBytes, int64(len(pdf))))
	s.emitAudit(ctx, span, audit.Event{
		Action:    string(audit.EventDocumentRendered),
		UserID:    userID,
		Subject:   recordID,
		RequestID: requestcontext.RequestID(ctx),
	})
	return pdf, nil
}

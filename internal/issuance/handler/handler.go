package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"touristid/internal/document"
	"touristid/internal/issuance/models"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/httputil"
	"touristid/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks Service

const (
	issuePath     = "/api/issue-vc"
	verifyPath    = "/api/vc/verify"
	verifyAlias   = "/verify"
	documentRoute = "/api/vc/{userId}/{vcId}/pdf"
	issuanceRoute = "/api/issuances/{id}"
)

// Service defines the issuance operations exposed over HTTP.
type Service interface {
	IssueAndProcess(ctx context.Context, cmd models.IssueCommand) (*models.IssueResult, error)
	VerifyByToken(ctx context.Context, token string) (*models.TokenVerification, error)
	VerifyByRecord(ctx context.Context, userID, recordID string, presented json.RawMessage) (*models.RecordVerification, error)
	RenderDocument(ctx context.Context, userID, recordID string, opts models.Options) ([]byte, error)
	Probe(ctx context.Context) (*models.ProbeResult, error)
	GetIssuance(ctx context.Context, id string) (*models.Issuance, error)
}

// Handler serves the credential issuance and verification endpoints.
type Handler struct {
	svc             Service
	logger          *slog.Logger
	issueMiddleware []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithIssueMiddleware wraps only the issuance endpoint, e.g. with a rate limiter.
func WithIssueMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.issueMiddleware = append(h.issueMiddleware, mw...)
	}
}

func New(svc Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Register registers the issuance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.issueMiddleware...).Post(issuePath, h.handleIssue)
	r.Get(issuePath, h.handleProbe)
	r.Get(documentRoute, h.handleDocument)
	r.Get(verifyPath, h.handleVerifyToken)
	r.Get(verifyAlias, h.handleVerifyToken)
	r.Post(verifyPath, h.handleVerifyRecord)
	r.Get(issuanceRoute, h.handleGetIssuance)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.svc.IssueAndProcess(ctx, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue credential",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toIssueResponse(result))
}

func (h *Handler) handleProbe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.svc.Probe(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "capability probe failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, ProbeResponse{
			Status:         probeStatusError,
			RequiredFields: models.RequiredFields,
			Error:          "capability probe failed",
			Timestamp:      requestcontext.Now(ctx),
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ProbeResponse{
		Status:         probeStatusRunning,
		Capabilities:   result.Capabilities,
		TestResults:    &result.TestResults,
		RequiredFields: models.RequiredFields,
		Timestamp:      result.CheckedAt,
	})
}

func (h *Handler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := chi.URLParam(r, "userId")
	recordID := chi.URLParam(r, "vcId")

	query := &DocumentQuery{
		QRType:  r.URL.Query().Get("qrType"),
		BaseURL: r.URL.Query().Get("baseUrl"),
	}
	if err := query.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	pdf, err := h.svc.RenderDocument(ctx, userID, recordID, models.Options{QRType: query.QRType, BaseURL: query.BaseURL})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render credential document",
			"request_id", requestID,
			"user_id", userID,
			"vc_id", recordID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", document.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="vc_%s.pdf"`, recordID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Missing token parameter"))
		return
	}

	result, err := h.svc.VerifyByToken(ctx, token)
	if err != nil {
		h.logger.WarnContext(ctx, "token verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toTokenVerifyResponse(result))
}

func (h *Handler) handleVerifyRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.svc.VerifyByRecord(ctx, req.UserID, req.VCID, req.Credential)
	if err != nil {
		h.logger.WarnContext(ctx, "record verification failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"vc_id", req.VCID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRecordVerifyResponse(result))
}

func (h *Handler) handleGetIssuance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	issuance, err := h.svc.GetIssuance(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toIssuanceResponse(issuance))
}

func documentPath(userID, recordID string) string {
	return fmt.Sprintf("/api/vc/%s/%s/pdf", url.PathEscape(userID), url.PathEscape(recordID))
}

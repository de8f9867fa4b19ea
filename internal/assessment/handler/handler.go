// Package handler exposes the assessment webhook. The endpoint is called by
// the external assessment provider, not by end users, so it authenticates
// with a shared-secret bearer token rather than a user session.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/assessment"
	"talentgate/internal/jwttoken"
	personmodels "talentgate/internal/person/models"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for recording assessment results.
type Service interface {
	RecordResult(ctx context.Context, email string, score float64) (*personmodels.Person, assessment.Verdict, error)
}

// TokenValidator verifies webhook bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// Handler wires the assessment webhook to the assessment service.
type Handler struct {
	service Service
	tokens  TokenValidator
	logger  *slog.Logger
}

// New constructs an assessment handler with its dependencies.
func New(service Service, tokens TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		logger:  logger,
	}
}

// Register mounts the webhook endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/webhooks/assessment", h.HandleRecordResult)
}

// HandleRecordResult handles POST /webhooks/assessment requests.
func (h *Handler) HandleRecordResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	if err := h.authenticate(r); err != nil {
		h.logger.WarnContext(ctx, "webhook authentication failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RecordResultRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	p, verdict, err := h.service.RecordResult(ctx, req.Email, *req.Score)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "failed to record assessment result",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assessment result accepted",
		"request_id", requestID,
		"person_id", p.ID,
		"verdict", verdict,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, RecordResultResponse{
		PersonID: p.ID.String(),
		Verdict:  verdict.String(),
	})
}

// RecordResultResponse is the HTTP response for POST /webhooks/assessment.
type RecordResultResponse struct {
	PersonID string `json:"person_id"`
	Verdict  string `json:"verdict"`
}

func (h *Handler) authenticate(r *http.Request) error {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "bearer token required")
	}
	if _, err := h.tokens.ValidateToken(token); err != nil {
		return err
	}
	return nil
}

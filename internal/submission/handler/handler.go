package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"talentgate/internal/submission/models"
	"talentgate/internal/submission/service"
	id "talentgate/pkg/domain"
	dErrors "talentgate/pkg/domain-errors"
	"talentgate/pkg/platform/httputil"
	"talentgate/pkg/requestcontext"
)

// Service defines the interface for submission operations.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.FormSubmission, error)
	Get(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error)
	List(ctx context.Context, status *models.Status) ([]*models.FormSubmission, error)
	Delete(ctx context.Context, subID id.SubmissionID) error
	Process(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error)
	Retry(ctx context.Context, subID id.SubmissionID) (*models.FormSubmission, error)
	ProcessAllPending(ctx context.Context) (service.BatchResult, error)
}

// Handler wires submission endpoints to the submission service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a submission handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts submission endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/forms/{formID}/submissions", h.HandleCreate)
	r.Post("/submissions/process-pending", h.HandleProcessPending)
	r.Get("/submissions", h.HandleList)
	r.Get("/submissions/{submissionID}", h.HandleGet)
	r.Delete("/submissions/{submissionID}", h.HandleDelete)
	r.Post("/submissions/{submissionID}/process", h.HandleProcess)
	r.Post("/submissions/{submissionID}/retry", h.HandleRetry)
}

// HandleCreate handles POST /forms/{formID}/submissions requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	formID, err := id.ParseFormID(chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateSubmissionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sub, err := h.service.Create(ctx, service.CreateInput{
		FormID: formID,
		Data:   req.Data,
		Files:  req.FileInputs(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "submission creation failed",
			"request_id", requestID,
			"form_id", formID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromSubmission(sub))
}

// HandleGet handles GET /submissions/{submissionID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := h.service.Get(r.Context(), subID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleList handles GET /submissions requests with an optional status filter.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var status *models.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		status = &parsed
	}

	subs, err := h.service.List(r.Context(), status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromSubmissions(subs))
}

// HandleDelete handles DELETE /submissions/{submissionID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), subID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleProcess handles POST /submissions/{submissionID}/process requests.
//
// A submission that fails processing is still a 200: the failure is recorded
// on the submission itself and surfaced in the response body. Errors are
// reserved for requests that could not run at all (unknown id, wrong state).
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	h.runProcessing(w, r, h.service.Process, "submission processing failed")
}

// HandleRetry handles POST /submissions/{submissionID}/retry requests.
func (h *Handler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	h.runProcessing(w, r, h.service.Retry, "submission retry failed")
}

func (h *Handler) runProcessing(w http.ResponseWriter, r *http.Request, run func(context.Context, id.SubmissionID) (*models.FormSubmission, error), failureMsg string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	subID, err := id.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub, err := run(ctx, subID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.logger.ErrorContext(ctx, failureMsg,
				"request_id", requestID,
				"submission_id", subID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "submission processing finished",
		"request_id", requestID,
		"submission_id", subID,
		"status", sub.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromSubmission(sub))
}

// HandleProcessPending handles POST /submissions/process-pending requests.
func (h *Handler) HandleProcessPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	result, err := h.service.ProcessAllPending(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "pending sweep failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "pending sweep finished",
		"request_id", requestID,
		"processed", result.Processed,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromBatchResult(result))
}

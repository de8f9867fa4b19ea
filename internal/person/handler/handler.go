package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	applicationmodels "talentgate/internal/application/models"
	"talentgate/internal/person/models"
	id "talentgate/pkg/domain"
	"talentgate/pkg/platform/httputil"
)

// PersonService defines the interface for person lookups.
type PersonService interface {
	Get(ctx context.Context, personID id.PersonID) (*models.Person, error)
}

// ApplicationService defines the interface for a person's applications.
type ApplicationService interface {
	ListByPerson(ctx context.Context, personID id.PersonID) ([]*applicationmodels.Application, error)
}

// Handler wires person endpoints to the person and application services.
type Handler struct {
	persons      PersonService
	applications ApplicationService
	logger       *slog.Logger
}

// New constructs a person handler with its dependencies.
func New(persons PersonService, applications ApplicationService, logger *slog.Logger) *Handler {
	return &Handler{
		persons:      persons,
		applications: applications,
		logger:       logger,
	}
}

// Register mounts person endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/persons/{personID}", h.HandleGet)
	r.Get("/persons/{personID}/applications", h.HandleListApplications)
}

// HandleGet handles GET /persons/{personID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	p, err := h.persons.Get(r.Context(), personID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPerson(p))
}

// HandleListApplications handles GET /persons/{personID}/applications.
// The person must exist; an unknown person is a 404, not an empty list.
func (h *Handler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := r.Context()
	if _, err := h.persons.Get(ctx, personID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	apps, err := h.applications.ListByPerson(ctx, personID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromApplications(apps))
}

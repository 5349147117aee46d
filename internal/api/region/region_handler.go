package region

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// ListRegions godoc
// @Summary      Provinces and metropolitan cities
// @Tags         Region
// @Produce      json
// @Success      200 {array} types.Region
// @Router       /regions [get]
func (h *HandlerImpl) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.ListRegions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list regions", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to list regions")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, regions)
}

// GetRegion godoc
// @Summary      Division with its children
// @Tags         Region
// @Produce      json
// @Param        code path string true "Administrative code"
// @Success      200 {object} types.Region
// @Failure      404 {object} api.Response
// @Router       /regions/{code} [get]
func (h *HandlerImpl) GetRegion(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.GetRegion(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		api.HandleServiceError(w, r, err, "Failed to retrieve region")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, reg)
}

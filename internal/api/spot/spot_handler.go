package spot

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// CreateSpot godoc
// @Summary      Create a spot
// @Description  Also used to save a recommendation as a spot.
// @Tags         Spot
// @Accept       json
// @Produce      json
// @Param        spot body types.CreateSpotParams true "Spot"
// @Success      201 {object} types.Spot
// @Failure      400 {object} api.Response
// @Security     BearerAuth
// @Router       /spots [post]
func (h *HandlerImpl) CreateSpot(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SpotHandler").Start(r.Context(), "CreateSpot", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/spots"),
	))
	defer span.End()

	var params types.CreateSpotParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}

	s, err := h.service.CreateSpot(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to create spot", slog.Any("error", err))
		span.RecordError(err)
		api.HandleServiceError(w, r, err, "Failed to create spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, s)
}

// ListSpots godoc
// @Summary      List spots
// @Tags         Spot
// @Produce      json
// @Param        type      query string false "accommodation, restaurant, cafe or site"
// @Param        q         query string false "Name contains"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} types.SpotList
// @Security     BearerAuth
// @Router       /spots [get]
func (h *HandlerImpl) ListSpots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.SpotFilter{
		Type:  types.SpotType(q.Get("type")),
		Query: q.Get("q"),
		Page:  api.PageFromQuery(r),
	}
	list, err := h.service.ListSpots(r.Context(), filter)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to list spots", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to list spots")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// GetSpot godoc
// @Summary      Get a spot
// @Tags         Spot
// @Produce      json
// @Param        spotID path string true "Spot ID"
// @Success      200 {object} types.Spot
// @Failure      404 {object} api.Response
// @Security     BearerAuth
// @Router       /spots/{spotID} [get]
func (h *HandlerImpl) GetSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := api.UUIDParam(r, "spotID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Spot not found")
		return
	}
	s, err := h.service.GetSpot(r.Context(), spotID)
	if err != nil {
		api.HandleServiceError(w, r, err, "Failed to retrieve spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, s)
}

// UpdateSpot godoc
// @Summary      Partially update a spot
// @Tags         Spot
// @Accept       json
// @Produce      json
// @Param        spotID path string true "Spot ID"
// @Param        spot body types.UpdateSpotParams true "Fields to change"
// @Success      200 {object} types.Spot
// @Security     BearerAuth
// @Router       /spots/{spotID} [put]
func (h *HandlerImpl) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := api.UUIDParam(r, "spotID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Spot not found")
		return
	}
	var params types.UpdateSpotParams
	if err = api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}
	s, err := h.service.UpdateSpot(r.Context(), spotID, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to update spot", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to update spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, s)
}

// DeleteSpot godoc
// @Summary      Delete a spot
// @Tags         Spot
// @Param        spotID path string true "Spot ID"
// @Success      204
// @Failure      409 {object} map[string]interface{} "Spot is on another member's plan"
// @Security     BearerAuth
// @Router       /spots/{spotID} [delete]
func (h *HandlerImpl) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	spotID, err := api.UUIDParam(r, "spotID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Spot not found")
		return
	}
	if err = h.service.DeleteSpot(r.Context(), memberID, spotID); err != nil {
		api.HandleServiceError(w, r, err, "Failed to delete spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ListTags godoc
// @Summary      List spot tags
// @Tags         Spot
// @Produce      json
// @Success      200 {array} types.SpotTag
// @Security     BearerAuth
// @Router       /spot-tags [get]
func (h *HandlerImpl) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list tags", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to list tags")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tags)
}

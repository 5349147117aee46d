package plan

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
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

// memberAndPlan resolves the caller and the {planID} param, writing the
// error response itself when either is missing.
func (h *HandlerImpl) memberAndPlan(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	memberID, ok := auth.MemberIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	planID, err := api.UUIDParam(r, "planID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
		return uuid.Nil, uuid.Nil, false
	}
	return memberID, planID, true
}

// CreatePlan godoc
// @Summary      Create a trip plan
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        plan body types.CreatePlanParams true "Plan"
// @Success      201 {object} types.Plan
// @Failure      400 {object} api.Response
// @Security     BearerAuth
// @Router       /plans [post]
func (h *HandlerImpl) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "CreatePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreatePlan"))

	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.CreatePlanParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}

	p, err := h.service.CreatePlan(ctx, memberID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to create plan", slog.Any("error", err))
		span.RecordError(err)
		api.HandleServiceError(w, r, err, "Failed to create plan")
		return
	}
	span.SetAttributes(attribute.String("plan.id", p.ID.String()))
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// ListPlans godoc
// @Summary      List the member's plans, newest first
// @Tags         Plan
// @Produce      json
// @Param        page      query int false "Page (default 1)"
// @Param        page_size query int false "Page size (default 10, max 100)"
// @Success      200 {object} types.PlanList
// @Security     BearerAuth
// @Router       /plans [get]
func (h *HandlerImpl) ListPlans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	list, err := h.service.ListPlans(ctx, memberID, api.PageFromQuery(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list plans", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to list plans")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// GetPlan godoc
// @Summary      Plan with its spots ordered by day and sequence
// @Tags         Plan
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      200 {object} types.Plan
// @Failure      404 {object} api.Response
// @Security     BearerAuth
// @Router       /plans/{planID} [get]
func (h *HandlerImpl) GetPlan(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetPlan(r.Context(), memberID, planID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to fetch plan", slog.String("planID", planID.String()), slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to retrieve plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// UpdatePlan godoc
// @Summary      Partially update a plan
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        plan body types.UpdatePlanParams true "Fields to change"
// @Success      200 {object} types.Plan
// @Security     BearerAuth
// @Router       /plans/{planID} [put]
func (h *HandlerImpl) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	var params types.UpdatePlanParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}
	p, err := h.service.UpdatePlan(r.Context(), memberID, planID, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to update plan", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to update plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// DeletePlan godoc
// @Summary      Delete a plan with its spots and checklist
// @Tags         Plan
// @Param        planID path string true "Plan ID"
// @Success      204
// @Security     BearerAuth
// @Router       /plans/{planID} [delete]
func (h *HandlerImpl) DeletePlan(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(r.Context(), memberID, planID); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to delete plan", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to delete plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AttachSpot godoc
// @Summary      Place a spot on a day of the plan
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        spot body types.AttachSpotParams true "Spot and day"
// @Success      201 {object} types.PlanSpot
// @Failure      409 {object} api.Response
// @Security     BearerAuth
// @Router       /plans/{planID}/spots [post]
func (h *HandlerImpl) AttachSpot(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	var params types.AttachSpotParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}
	ps, err := h.service.AttachSpot(r.Context(), memberID, planID, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to attach spot", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to attach spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, ps)
}

// DetachSpot godoc
// @Summary      Remove a spot from the plan
// @Tags         Plan
// @Param        planID     path string true "Plan ID"
// @Param        planSpotID path string true "Plan spot ID"
// @Success      204
// @Security     BearerAuth
// @Router       /plans/{planID}/spots/{planSpotID} [delete]
func (h *HandlerImpl) DetachSpot(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	planSpotID, err := api.UUIDParam(r, "planSpotID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Plan spot not found")
		return
	}
	if err = h.service.DetachSpot(r.Context(), memberID, planID, planSpotID); err != nil {
		api.HandleServiceError(w, r, err, "Failed to detach spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// TagPlanSpot godoc
// @Summary      Tag a plan spot, creating the tag when missing
// @Tags         Plan
// @Accept       json
// @Produce      json
// @Param        planID     path string true "Plan ID"
// @Param        planSpotID path string true "Plan spot ID"
// @Param        tag body types.TagPlanSpotParams true "Tag"
// @Success      201 {object} types.SpotTag
// @Security     BearerAuth
// @Router       /plans/{planID}/spots/{planSpotID}/tags [post]
func (h *HandlerImpl) TagPlanSpot(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.memberAndPlan(w, r)
	if !ok {
		return
	}
	planSpotID, err := api.UUIDParam(r, "planSpotID")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Plan spot not found")
		return
	}
	var params types.TagPlanSpotParams
	if err = api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}
	tag, err := h.service.TagPlanSpot(r.Context(), memberID, planID, planSpotID, params.Name)
	if err != nil {
		api.HandleServiceError(w, r, err, "Failed to tag plan spot")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, tag)
}

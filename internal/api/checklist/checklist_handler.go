package checklist

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

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

func (h *HandlerImpl) ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
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

// GetChecklist godoc
// @Summary      Get the plan's checklist
// @Tags         Checklist
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Success      200 {object} types.Checklist
// @Failure      404 {object} api.Response
// @Security     BearerAuth
// @Router       /plans/{planID}/checklist [get]
func (h *HandlerImpl) GetChecklist(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.ids(w, r)
	if !ok {
		return
	}
	c, err := h.service.GetChecklist(r.Context(), memberID, planID)
	if err != nil {
		api.HandleServiceError(w, r, err, "Failed to retrieve checklist")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// SaveChecklist godoc
// @Summary      Create or replace the plan's checklist
// @Tags         Checklist
// @Accept       json
// @Produce      json
// @Param        planID path string true "Plan ID"
// @Param        checklist body types.UpdateChecklistParams true "Items"
// @Success      200 {object} types.Checklist
// @Security     BearerAuth
// @Router       /plans/{planID}/checklist [put]
func (h *HandlerImpl) SaveChecklist(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.ids(w, r)
	if !ok {
		return
	}
	var params types.UpdateChecklistParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}
	c, err := h.service.SaveChecklist(r.Context(), memberID, planID, params)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to save checklist", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to save checklist")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// DeleteChecklist godoc
// @Summary      Delete the plan's checklist
// @Tags         Checklist
// @Param        planID path string true "Plan ID"
// @Success      204
// @Security     BearerAuth
// @Router       /plans/{planID}/checklist [delete]
func (h *HandlerImpl) DeleteChecklist(w http.ResponseWriter, r *http.Request) {
	memberID, planID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteChecklist(r.Context(), memberID, planID); err != nil {
		api.HandleServiceError(w, r, err, "Failed to delete checklist")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

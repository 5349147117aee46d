package member

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
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

// GetMe godoc
// @Summary      Current member
// @Tags         Member
// @Produce      json
// @Success      200 {object} types.Member
// @Failure      401 {object} api.Response
// @Security     BearerAuth
// @Router       /members/me [get]
func (h *HandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("MemberHandler").Start(r.Context(), "GetMe", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/members/me"),
	))
	defer span.End()

	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		span.SetStatus(codes.Error, "unauthenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	m, err := h.service.GetMe(ctx, memberID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch member", slog.Any("error", err))
		span.RecordError(err)
		api.HandleServiceError(w, r, err, "Failed to retrieve member")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// UpdateMe godoc
// @Summary      Update nickname or profile image
// @Tags         Member
// @Accept       json
// @Produce      json
// @Param        member body types.UpdateMemberParams true "Fields to change"
// @Success      200 {object} types.Member
// @Security     BearerAuth
// @Router       /members/me [put]
func (h *HandlerImpl) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateMe"))

	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpdateMemberParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}

	m, err := h.service.UpdateMe(ctx, memberID, params)
	if err != nil {
		l.WarnContext(ctx, "Failed to update member", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to update member")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, m)
}

// DeleteMe godoc
// @Summary      Delete the account and all its plans
// @Tags         Member
// @Success      204
// @Security     BearerAuth
// @Router       /members/me [delete]
func (h *HandlerImpl) DeleteMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID, ok := auth.MemberIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := h.service.DeleteMe(ctx, memberID); err != nil {
		h.logger.ErrorContext(ctx, "Failed to delete member", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to delete member")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

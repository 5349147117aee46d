package recommend

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

// Recommend godoc
// @Summary      Recommendations of one kind
// @Description  Runs the agent for kind (accommodation, restaurant, cafe or site). With plan_id the results are also saved to the plan.
// @Tags         Recommendation
// @Accept       json
// @Produce      json
// @Param        kind path string true "accommodation, restaurant, cafe or site"
// @Param        request body types.RecommendationRequest true "Trip details"
// @Success      200 {object} types.RecommendationResponse
// @Failure      400 {object} api.Response
// @Failure      404 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /recommendations/{kind} [post]
func (h *HandlerImpl) Recommend(w http.ResponseWriter, r *http.Request) {
	kind := types.SpotType(chi.URLParam(r, "kind"))
	ctx, span := otel.Tracer("RecommendHandler").Start(r.Context(), "Recommend", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations/{kind}"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Recommend"), slog.String("kind", string(kind)))

	if !kind.Valid() {
		span.SetStatus(codes.Error, "unknown kind")
		api.ErrorResponse(w, r, http.StatusNotFound, fmt.Sprintf("Unknown recommendation kind %q", kind))
		return
	}

	var req types.RecommendationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}

	resp, err := h.service.Recommend(ctx, kind, req)
	if err != nil {
		l.ErrorContext(ctx, "Recommendation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "service error")
		api.HandleServiceError(w, r, err, "Failed to build recommendations")
		return
	}

	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Schedule godoc
// @Summary      Full travel schedule
// @Description  Runs every agent concurrently. Sections whose agent failed are listed in errors.
// @Tags         Recommendation
// @Accept       json
// @Produce      json
// @Param        request body types.RecommendationRequest true "Trip details"
// @Success      200 {object} types.Schedule
// @Failure      400 {object} api.Response
// @Failure      500 {object} api.Response
// @Security     BearerAuth
// @Router       /recommendations/schedule [post]
func (h *HandlerImpl) Schedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendHandler").Start(r.Context(), "Schedule", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations/schedule"),
	))
	defer span.End()
	l := h.logger.With(slog.String("handler", "Schedule"))

	var req types.RecommendationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "bad request")
		api.ErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request format: %s", err.Error()))
		return
	}

	schedule, err := h.service.Schedule(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Schedule failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "service error")
		api.HandleServiceError(w, r, err, "Failed to build travel schedule")
		return
	}

	span.SetStatus(codes.Ok, "")
	api.WriteJSONResponse(w, r, http.StatusOK, schedule)
}

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type HandlerImpl struct {
	service     Service
	jwtCfg      config.JWTConfig
	frontendURL string
	logger      *slog.Logger
}

func NewHandlerImpl(service Service, jwtCfg config.JWTConfig, frontendURL string, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service:     service,
		jwtCfg:      jwtCfg,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login godoc
// @Summary      Start OAuth login
// @Tags         Auth
// @Param        provider path string true "google, kakao or naver"
// @Success      302
// @Failure      404 {object} api.Response "Unknown provider"
// @Router       /auth/{provider}/login [get]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/{provider}/login"),
	))
	defer span.End()

	provider := types.Provider(chi.URLParam(r, "provider"))
	l := h.logger.With(slog.String("handler", "Login"), slog.String("provider", string(provider)))
	span.SetAttributes(attribute.String("auth.provider", string(provider)))

	state, err := randomBase64URL(32)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate state", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to start login")
		return
	}

	authURL, err := h.service.LoginURL(ctx, provider, state)
	if err != nil {
		l.WarnContext(ctx, "Cannot build authorize URL", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "login url failed")
		api.HandleServiceError(w, r, err, "Failed to start login")
		return
	}

	setStateCookie(w, state, h.jwtCfg)
	span.SetStatus(codes.Ok, "Redirecting to provider")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback godoc
// @Summary      OAuth callback
// @Description  Validates state, exchanges the code and starts a session.
// @Tags         Auth
// @Param        provider path string true "google, kakao or naver"
// @Param        code query string true "Authorization code"
// @Param        state query string true "State issued at login"
// @Success      302
// @Success      200 {object} types.LoginResult
// @Failure      401 {object} api.Response "State mismatch"
// @Router       /auth/{provider}/callback [get]
func (h *HandlerImpl) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Callback", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/{provider}/callback"),
	))
	defer span.End()

	provider := types.Provider(chi.URLParam(r, "provider"))
	l := h.logger.With(slog.String("handler", "Callback"), slog.String("provider", string(provider)))
	query := r.URL.Query()

	cookieState := ""
	if c, err := r.Cookie(StateCookie); err == nil {
		cookieState = c.Value
	}
	clearCookie(w, StateCookie, "/", h.jwtCfg)

	if err := ValidateState(cookieState, query.Get("state")); err != nil {
		l.WarnContext(ctx, "OAuth state validation failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid state")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid OAuth state")
		return
	}

	if providerErr := query.Get("error"); providerErr != "" {
		l.WarnContext(ctx, "Provider returned an error", slog.String("error", providerErr))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Authorization was denied or failed: "+providerErr)
		return
	}

	result, err := h.service.HandleCallback(ctx, provider, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "callback failed")
		api.HandleServiceError(w, r, err, "Login failed")
		return
	}

	setSessionCookies(w, result.Tokens.AccessToken, result.Tokens.RefreshToken, h.jwtCfg)
	span.SetStatus(codes.Ok, "Logged in")

	if h.frontendURL == "" {
		api.WriteJSONResponse(w, r, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Refresh godoc
// @Summary      Rotate the session tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200 {object} types.TokenPair
// @Failure      401 {object} api.Response
// @Router       /auth/refresh [post]
func (h *HandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Refresh")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Refresh"))

	token, ok := h.refreshTokenFromRequest(w, r)
	if !ok {
		return
	}

	pair, err := h.service.Refresh(ctx, token)
	if err != nil {
		l.WarnContext(ctx, "Refresh failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		api.HandleServiceError(w, r, err, "Failed to refresh session")
		return
	}

	setSessionCookies(w, pair.AccessToken, pair.RefreshToken, h.jwtCfg)
	span.SetStatus(codes.Ok, "Session refreshed")
	api.WriteJSONResponse(w, r, http.StatusOK, pair)
}

// Logout godoc
// @Summary      End the session
// @Tags         Auth
// @Success      200 {object} api.Response
// @Router       /auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	token, ok := h.refreshTokenFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.service.Logout(ctx, token); err != nil {
		l.ErrorContext(ctx, "Failed to revoke refresh token", slog.Any("error", err))
		api.HandleServiceError(w, r, err, "Failed to log out")
		return
	}

	clearCookie(w, AccessTokenCookie, "/", h.jwtCfg)
	clearCookie(w, RefreshTokenCookie, refreshCookiePath, h.jwtCfg)
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "Logged out"})
}

// RefreshProviderToken godoc
// @Summary      Refresh the provider access token
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.ProviderToken
// @Failure      400 {object} api.Response "Provider does not support refresh"
// @Security     BearerAuth
// @Router       /auth/provider-token/refresh [post]
func (h *HandlerImpl) RefreshProviderToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshProviderToken")
	defer span.End()

	memberID, ok := MemberIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	token, err := h.service.RefreshProviderToken(ctx, memberID)
	if err != nil {
		h.logger.WarnContext(ctx, "Provider token refresh failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider refresh failed")
		api.HandleServiceError(w, r, err, "Failed to refresh provider token")
		return
	}
	span.SetStatus(codes.Ok, "Provider token refreshed")
	api.WriteJSONResponse(w, r, http.StatusOK, token)
}

// refreshTokenFromRequest prefers the cookie and falls back to a JSON body.
// It writes the error response itself and reports false on failure.
func (h *HandlerImpl) refreshTokenFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	if r.ContentLength == 0 {
		return "", true
	}
	var req refreshRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return "", false
	}
	return req.RefreshToken, true
}

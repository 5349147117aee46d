package container

import (
	"context"
	"errors"
	"log/slog"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/api/checklist"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/api/member"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/api/plan"
	"github.com/FACorreiaa/go-travel-planner/internal/api/recommend"
	"github.com/FACorreiaa/go-travel-planner/internal/api/region"
	"github.com/FACorreiaa/go-travel-planner/internal/api/spot"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             database.Pool
	AuthHandler      *auth.HandlerImpl
	MemberHandler    *member.HandlerImpl
	PlanHandler      *plan.HandlerImpl
	SpotHandler      *spot.HandlerImpl
	ChecklistHandler *checklist.HandlerImpl
	RegionHandler    *region.HandlerImpl
	RecommendHandler *recommend.HandlerImpl
}

// NewContainer wires repositories, services and handlers on top of pool.
func NewContainer(ctx context.Context, cfg *config.Config, pool database.Pool, logger *slog.Logger) (*Container, error) {
	// auth
	authRepo := auth.NewRepository(pool, logger)
	authService := auth.NewServiceImpl(authRepo, auth.NewProviders(cfg.OAuth), cfg.JWT, logger)
	authHandler := auth.NewHandlerImpl(authService, cfg.JWT, cfg.OAuth.FrontendRedirectURL, logger)

	memberRepo := member.NewRepository(pool, logger)
	memberService := member.NewServiceImpl(memberRepo, logger)
	memberHandler := member.NewHandlerImpl(memberService, logger)

	spotRepo := spot.NewRepository(pool, logger)
	spotService := spot.NewServiceImpl(spotRepo, logger)
	spotHandler := spot.NewHandlerImpl(spotService, logger)

	planRepo := plan.NewRepository(pool, logger)
	planService := plan.NewServiceImpl(planRepo, logger)
	planHandler := plan.NewHandlerImpl(planService, logger)

	checklistRepo := checklist.NewRepository(pool, logger)
	checklistService := checklist.NewServiceImpl(checklistRepo, logger)
	checklistHandler := checklist.NewHandlerImpl(checklistService, logger)

	regionRepo := region.NewRepository(pool, logger)
	regionService := region.NewServiceImpl(regionRepo, logger)
	regionHandler := region.NewHandlerImpl(regionService, logger)

	// recommendation agents
	hc := httpclient.New(cfg.HTTPClient.Timeout, cfg.HTTPClient.MaxRetries, logger)
	registry := places.NewRegistry(cfg.Search, hc)

	var completer generativeAI.Completer
	llm, err := generativeAI.NewCompleter(ctx, cfg.LLM, logger)
	switch {
	case errors.Is(err, generativeAI.ErrNotConfigured):
		logger.Warn("No LLM API key configured, agents will return raw search results")
	case err != nil:
		logger.Error("Failed to initialize LLM client", slog.Any("error", err))
		return nil, err
	default:
		completer = generativeAI.NewRecordingCompleter(llm, generativeAI.NewInteractionRepository(pool, logger), logger)
	}

	agentOpts := recommend.AgentOptions{MaxRetries: cfg.Agents.MaxRetries, RetryWait: cfg.Agents.RetryWait}
	agents := make([]recommend.Recommender, 0, len(types.SpotTypes))
	for _, kind := range types.SpotTypes {
		agents = append(agents, recommend.NewAgent(kind, registry, completer, agentOpts, logger))
	}
	recommendService := recommend.NewServiceImpl(agents, planService,
		recommend.CacheOptions{TTL: cfg.Agents.CacheTTL, Cleanup: cfg.Agents.CacheClean}, logger)
	recommendHandler := recommend.NewHandlerImpl(recommendService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		AuthHandler:      authHandler,
		MemberHandler:    memberHandler,
		PlanHandler:      planHandler,
		SpotHandler:      spotHandler,
		ChecklistHandler: checklistHandler,
		RegionHandler:    regionHandler,
		RecommendHandler: recommendHandler,
	}, nil
}

package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/flyt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	keyRequest         = "request"
	keyRecommendations = "recommendations"

	maxCandidates = 20
)

// Sources gives an agent its place searchers and the optional image finder.
// *places.Registry implements it.
type Sources interface {
	SearchersFor(kind types.SpotType) []places.Searcher
	Images() places.ImageFinder
}

var _ Sources = (*places.Registry)(nil)

// Recommender produces recommendations of a single kind.
type Recommender interface {
	Kind() types.SpotType
	Recommend(ctx context.Context, req types.RecommendationRequest) ([]types.Recommendation, error)
}

// AgentOptions controls the exec retry of an agent run.
type AgentOptions struct {
	MaxRetries int
	RetryWait  time.Duration
}

// Agent is the recommendation agent for one spot kind. Each call to
// Recommend runs a fresh flyt node, so an Agent is safe for concurrent use.
type Agent struct {
	kind      types.SpotType
	sources   Sources
	completer generativeAI.Completer
	opts      AgentOptions
	logger    *slog.Logger
}

var _ Recommender = (*Agent)(nil)

// NewAgent builds the agent for kind. completer may be nil, in which case the
// agent returns the search candidates as they are.
func NewAgent(kind types.SpotType, sources Sources, completer generativeAI.Completer, opts AgentOptions, logger *slog.Logger) *Agent {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	return &Agent{
		kind:      kind,
		sources:   sources,
		completer: completer,
		opts:      opts,
		logger:    logger.With(slog.String("agent", string(kind))),
	}
}

func (a *Agent) Kind() types.SpotType { return a.kind }

func (a *Agent) Recommend(ctx context.Context, req types.RecommendationRequest) ([]types.Recommendation, error) {
	ctx, span := otel.Tracer("RecommendAgent").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("agent.kind", string(a.kind)),
		attribute.String("destination", req.Destination),
	))
	defer span.End()

	shared := flyt.NewSharedStore()
	shared.Set(keyRequest, req)

	node := &agentNode{
		BaseNode: flyt.NewBaseNode(flyt.WithMaxRetries(a.opts.MaxRetries), flyt.WithWait(a.opts.RetryWait)),
		agent:    a,
	}
	if _, err := flyt.Run(ctx, node, shared); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "agent run failed")
		return nil, fmt.Errorf("%s agent: %w", a.kind, err)
	}

	v, _ := shared.Get(keyRecommendations)
	recs, _ := v.([]types.Recommendation)
	span.SetAttributes(attribute.Int("recommendations.count", len(recs)))
	span.SetStatus(codes.Ok, "")
	return recs, nil
}

type agentInput struct {
	req        types.RecommendationRequest
	candidates []types.Place
}

// agentNode is one prep -> exec -> post run of an Agent.
type agentNode struct {
	*flyt.BaseNode
	agent *Agent
	// quotaErr ends the remaining exec attempts once the LLM reports a 429.
	quotaErr error
}

// Prep gathers candidates from every source concurrently. A failing source
// is logged and skipped.
func (n *agentNode) Prep(ctx context.Context, shared *flyt.SharedStore) (any, error) {
	v, ok := shared.Get(keyRequest)
	if !ok {
		return nil, fmt.Errorf("%w: missing request", types.ErrInvalidInput)
	}
	req := v.(types.RecommendationRequest)

	searchers := n.agent.sources.SearchersFor(n.agent.kind)
	q := places.SearchQuery{
		Query:    req.Destination,
		Kind:     n.agent.kind,
		CheckIn:  req.StartDate,
		CheckOut: req.EndDate,
		Adults:   req.Headcount,
		Limit:    maxCandidates,
	}

	var (
		mu       sync.Mutex
		results  = make([][]types.Place, len(searchers))
		failures int
		lastErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range searchers {
		g.Go(func() error {
			found, err := s.Search(gctx, q)
			if err != nil {
				n.agent.logger.WarnContext(ctx, "Place source failed",
					slog.String("source", s.Name()), slog.Any("error", err))
				mu.Lock()
				failures++
				lastErr = err
				mu.Unlock()
				return nil
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()

	candidates := dedupePlaces(results)
	n.agent.logger.DebugContext(ctx, "Gathered candidates",
		slog.Int("sources", len(searchers)), slog.Int("failed", failures), slog.Int("candidates", len(candidates)))

	if n.agent.completer == nil {
		switch {
		case len(searchers) == 0:
			return nil, fmt.Errorf("%w: no llm or place source configured", types.ErrUpstream)
		case failures == len(searchers):
			return nil, fmt.Errorf("every place source failed: %w", lastErr)
		}
	}
	return agentInput{req: req, candidates: candidates}, nil
}

// Exec asks the model and decodes its answer. Malformed output fails the
// attempt so flyt retries it.
func (n *agentNode) Exec(ctx context.Context, prepResult any) (any, error) {
	in := prepResult.(agentInput)
	if n.agent.completer == nil {
		return placesToRecommendations(n.agent.kind, in.candidates), nil
	}

	if n.quotaErr != nil {
		return nil, n.quotaErr
	}

	prompt := getRecommendationPrompt(n.agent.kind, in.req, in.candidates)
	text, err := n.agent.completer.Complete(generativeAI.WithAgent(ctx, string(n.agent.kind)), prompt)
	if err != nil {
		n.agent.logger.WarnContext(ctx, "LLM call failed", slog.Any("error", err))
		if errors.Is(err, types.ErrUpstreamQuota) {
			n.quotaErr = err
		}
		return nil, err
	}
	return parseRecommendations(text, n.agent.kind)
}

// Post completes each recommendation from its candidate and stores the result.
func (n *agentNode) Post(ctx context.Context, shared *flyt.SharedStore, prepResult, execResult any) (flyt.Action, error) {
	in := prepResult.(agentInput)
	recs := execResult.([]types.Recommendation)

	if in.req.Limit > 0 && len(recs) > in.req.Limit {
		recs = recs[:in.req.Limit]
	}

	images := n.agent.sources.Images()
	for i := range recs {
		if c, ok := matchCandidate(recs[i].Name, in.candidates); ok {
			fillFromCandidate(&recs[i], c)
		}
		if recs[i].ImageURL == "" && images != nil {
			img, err := images.FindImage(ctx, recs[i].Name)
			if err != nil {
				n.agent.logger.DebugContext(ctx, "Image lookup failed",
					slog.String("name", recs[i].Name), slog.Any("error", err))
				continue
			}
			recs[i].ImageURL = img
		}
	}

	shared.Set(keyRecommendations, recs)
	return flyt.DefaultAction, nil
}

func dedupePlaces(groups [][]types.Place) []types.Place {
	seen := make(map[string]struct{})
	var out []types.Place
	for _, g := range groups {
		for _, p := range g {
			key := normalizeName(p.Name)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
			if len(out) == maxCandidates {
				return out
			}
		}
	}
	return out
}

func placesToRecommendations(kind types.SpotType, candidates []types.Place) []types.Recommendation {
	recs := make([]types.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		r := types.Recommendation{Name: c.Name, Kind: kind, Description: c.Category}
		fillFromCandidate(&r, c)
		recs = append(recs, r)
	}
	return recs
}

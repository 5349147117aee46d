package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// AIClient completes prompts with Gemini.
type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

var _ Completer = (*AIClient)(nil)

// NewAIClient builds a Gemini client. httpOptions overrides the endpoint
// settings when given.
func NewAIClient(ctx context.Context, apiKey, model string, temperature float32, httpOptions ...genai.HTTPOptions) (*AIClient, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "NewAIClient")
	defer span.End()

	if apiKey == "" {
		span.SetStatus(codes.Error, "API key not set")
		return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if len(httpOptions) > 0 {
		cc.HTTPOptions = httpOptions[0]
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &AIClient{client: client, model: model, temperature: temperature}, nil
}

func (ai *AIClient) Model() string { return ai.model }

func (ai *AIClient) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.String("llm.model", ai.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	))
	defer span.End()

	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](ai.temperature)}
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Gemini call failed")
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", fmt.Errorf("gemini generate: %w: %v", types.ErrUpstreamQuota, err)
		}
		return "", fmt.Errorf("gemini generate: %w: %v", types.ErrUpstream, err)
	}
	text := result.Text()
	if text == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", fmt.Errorf("gemini returned an empty response: %w", types.ErrUpstream)
	}
	span.SetAttributes(attribute.Int("llm.response_length", len(text)))
	span.SetStatus(codes.Ok, "")
	return text, nil
}

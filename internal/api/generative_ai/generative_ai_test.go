package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.text, s.err }
func (s stubCompleter) Model() string { return "stub-model" }

type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	args := m.Called(ctx, interaction)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func TestRecordingCompleter_SavesInteraction(t *testing.T) {
	repo := new(MockInteractionRepository)
	memberID := uuid.New()
	ctx := WithAgent(auth.WithMemberID(context.Background(), memberID), "cafe")

	repo.On("SaveInteraction", mock.Anything, mock.MatchedBy(func(i types.LlmInteraction) bool {
		return i.Agent == "cafe" && i.Prompt == "find cafes" && i.ResponseText == "[]" &&
			i.ModelUsed == "stub-model" && i.MemberID != nil && *i.MemberID == memberID
	})).Return(uuid.New(), nil).Once()

	c := NewRecordingCompleter(stubCompleter{text: "[]"}, repo, slog.Default())
	text, err := c.Complete(ctx, "find cafes")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	repo.AssertExpectations(t)
}

func TestRecordingCompleter_SaveFailureIsNotFatal(t *testing.T) {
	repo := new(MockInteractionRepository)
	repo.On("SaveInteraction", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("db down")).Once()

	c := NewRecordingCompleter(stubCompleter{text: "ok"}, repo, slog.Default())
	text, err := c.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestRecordingCompleter_PropagatesLLMError(t *testing.T) {
	repo := new(MockInteractionRepository)
	c := NewRecordingCompleter(stubCompleter{err: types.ErrUpstream}, repo, slog.Default())

	_, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, types.ErrUpstream)
	repo.AssertNotCalled(t, "SaveInteraction", mock.Anything, mock.Anything)
}

func TestNewCompleter_RequiresKey(t *testing.T) {
	_, err := NewCompleter(context.Background(), config.LLMConfig{Provider: "gemini"}, slog.Default())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(context.Background(), config.LLMConfig{Provider: "openai"}, slog.Default())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewCompleter(context.Background(), config.LLMConfig{Provider: "claude"}, slog.Default())
	assert.Error(t, err)
}

func TestNewCompleter_OpenAI(t *testing.T) {
	c, err := NewCompleter(context.Background(), config.LLMConfig{Provider: "openai", OpenAIAPIKey: "sk-test", Model: "gpt-4o-mini"}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.Model())
}

func quotaServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_TooManyRequestsIsQuota(t *testing.T) {
	srv := quotaServer(t, `{"error":{"message":"Rate limit reached for gpt-4o-mini"}}`)

	c, err := NewOpenAIClient("sk-test", "gpt-4o-mini", 0.2, openai.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "find cafes in Sokcho")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpstreamQuota)
	assert.NotErrorIs(t, err, types.ErrUpstream)
}

func TestAIClient_TooManyRequestsIsQuota(t *testing.T) {
	srv := quotaServer(t, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)

	c, err := NewAIClient(context.Background(), "test-key", "gemini-2.0-flash", 0.2, genai.HTTPOptions{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "find cafes in Sokcho")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpstreamQuota)
	assert.NotErrorIs(t, err, types.ErrUpstream)
}

func TestAIClient_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	c, err := NewAIClient(context.Background(), "test-key", "gemini-2.0-flash", 0.2, genai.HTTPOptions{BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "find cafes in Sokcho")
	assert.ErrorIs(t, err, types.ErrUpstream)
	assert.NotErrorIs(t, err, types.ErrUpstreamQuota)
}

func TestInteractionRepository_Save(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewInteractionRepository(pool, slog.Default())
	pool.ExpectExec(regexp.QuoteMeta("INSERT INTO llm_interactions")).
		WithArgs(pgxmock.AnyArg(), (*uuid.UUID)(nil), "site", "prompt", "response", "gemini-2.0-flash", 120).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.SaveInteraction(context.Background(), types.LlmInteraction{
		Agent: "site", Prompt: "prompt", ResponseText: "response", ModelUsed: "gemini-2.0-flash", LatencyMs: 120,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NoError(t, pool.ExpectationsWereMet())
}

package member

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetMember(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Member), args.Error(1)
}

func (m *MockRepository) UpdateMember(ctx context.Context, memberID uuid.UUID, params types.UpdateMemberParams) (*types.Member, error) {
	args := m.Called(ctx, memberID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Member), args.Error(1)
}

func (m *MockRepository) DeleteMember(ctx context.Context, memberID uuid.UUID) error {
	return m.Called(ctx, memberID).Error(0)
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()
	memberID := uuid.New()

	t.Run("TrimsNickname", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewServiceImpl(repo, slog.Default())
		nick := "  wanderer "
		trimmed := "wanderer"

		repo.On("UpdateMember", ctx, memberID, types.UpdateMemberParams{Nickname: &trimmed}).
			Return(&types.Member{ID: memberID, Nickname: trimmed}, nil).Once()

		m, err := svc.UpdateMe(ctx, memberID, types.UpdateMemberParams{Nickname: &nick})
		require.NoError(t, err)
		assert.Equal(t, "wanderer", m.Nickname)
		repo.AssertExpectations(t)
	})

	t.Run("RejectsBlankNickname", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewServiceImpl(repo, slog.Default())
		blank := "   "

		_, err := svc.UpdateMe(ctx, memberID, types.UpdateMemberParams{Nickname: &blank})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
		repo.AssertNotCalled(t, "UpdateMember", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_GetMe(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID := uuid.New()

	repo.On("GetMember", mock.Anything, memberID).Return(&types.Member{ID: memberID, Nickname: "jeju-lover", Provider: types.ProviderKakao}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/members/me", nil)
	req = req.WithContext(auth.WithMemberID(req.Context(), memberID))
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nickname":"jeju-lover"`)
	assert.NotContains(t, rec.Body.String(), "provider_user_id")
}

func TestHandler_UpdateMe_BadBody(t *testing.T) {
	h := NewHandlerImpl(NewServiceImpl(new(MockRepository), slog.Default()), slog.Default())

	req := httptest.NewRequest(http.MethodPut, "/members/me", strings.NewReader(`{"email":"x@y.z"}`))
	req = req.WithContext(auth.WithMemberID(req.Context(), uuid.New()))
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DeleteMe_NotFound(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID := uuid.New()

	repo.On("DeleteMember", mock.Anything, memberID).Return(fmt.Errorf("member: %w", types.ErrNotFound)).Once()

	req := httptest.NewRequest(http.MethodDelete, "/members/me", nil)
	req = req.WithContext(auth.WithMemberID(req.Context(), memberID))
	rec := httptest.NewRecorder()
	h.DeleteMe(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepository_DeleteMember(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	memberID := uuid.New()

	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM members WHERE id = $1")).
		WithArgs(memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.DeleteMember(context.Background(), memberID))
	assert.NoError(t, pool.ExpectationsWereMet())
}

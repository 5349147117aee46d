package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

func (m *MockRepository) CreateSpot(ctx context.Context, s *types.Spot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) GetSpot(ctx context.Context, spotID uuid.UUID) (*types.Spot, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Spot), args.Error(1)
}

func (m *MockRepository) ListSpots(ctx context.Context, filter types.SpotFilter) ([]types.Spot, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.Spot), args.Int(1), args.Error(2)
}

func (m *MockRepository) UpdateSpot(ctx context.Context, s *types.Spot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) DeleteSpot(ctx context.Context, memberID, spotID uuid.UUID) error {
	return m.Called(ctx, memberID, spotID).Error(0)
}

func (m *MockRepository) ListTags(ctx context.Context) ([]types.SpotTag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SpotTag), args.Error(1)
}

func ptr[T any](v T) *T { return &v }

func TestCreateSpot_Validation(t *testing.T) {
	cases := map[string]types.CreateSpotParams{
		"missing name":  {SpotType: types.SpotCafe},
		"unknown type":  {Name: "x", SpotType: "museum"},
		"latitude 91":   {Name: "x", SpotType: types.SpotSite, Latitude: ptr(91.0)},
		"longitude 181": {Name: "x", SpotType: types.SpotSite, Longitude: ptr(-181.0)},
		"rating 6":      {Name: "x", SpotType: types.SpotSite, Rating: ptr(6.0)},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewServiceImpl(repo, slog.Default())
			_, err := svc.CreateSpot(context.Background(), params)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
			repo.AssertNotCalled(t, "CreateSpot", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSpot_Boundaries(t *testing.T) {
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, slog.Default())
	repo.On("CreateSpot", mock.Anything, mock.AnythingOfType("*types.Spot")).Return(nil).Once()

	s, err := svc.CreateSpot(context.Background(), types.CreateSpotParams{
		Name: " Dokdo ", SpotType: types.SpotSite, Latitude: ptr(-90.0), Longitude: ptr(180.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dokdo", s.Name)
	repo.AssertExpectations(t)
}

func TestUpdateSpot_RevalidatesMergedSpot(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewServiceImpl(repo, slog.Default())
	spotID := uuid.New()

	repo.On("GetSpot", ctx, spotID).Return(&types.Spot{ID: spotID, Name: "Cafe Onion", SpotType: types.SpotCafe}, nil).Once()

	_, err := svc.UpdateSpot(ctx, spotID, types.UpdateSpotParams{Name: ptr("  ")})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	repo.AssertNotCalled(t, "UpdateSpot", mock.Anything, mock.Anything)
}

func TestHandler_ListSpots_Filters(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())

	want := types.SpotFilter{Type: types.SpotRestaurant, Query: "gukbap", Page: types.Page{Page: 1, PageSize: 10}}
	repo.On("ListSpots", mock.Anything, want).
		Return([]types.Spot{{ID: uuid.New(), Name: "Busan gukbap", SpotType: types.SpotRestaurant}}, 1, nil).Once()

	rec := httptest.NewRecorder()
	h.ListSpots(rec, httptest.NewRequest(http.MethodGet, "/spots?type=restaurant&q=gukbap", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.SpotList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "Busan gukbap", got.Spots[0].Name)
}

func TestHandler_ListSpots_UnknownType(t *testing.T) {
	h := NewHandlerImpl(NewServiceImpl(new(MockRepository), slog.Default()), slog.Default())
	rec := httptest.NewRecorder()
	h.ListSpots(rec, httptest.NewRequest(http.MethodGet, "/spots?type=bar", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreateSpot(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	repo.On("CreateSpot", mock.Anything, mock.MatchedBy(func(s *types.Spot) bool {
		return s.Name == "Lotte Hotel" && s.SpotType == types.SpotAccommodation
	})).Return(nil).Once()

	body := `{"name":"Lotte Hotel","spot_type":"accommodation","latitude":37.56,"longitude":126.98}`
	rec := httptest.NewRecorder()
	h.CreateSpot(rec, httptest.NewRequest(http.MethodPost, "/spots", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func deleteSpotRequest(h *HandlerImpl, memberID, spotID uuid.UUID) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Delete("/spots/{spotID}", h.DeleteSpot)
	req := httptest.NewRequest(http.MethodDelete, "/spots/"+spotID.String(), nil)
	if memberID != uuid.Nil {
		req = req.WithContext(auth.WithMemberID(req.Context(), memberID))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_DeleteSpot_NotFound(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, spotID := uuid.New(), uuid.New()
	repo.On("DeleteSpot", mock.Anything, memberID, spotID).Return(types.ErrNotFound).Once()

	assert.Equal(t, http.StatusNotFound, deleteSpotRequest(h, memberID, spotID).Code)
}

func TestHandler_DeleteSpot_UsedByAnotherMember(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, spotID := uuid.New(), uuid.New()
	repo.On("DeleteSpot", mock.Anything, memberID, spotID).
		Return(fmt.Errorf("spot %s is on another member's plan: %w", spotID, types.ErrConflict)).Once()

	rec := deleteSpotRequest(h, memberID, spotID)
	assert.Equal(t, http.StatusConflict, rec.Code)
	repo.AssertExpectations(t)
}

func TestHandler_DeleteSpot_RequiresMember(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())

	assert.Equal(t, http.StatusUnauthorized, deleteSpotRequest(h, uuid.Nil, uuid.New()).Code)
	repo.AssertNotCalled(t, "DeleteSpot", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepository_DeleteSpot_SharedWithAnotherMember(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	memberID, spotID := uuid.New(), uuid.New()

	pool.ExpectBegin()
	pool.ExpectQuery(regexp.QuoteMeta("SELECT id FROM spots WHERE id = $1 FOR UPDATE")).
		WithArgs(spotID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(spotID))
	pool.ExpectQuery(regexp.QuoteMeta("p.member_id <> $2")).
		WithArgs(spotID, memberID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	pool.ExpectRollback()

	err = repo.DeleteSpot(context.Background(), memberID, spotID)
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_DeleteSpot(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	memberID, spotID := uuid.New(), uuid.New()

	pool.ExpectBegin()
	pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(spotID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(spotID))
	pool.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(spotID, memberID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	pool.ExpectExec(regexp.QuoteMeta("DELETE FROM spots WHERE id = $1")).
		WithArgs(spotID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	pool.ExpectCommit()

	require.NoError(t, repo.DeleteSpot(context.Background(), memberID, spotID))
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_DeleteSpot_Missing(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	spotID := uuid.New()

	pool.ExpectBegin()
	pool.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(spotID).
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectRollback()

	err = repo.DeleteSpot(context.Background(), uuid.New(), spotID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestBuildSpotFilter(t *testing.T) {
	where, args := buildSpotFilter(types.SpotFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildSpotFilter(types.SpotFilter{Type: types.SpotCafe, Query: "latte"})
	assert.Equal(t, " WHERE spot_type = $1 AND name ILIKE $2", where)
	assert.Equal(t, []any{"cafe", "%latte%"}, args)
}

func TestRepository_CreateSpot(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	now := time.Now()
	s := &types.Spot{Name: "Gamcheon Village", SpotType: types.SpotSite}

	pool.ExpectQuery(regexp.QuoteMeta("INSERT INTO spots")).
		WithArgs(pgxmock.AnyArg(), "Gamcheon Village", "site", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, repo.CreateSpot(context.Background(), s))
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepository_UpdateSpot_NotFound(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(pool, slog.Default())
	s := &types.Spot{ID: uuid.New(), Name: "x", SpotType: types.SpotCafe}

	pool.ExpectExec(regexp.QuoteMeta("UPDATE spots SET")).
		WithArgs(s.ID, "x", "cafe", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.UpdateSpot(context.Background(), s), types.ErrNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}

package plan

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/api/auth"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func newTestRouter(h *HandlerImpl, memberID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithMemberID(req.Context(), memberID)))
		})
	})
	r.Post("/plans", h.CreatePlan)
	r.Get("/plans", h.ListPlans)
	r.Get("/plans/{planID}", h.GetPlan)
	r.Delete("/plans/{planID}", h.DeletePlan)
	r.Post("/plans/{planID}/spots", h.AttachSpot)
	r.Post("/plans/{planID}/spots/{planSpotID}/tags", h.TagPlanSpot)
	return r
}

func TestHandler_CreatePlan(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID := uuid.New()

	repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p *types.Plan) bool {
		return p.MemberID == memberID && p.Title == "Seoul weekend" && p.Headcount == 3
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Plan).ID = uuid.New()
	}).Return(nil).Once()

	body := `{"title":"Seoul weekend","headcount":3,"start_date":"2026-09-05","end_date":"2026-09-06"}`
	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plans", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var got types.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Seoul weekend", got.Title)
	assert.Equal(t, "2026-09-05", got.StartDate.Format(dateLayout))
	repo.AssertExpectations(t)
}

func TestHandler_CreatePlan_InvalidDates(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())

	body := `{"title":"x","start_date":"2026-09-06","end_date":"2026-09-05"}`
	rec := httptest.NewRecorder()
	newTestRouter(h, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plans", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end_date")
}

func TestHandler_GetPlan_OtherMember(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	repo.On("GetPlan", mock.Anything, memberID, planID).Return(nil, fmt.Errorf("plan %s: %w", planID, types.ErrNotFound)).Once()

	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+planID.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertNotCalled(t, "ListPlanSpots", mock.Anything, mock.Anything)
}

func TestHandler_GetPlan_MalformedID(t *testing.T) {
	h := NewHandlerImpl(NewServiceImpl(new(MockRepository), slog.Default()), slog.Default())

	rec := httptest.NewRecorder()
	newTestRouter(h, uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetPlan_WithSpots(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	repo.On("GetPlan", mock.Anything, memberID, planID).Return(&types.Plan{ID: planID, MemberID: memberID, Title: "Jeonju", Headcount: 1}, nil).Once()
	repo.On("ListPlanSpots", mock.Anything, planID).Return([]types.PlanSpot{
		{ID: uuid.New(), DayNumber: 1, Sequence: 1, Spot: types.Spot{Name: "Hanok Village", SpotType: types.SpotSite}, Tags: []string{"walk"}},
		{ID: uuid.New(), DayNumber: 1, Sequence: 2, Spot: types.Spot{Name: "Bibimbap house", SpotType: types.SpotRestaurant}, Tags: []string{}},
	}, nil).Once()

	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/"+planID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Spots, 2)
	assert.Equal(t, "Hanok Village", got.Spots[0].Spot.Name)
	assert.Equal(t, []string{"walk"}, got.Spots[0].Tags)
}

func TestHandler_ListPlans_Pagination(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID := uuid.New()

	repo.On("ListPlans", mock.Anything, memberID, types.Page{Page: 2, PageSize: 5}).
		Return([]types.Plan{{Title: "a"}}, 6, nil).Once()

	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans?page=2&page_size=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got types.PlanList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 2, got.Page)
	assert.Len(t, got.Plans, 1)
}

func TestHandler_DeletePlan(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	repo.On("DeletePlan", mock.Anything, memberID, planID).Return(nil).Once()

	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/plans/"+planID.String(), nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestHandler_AttachSpot_Conflict(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, planID, spotID := uuid.New(), uuid.New(), uuid.New()

	repo.On("GetPlan", mock.Anything, memberID, planID).Return(&types.Plan{ID: planID}, nil).Once()
	repo.On("AttachSpot", mock.Anything, planID, types.AttachSpotParams{SpotID: spotID, DayNumber: 1}).
		Return(nil, fmt.Errorf("attach spot: %w", types.ErrConflict)).Once()

	body := fmt.Sprintf(`{"spot_id":%q,"day_number":1}`, spotID)
	rec := httptest.NewRecorder()
	newTestRouter(h, memberID).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/spots", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_TagPlanSpot(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandlerImpl(NewServiceImpl(repo, slog.Default()), slog.Default())
	memberID, planID, planSpotID := uuid.New(), uuid.New(), uuid.New()

	repo.On("GetPlan", mock.Anything, memberID, planID).Return(&types.Plan{ID: planID}, nil).Once()
	repo.On("TagPlanSpot", mock.Anything, planID, planSpotID, "night view").
		Return(&types.SpotTag{ID: uuid.New(), Name: "night view"}, nil).Once()

	rec := httptest.NewRecorder()
	url := fmt.Sprintf("/plans/%s/spots/%s/tags", planID, planSpotID)
	newTestRouter(h, memberID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"name":"Night View"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"night view"`)
}

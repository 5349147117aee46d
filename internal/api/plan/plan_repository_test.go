package plan

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func TestRepository_DeletePlan_RemovesPlanSpots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plans WHERE id = $1 AND member_id = $2")).
		WithArgs(planID, memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plan_spot_tag_map")).
		WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plan_spot_map WHERE plan_id = $1")).
		WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM checklists WHERE plan_id = $1")).
		WithArgs(planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeletePlan(context.Background(), memberID, planID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeletePlan_OtherMember(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plans WHERE id = $1 AND member_id = $2")).
		WithArgs(planID, memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err = repo.DeletePlan(context.Background(), memberID, planID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeletePlan_RollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plans")).
		WithArgs(planID, memberID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plan_spot_tag_map")).
		WithArgs(planID).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = repo.DeletePlan(context.Background(), memberID, planID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete plan spot tags")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreatePlan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	now := time.Now()
	p := &types.Plan{MemberID: uuid.New(), Title: "Gangneung", Headcount: 2}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plans")).
		WithArgs(pgxmock.AnyArg(), p.MemberID, "Gangneung", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			2, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.CreatePlan(context.Background(), p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPlan_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	memberID, planID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1 AND member_id = $2")).
		WithArgs(planID, memberID).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetPlan(context.Background(), memberID, planID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AttachSpot_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID, spotID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plan_spot_map")).
		WithArgs(pgxmock.AnyArg(), planID, spotID, 1, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.AttachSpot(context.Background(), planID, types.AttachSpotParams{SpotID: spotID, DayNumber: 1})
	assert.ErrorIs(t, err, types.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AttachSpot_DefaultsSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID, spotID := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(sequence), 0) + 1 FROM plan_spot_map")).
		WithArgs(pgxmock.AnyArg(), planID, spotID, 2, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "created_at"}).AddRow(4, time.Now()))

	ps, err := repo.AttachSpot(context.Background(), planID, types.AttachSpotParams{SpotID: spotID, DayNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, ps.Sequence)
	assert.Equal(t, 2, ps.DayNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TagPlanSpot_UnknownPlanSpot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID, planSpotID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(planSpotID, planID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err = repo.TagPlanSpot(context.Background(), planID, planSpotID, "sunset")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DetachSpot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID, planSpotID := uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM plan_spot_map WHERE id = $1 AND plan_id = $2")).
		WithArgs(planSpotID, planID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.DetachSpot(context.Background(), planID, planSpotID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddNewSpots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spots")).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plan_spot_map")).
		WithArgs(pgxmock.AnyArg(), planID, pgxmock.AnyArg(), 1, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "created_at"}).AddRow(1, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spots")).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plan_spot_map")).
		WithArgs(pgxmock.AnyArg(), planID, pgxmock.AnyArg(), 2, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "created_at"}).AddRow(1, now))
	mock.ExpectCommit()

	saved, err := repo.AddNewSpots(context.Background(), planID, []types.PlanSpot{
		{DayNumber: 1, Spot: types.Spot{Name: "Cafe A", SpotType: types.SpotCafe}},
		{DayNumber: 2, Spot: types.Spot{Name: "Cafe B", SpotType: types.SpotCafe}},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEqual(t, uuid.Nil, saved[0].Spot.ID)
	assert.Equal(t, planID, saved[1].PlanID)
	assert.Equal(t, 2, saved[1].DayNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_AddNewSpots_RollsBackWholeBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock, slog.Default())
	planID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spots")).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plan_spot_map")).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "created_at"}).AddRow(1, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO spots")).
		WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "spots_latitude_check"})
	mock.ExpectRollback()

	saved, err := repo.AddNewSpots(context.Background(), planID, []types.PlanSpot{
		{DayNumber: 1, Spot: types.Spot{Name: "Cafe A", SpotType: types.SpotCafe}},
		{DayNumber: 1, Spot: types.Spot{Name: "Cafe B", SpotType: types.SpotCafe}},
	})
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

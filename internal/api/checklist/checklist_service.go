package checklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	maxItems       = 200
	maxItemTextLen = 200
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetChecklist(ctx context.Context, memberID, planID uuid.UUID) (*types.Checklist, error)
	SaveChecklist(ctx context.Context, memberID, planID uuid.UUID, params types.UpdateChecklistParams) (*types.Checklist, error)
	DeleteChecklist(ctx context.Context, memberID, planID uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) GetChecklist(ctx context.Context, memberID, planID uuid.UUID) (*types.Checklist, error) {
	return s.repo.GetChecklist(ctx, memberID, planID)
}

func (s *ServiceImpl) SaveChecklist(ctx context.Context, memberID, planID uuid.UUID, params types.UpdateChecklistParams) (*types.Checklist, error) {
	if len(params.Items) > maxItems {
		return nil, fmt.Errorf("%w: at most %d checklist items", types.ErrInvalidInput, maxItems)
	}
	items := make([]types.ChecklistItem, 0, len(params.Items))
	for i, it := range params.Items {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: item %d has no text", types.ErrInvalidInput, i)
		}
		if len([]rune(text)) > maxItemTextLen {
			return nil, fmt.Errorf("%w: item %d is longer than %d characters", types.ErrInvalidInput, i, maxItemTextLen)
		}
		items = append(items, types.ChecklistItem{Text: text, Checked: it.Checked})
	}

	c, err := s.repo.UpsertChecklist(ctx, memberID, planID, items)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Checklist saved", slog.String("planID", planID.String()), slog.Int("items", len(items)))
	return c, nil
}

func (s *ServiceImpl) DeleteChecklist(ctx context.Context, memberID, planID uuid.UUID) error {
	return s.repo.DeleteChecklist(ctx, memberID, planID)
}

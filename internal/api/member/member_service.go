package member

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetMe(ctx context.Context, memberID uuid.UUID) (*types.Member, error)
	UpdateMe(ctx context.Context, memberID uuid.UUID, params types.UpdateMemberParams) (*types.Member, error)
	DeleteMe(ctx context.Context, memberID uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) GetMe(ctx context.Context, memberID uuid.UUID) (*types.Member, error) {
	return s.repo.GetMember(ctx, memberID)
}

func (s *ServiceImpl) UpdateMe(ctx context.Context, memberID uuid.UUID, params types.UpdateMemberParams) (*types.Member, error) {
	if params.Nickname != nil {
		trimmed := strings.TrimSpace(*params.Nickname)
		if trimmed == "" || len([]rune(trimmed)) > 30 {
			return nil, fmt.Errorf("%w: nickname must be 1-30 characters", types.ErrInvalidInput)
		}
		params.Nickname = &trimmed
	}
	m, err := s.repo.UpdateMember(ctx, memberID, params)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Member profile updated", slog.String("memberID", memberID.String()))
	return m, nil
}

func (s *ServiceImpl) DeleteMe(ctx context.Context, memberID uuid.UUID) error {
	if err := s.repo.DeleteMember(ctx, memberID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Member deleted", slog.String("memberID", memberID.String()))
	return nil
}

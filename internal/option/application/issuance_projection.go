package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// IssuanceProjectionService 将发行生命周期事件投影到 Redis 读模型。
// 墓碑化（撤销 / 结清 / 回收）的记录从缓存中删除。
type IssuanceProjectionService struct {
	repo     domain.IssuanceRepository
	readRepo domain.IssuanceReadRepository
	logger   *slog.Logger
}

func NewIssuanceProjectionService(repo domain.IssuanceRepository, readRepo domain.IssuanceReadRepository, logger *slog.Logger) *IssuanceProjectionService {
	return &IssuanceProjectionService{
		repo:     repo,
		readRepo: readRepo,
		logger:   logger,
	}
}

func (s *IssuanceProjectionService) Refresh(ctx context.Context, issuanceID int64) error {
	if s.readRepo == nil {
		return nil
	}
	issuance, err := s.repo.Get(ctx, issuanceID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load issuance for projection", "issuance_id", issuanceID, "error", err)
		return err
	}
	if issuance == nil {
		_ = s.readRepo.Delete(ctx, issuanceID)
		return nil
	}
	if err := s.readRepo.Save(ctx, issuance); err != nil {
		s.logger.ErrorContext(ctx, "failed to save issuance cache", "issuance_id", issuanceID, "error", err)
		return err
	}
	return nil
}

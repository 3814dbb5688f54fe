// Package persistence 组合仓储：查询优先命中 Redis 读模型，未命中回源 MySQL。
// 仅供查询服务使用，命令路径必须直连 MySQL 仓储。
package persistence

import (
	"context"

	"github.com/wyfcoding/optionvault/internal/option/domain"
)

type compositeIssuanceRepository struct {
	mysql domain.IssuanceRepository
	redis domain.IssuanceReadRepository
}

func NewCompositeIssuanceRepository(mysql domain.IssuanceRepository, redis domain.IssuanceReadRepository) domain.IssuanceRepository {
	return &compositeIssuanceRepository{
		mysql: mysql,
		redis: redis,
	}
}

func (r *compositeIssuanceRepository) Get(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	issuance, err := r.redis.Get(ctx, issuanceID)
	if err == nil && issuance != nil {
		return issuance, nil
	}

	issuance, err = r.mysql.Get(ctx, issuanceID)
	if err != nil || issuance == nil {
		return issuance, err
	}

	// 回填缓存，失败不影响查询结果
	_ = r.redis.Save(ctx, issuance)
	return issuance, nil
}

func (r *compositeIssuanceRepository) Save(ctx context.Context, issuance *domain.Issuance) error {
	if err := r.mysql.Save(ctx, issuance); err != nil {
		return err
	}
	_ = r.redis.Save(ctx, issuance)
	return nil
}

func (r *compositeIssuanceRepository) Delete(ctx context.Context, issuanceID int64) error {
	if err := r.mysql.Delete(ctx, issuanceID); err != nil {
		return err
	}
	_ = r.redis.Delete(ctx, issuanceID)
	return nil
}

func (r *compositeIssuanceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.mysql.WithTx(ctx, fn)
}

func (r *compositeIssuanceRepository) NextID(ctx context.Context) (int64, error) {
	return r.mysql.NextID(ctx)
}

func (r *compositeIssuanceRepository) Counter(ctx context.Context) (int64, error) {
	return r.mysql.Counter(ctx)
}

func (r *compositeIssuanceRepository) ListBySeller(ctx context.Context, seller string, limit, offset int) ([]*domain.Issuance, error) {
	// 列表查询不走缓存
	return r.mysql.ListBySeller(ctx, seller, limit, offset)
}

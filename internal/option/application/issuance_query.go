package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// ErrIssuanceNotFound 查询侧的缺失记录（墓碑同样视为缺失）
var ErrIssuanceNotFound = fmt.Errorf("issuance not found")

// IssuanceQuery 处理发行相关的查询操作。
// repo 通常是组合仓储：优先走 Redis 读模型，未命中回源 MySQL。
type IssuanceQuery struct {
	repo   domain.IssuanceRepository
	ledger domain.PositionLedger
}

func NewIssuanceQuery(repo domain.IssuanceRepository, ledger domain.PositionLedger) *IssuanceQuery {
	return &IssuanceQuery{repo: repo, ledger: ledger}
}

// GetIssuance 按 id 查询存活的发行记录
func (q *IssuanceQuery) GetIssuance(ctx context.Context, issuanceID int64) (*IssuanceDTO, error) {
	issuance, err := q.repo.Get(ctx, issuanceID)
	if err != nil {
		return nil, err
	}
	if issuance == nil {
		return nil, ErrIssuanceNotFound
	}
	return toIssuanceDTO(issuance), nil
}

// GetCounter 返回下一个待分配的发行 id（历史发行总数，撤销不回退）
func (q *IssuanceQuery) GetCounter(ctx context.Context) (int64, error) {
	return q.repo.Counter(ctx)
}

// GetBalance 查询持有人在某发行上的持仓
func (q *IssuanceQuery) GetBalance(ctx context.Context, holder string, issuanceID int64) (decimal.Decimal, error) {
	return q.ledger.BalanceOf(ctx, holder, issuanceID)
}

// ListBySeller 查询某卖方的存活发行
func (q *IssuanceQuery) ListBySeller(ctx context.Context, seller string, limit, offset int) ([]*IssuanceDTO, error) {
	issuances, err := q.repo.ListBySeller(ctx, seller, limit, offset)
	if err != nil {
		return nil, err
	}
	dtos := make([]*IssuanceDTO, 0, len(issuances))
	for _, issuance := range issuances {
		dtos = append(dtos, toIssuanceDTO(issuance))
	}
	return dtos, nil
}

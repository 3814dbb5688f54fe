// Package application 持仓账本服务。
package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/position/domain"
)

// Ledger 持仓账本门面。满足期权引擎对持仓铸造、销毁与查询的依赖；
// 仓储对事务上下文敏感，调用方事务内的铸销随之一起提交或回滚。
type Ledger struct {
	repo domain.PositionRepository
}

func NewLedger(repo domain.PositionRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Mint 向持有人铸入份额
func (l *Ledger) Mint(ctx context.Context, holder string, issuanceID int64, amount decimal.Decimal) error {
	position, err := l.repo.Get(ctx, holder, issuanceID)
	if err != nil {
		return err
	}
	if position == nil {
		position = &domain.Position{Holder: holder, IssuanceID: issuanceID, Balance: decimal.Zero}
	}
	position.Credit(amount)
	return l.repo.Save(ctx, position)
}

// Burn 销毁持有人的份额
func (l *Ledger) Burn(ctx context.Context, holder string, issuanceID int64, amount decimal.Decimal) error {
	position, err := l.repo.Get(ctx, holder, issuanceID)
	if err != nil {
		return err
	}
	if position == nil {
		return domain.ErrInsufficientBalance
	}
	if err := position.Debit(amount); err != nil {
		return err
	}
	return l.repo.Save(ctx, position)
}

// BalanceOf 查询持仓，不存在视为零
func (l *Ledger) BalanceOf(ctx context.Context, holder string, issuanceID int64) (decimal.Decimal, error) {
	position, err := l.repo.Get(ctx, holder, issuanceID)
	if err != nil {
		return decimal.Zero, err
	}
	if position == nil {
		return decimal.Zero, nil
	}
	return position.Balance, nil
}

// ListByHolder 查询持有人的全部持仓
func (l *Ledger) ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*domain.Position, error) {
	return l.repo.ListByHolder(ctx, holder, limit, offset)
}

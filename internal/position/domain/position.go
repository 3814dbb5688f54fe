// Package domain 期权持仓账本：按 (发行 id, 持有人) 记账的可行权份额。
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrInsufficientBalance 销毁数量超过持仓
var ErrInsufficientBalance = errors.New("insufficient position balance")

// Position 持仓记录。购买铸造，行权销毁，余额不为负。
type Position struct {
	gorm.Model
	Holder     string          `gorm:"column:holder;type:varchar(64);uniqueIndex:idx_holder_issuance;not null" json:"holder"`
	IssuanceID int64           `gorm:"column:issuance_id;uniqueIndex:idx_holder_issuance;not null" json:"issuance_id"`
	Balance    decimal.Decimal `gorm:"column:balance;type:decimal(65,0);not null" json:"balance"`
}

func (Position) TableName() string {
	return "option_positions"
}

// Credit 铸入份额
func (p *Position) Credit(amount decimal.Decimal) {
	p.Balance = p.Balance.Add(amount)
}

// Debit 销毁份额，余额不足时拒绝
func (p *Position) Debit(amount decimal.Decimal) error {
	if p.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	p.Balance = p.Balance.Sub(amount)
	return nil
}

// PositionRepository 持仓仓储
type PositionRepository interface {
	// Get 不存在时返回 (nil, nil)
	Get(ctx context.Context, holder string, issuanceID int64) (*Position, error)
	Save(ctx context.Context, position *Position) error
	ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*Position, error)
}

// Package domain 资产托管（Custody）领域：代币登记、账户持仓与划转流水。
// 托管账本是生产部署下三种代币标准的权威余额来源。
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrTokenAlreadyRegistered 代币重复登记
	ErrTokenAlreadyRegistered = errors.New("token already registered")
	// ErrInsufficientBalance 可用余额不足
	ErrInsufficientBalance = errors.New("insufficient available balance in vault")
)

// TokenContract 已登记的代币合约及其转账标准（0=ERC20 1=ERC721 2=ERC1155）
type TokenContract struct {
	gorm.Model
	Token    string `gorm:"column:token;type:varchar(64);uniqueIndex;not null" json:"token"`
	Standard int8   `gorm:"column:standard;not null" json:"standard"`
}

func (TokenContract) TableName() string {
	return "custody_token_contracts"
}

// Holding 账户在某代币（按 id 计量）上的持仓。
// ERC-20 固定 token_id=0；ERC-721 的持有者余额恒为 1。
type Holding struct {
	gorm.Model
	Account string          `gorm:"column:account;type:varchar(64);uniqueIndex:idx_account_asset;not null" json:"account"`
	Token   string          `gorm:"column:token;type:varchar(64);uniqueIndex:idx_account_asset;not null" json:"token"`
	TokenID uint64          `gorm:"column:token_id;uniqueIndex:idx_account_asset;not null" json:"token_id"`
	Balance decimal.Decimal `gorm:"column:balance;type:decimal(65,0);not null" json:"balance"`
}

func (Holding) TableName() string {
	return "custody_holdings"
}

// SafeDebit 安全扣减，余额不足时拒绝
func (h *Holding) SafeDebit(amount decimal.Decimal) error {
	if h.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	h.Balance = h.Balance.Sub(amount)
	return nil
}

// SafeCredit 安全入账
func (h *Holding) SafeCredit(amount decimal.Decimal) {
	h.Balance = h.Balance.Add(amount)
}

// TransferRecord 托管划转流水
type TransferRecord struct {
	gorm.Model
	Token       string          `gorm:"column:token;type:varchar(64);index;not null" json:"token"`
	TokenID     uint64          `gorm:"column:token_id;not null" json:"token_id"`
	FromAccount string          `gorm:"column:from_account;type:varchar(64);index;not null" json:"from_account"`
	ToAccount   string          `gorm:"column:to_account;type:varchar(64);index;not null" json:"to_account"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(65,0);not null" json:"amount"`
}

func (TransferRecord) TableName() string {
	return "custody_transfers"
}

// VaultRepository 托管账本仓储
type VaultRepository interface {
	// GetContract 未登记返回 (nil, nil)
	GetContract(ctx context.Context, token string) (*TokenContract, error)
	SaveContract(ctx context.Context, contract *TokenContract) error
	// GetHolding 不存在返回 (nil, nil)
	GetHolding(ctx context.Context, account, token string, tokenID uint64) (*Holding, error)
	SaveHolding(ctx context.Context, holding *Holding) error
	// FindOwner 查找某件 NFT 当前持有者的持仓行
	FindOwner(ctx context.Context, token string, tokenID uint64) (*Holding, error)
	RecordTransfer(ctx context.Context, record *TransferRecord) error
}

package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenStandard 代币转账标准，序号与链上约定对齐：ERC20=0, ERC721=1, ERC1155=2。
type TokenStandard int8

const (
	StandardERC20   TokenStandard = iota // 同质化
	StandardERC721                       // 非同质化
	StandardERC1155                      // 半同质化
)

func (s TokenStandard) String() string {
	switch s {
	case StandardERC20:
		return "ERC20"
	case StandardERC721:
		return "ERC721"
	case StandardERC1155:
		return "ERC1155"
	default:
		return "UNKNOWN"
	}
}

// TokenDirectory 解析代币合约实现的转账标准。
// 仅在创建发行时调用一次，结果缓存在发行记录上。
type TokenDirectory interface {
	// Classify 未命中任何标准时返回 ErrUnknownToken
	Classify(ctx context.Context, token string) (TokenStandard, error)
}

// FungibleTransferor ERC-20 风格的余额转账
type FungibleTransferor interface {
	Transfer(ctx context.Context, token, from, to string, amount decimal.Decimal) error
}

// NonFungibleTransferor ERC-721 风格的单件所有权转移
type NonFungibleTransferor interface {
	Transfer(ctx context.Context, token string, tokenID uint64, from, to string) error
}

// SemiFungibleTransferor ERC-1155 风格的按 id 计量的余额转账
type SemiFungibleTransferor interface {
	Transfer(ctx context.Context, token string, tokenID uint64, from, to string, amount decimal.Decimal) error
}

// TransferAgent 按已解析的标准分发托管资金划转。
// 所有转账要么原子完成要么整体失败，失败原因由后端原样透出；不做重试。
type TransferAgent struct {
	// Vault 合约自身的托管账户
	Vault        string
	Fungible     FungibleTransferor
	NonFungible  NonFungibleTransferor
	SemiFungible SemiFungibleTransferor
}

// Pull 将资产从 from 拉入托管账户
func (a *TransferAgent) Pull(ctx context.Context, std TokenStandard, token string, tokenID uint64, amount decimal.Decimal, from string) error {
	return a.Move(ctx, std, token, tokenID, amount, from, a.Vault)
}

// Push 将托管账户中的资产推给 to
func (a *TransferAgent) Push(ctx context.Context, std TokenStandard, token string, tokenID uint64, amount decimal.Decimal, to string) error {
	return a.Move(ctx, std, token, tokenID, amount, a.Vault, to)
}

// Move 在任意两方之间划转（权利金、行权价可以买卖双方直接结算，不经托管）。
// ERC-721 的数量必须恰好为 1。
func (a *TransferAgent) Move(ctx context.Context, std TokenStandard, token string, tokenID uint64, amount decimal.Decimal, from, to string) error {
	switch std {
	case StandardERC20:
		return a.Fungible.Transfer(ctx, token, from, to, amount)
	case StandardERC721:
		if !amount.Equal(decimal.NewFromInt(1)) {
			return ErrNonFungibleAmount
		}
		return a.NonFungible.Transfer(ctx, token, tokenID, from, to)
	case StandardERC1155:
		return a.SemiFungible.Transfer(ctx, token, tokenID, from, to, amount)
	default:
		return ErrUnknownToken
	}
}

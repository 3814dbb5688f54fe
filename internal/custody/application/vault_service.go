// Package application 托管服务：以托管账本为后端的三种代币标准转账实现。
package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/custody/domain"
	optiondomain "github.com/wyfcoding/optionvault/internal/option/domain"
)

var (
	// ErrIncorrectOwner NFT 划转的出让方不是当前持有者
	ErrIncorrectOwner = errors.New("ERC721: transfer from incorrect owner")
)

// VaultService 托管服务。同时充当代币目录与三种标准的转账后端，
// 仓储对事务上下文敏感，划转加入调用方事务。
type VaultService struct {
	repo domain.VaultRepository
}

func NewVaultService(repo domain.VaultRepository) *VaultService {
	return &VaultService{repo: repo}
}

// RegisterToken 登记代币合约及其转账标准
func (s *VaultService) RegisterToken(ctx context.Context, token string, standard optiondomain.TokenStandard) error {
	existing, err := s.repo.GetContract(ctx, token)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrTokenAlreadyRegistered
	}
	return s.repo.SaveContract(ctx, &domain.TokenContract{Token: token, Standard: int8(standard)})
}

// Classify 解析代币的转账标准，未登记返回 Unknown token
func (s *VaultService) Classify(ctx context.Context, token string) (optiondomain.TokenStandard, error) {
	contract, err := s.repo.GetContract(ctx, token)
	if err != nil {
		return 0, err
	}
	if contract == nil {
		return 0, optiondomain.ErrUnknownToken
	}
	return optiondomain.TokenStandard(contract.Standard), nil
}

// Deposit 入金：向账户托管持仓入账
func (s *VaultService) Deposit(ctx context.Context, token string, tokenID uint64, account string, amount decimal.Decimal) error {
	return s.credit(ctx, token, tokenID, account, amount)
}

// BalanceOf 查询托管持仓，不存在视为零
func (s *VaultService) BalanceOf(ctx context.Context, token string, tokenID uint64, account string) (decimal.Decimal, error) {
	holding, err := s.repo.GetHolding(ctx, account, token, tokenID)
	if err != nil {
		return decimal.Zero, err
	}
	if holding == nil {
		return decimal.Zero, nil
	}
	return holding.Balance, nil
}

// Fungible 返回 ERC-20 转账后端
func (s *VaultService) Fungible() optiondomain.FungibleTransferor { return fungibleVault{s} }

// NonFungible 返回 ERC-721 转账后端
func (s *VaultService) NonFungible() optiondomain.NonFungibleTransferor { return nonFungibleVault{s} }

// SemiFungible 返回 ERC-1155 转账后端
func (s *VaultService) SemiFungible() optiondomain.SemiFungibleTransferor {
	return semiFungibleVault{s}
}

// Agent 构造以托管账本为后端的划转代理
func (s *VaultService) Agent(vault string) *optiondomain.TransferAgent {
	return &optiondomain.TransferAgent{
		Vault:        vault,
		Fungible:     s.Fungible(),
		NonFungible:  s.NonFungible(),
		SemiFungible: s.SemiFungible(),
	}
}

func (s *VaultService) transfer(ctx context.Context, token string, tokenID uint64, from, to string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	fromHolding, err := s.repo.GetHolding(ctx, from, token, tokenID)
	if err != nil {
		return err
	}
	if fromHolding == nil {
		return domain.ErrInsufficientBalance
	}
	if err := fromHolding.SafeDebit(amount); err != nil {
		return err
	}
	if err := s.repo.SaveHolding(ctx, fromHolding); err != nil {
		return err
	}
	if err := s.credit(ctx, token, tokenID, to, amount); err != nil {
		return err
	}
	return s.repo.RecordTransfer(ctx, &domain.TransferRecord{
		Token:       token,
		TokenID:     tokenID,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
	})
}

func (s *VaultService) credit(ctx context.Context, token string, tokenID uint64, account string, amount decimal.Decimal) error {
	holding, err := s.repo.GetHolding(ctx, account, token, tokenID)
	if err != nil {
		return err
	}
	if holding == nil {
		holding = &domain.Holding{Account: account, Token: token, TokenID: tokenID, Balance: decimal.Zero}
	}
	holding.SafeCredit(amount)
	return s.repo.SaveHolding(ctx, holding)
}

type fungibleVault struct{ svc *VaultService }

func (v fungibleVault) Transfer(ctx context.Context, token, from, to string, amount decimal.Decimal) error {
	return v.svc.transfer(ctx, token, 0, from, to, amount)
}

type nonFungibleVault struct{ svc *VaultService }

func (v nonFungibleVault) Transfer(ctx context.Context, token string, tokenID uint64, from, to string) error {
	owner, err := v.svc.repo.FindOwner(ctx, token, tokenID)
	if err != nil {
		return err
	}
	if owner == nil || owner.Account != from {
		return ErrIncorrectOwner
	}
	return v.svc.transfer(ctx, token, tokenID, from, to, decimal.NewFromInt(1))
}

type semiFungibleVault struct{ svc *VaultService }

func (v semiFungibleVault) Transfer(ctx context.Context, token string, tokenID uint64, from, to string, amount decimal.Decimal) error {
	return v.svc.transfer(ctx, token, tokenID, from, to, amount)
}

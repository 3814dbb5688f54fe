// Package token 代币后端的内存实现，供开发模式与测试使用。
// 余额、所有权与授权语义对齐链上代币合约，错误文案原样透出给调用方。
package token

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

var (
	ErrInsufficientAllowance = errors.New("ERC20: insufficient allowance")
	ErrInsufficientBalance   = errors.New("ERC20: transfer amount exceeds balance")
	ErrIncorrectOwner        = errors.New("ERC721: transfer from incorrect owner")
	ErrNotApproved           = errors.New("ERC721: caller is not token owner or approved")
	ErrInsufficient1155      = errors.New("ERC1155: insufficient balance for transfer")
	ErrNotApproved1155       = errors.New("ERC1155: caller is not token owner or approved")
)

type fungibleState struct {
	balances   map[string]decimal.Decimal // account -> balance
	allowances map[string]decimal.Decimal // owner -> allowance granted to the operator
}

type nonFungibleState struct {
	owners      map[uint64]string          // tokenID -> owner
	approvedAll map[string]bool            // owner -> operator approved
	approved    map[uint64]bool            // tokenID -> operator approved
}

type semiFungibleState struct {
	balances    map[uint64]map[string]decimal.Decimal // tokenID -> account -> balance
	approvedAll map[string]bool                       // owner -> operator approved
}

// Bank 内存代币银行：同时充当三种标准的转账后端与代币目录。
// operator 是托管引擎自身的账户；operator 划出自己名下的资产不需要授权，
// 划出他人资产需要事先授权，对齐合约的 transferFrom 语义。
type Bank struct {
	mu       sync.Mutex
	operator string
	erc20    map[string]*fungibleState
	erc721   map[string]*nonFungibleState
	erc1155  map[string]*semiFungibleState
}

func NewBank(operator string) *Bank {
	return &Bank{
		operator: operator,
		erc20:    make(map[string]*fungibleState),
		erc721:   make(map[string]*nonFungibleState),
		erc1155:  make(map[string]*semiFungibleState),
	}
}

// --- 代币目录 ---

func (b *Bank) Classify(ctx context.Context, token string) (domain.TokenStandard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.erc20[token]; ok {
		return domain.StandardERC20, nil
	}
	if _, ok := b.erc721[token]; ok {
		return domain.StandardERC721, nil
	}
	if _, ok := b.erc1155[token]; ok {
		return domain.StandardERC1155, nil
	}
	return 0, domain.ErrUnknownToken
}

// --- 发行与授权（测试与开发环境的铸币水龙头） ---

// RegisterFungible 登记一个 ERC-20 风格代币
func (b *Bank) RegisterFungible(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.erc20[token]; !ok {
		b.erc20[token] = &fungibleState{
			balances:   make(map[string]decimal.Decimal),
			allowances: make(map[string]decimal.Decimal),
		}
	}
}

// RegisterNonFungible 登记一个 ERC-721 风格代币
func (b *Bank) RegisterNonFungible(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.erc721[token]; !ok {
		b.erc721[token] = &nonFungibleState{
			owners:      make(map[uint64]string),
			approvedAll: make(map[string]bool),
			approved:    make(map[uint64]bool),
		}
	}
}

// RegisterSemiFungible 登记一个 ERC-1155 风格代币
func (b *Bank) RegisterSemiFungible(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.erc1155[token]; !ok {
		b.erc1155[token] = &semiFungibleState{
			balances:    make(map[uint64]map[string]decimal.Decimal),
			approvedAll: make(map[string]bool),
		}
	}
}

// MintFungible 向账户铸入余额
func (b *Bank) MintFungible(token, account string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.erc20[token]
	s.balances[account] = s.balances[account].Add(amount)
}

// Approve 账户向 operator 授权可划转额度
func (b *Bank) Approve(token, owner string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.erc20[token].allowances[owner] = amount
}

// MintNonFungible 铸造一件 NFT
func (b *Bank) MintNonFungible(token string, tokenID uint64, owner string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.erc721[token].owners[tokenID] = owner
}

// ApproveNonFungible 对单件 NFT 授权 operator
func (b *Bank) ApproveNonFungible(token string, tokenID uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.erc721[token].approved[tokenID] = true
}

// SetApprovalForAll 账户对 operator 的全量授权（ERC-721 / ERC-1155）
func (b *Bank) SetApprovalForAll(token, owner string, approved bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.erc721[token]; ok {
		s.approvedAll[owner] = approved
	}
	if s, ok := b.erc1155[token]; ok {
		s.approvedAll[owner] = approved
	}
}

// MintSemiFungible 按 id 铸入余额
func (b *Bank) MintSemiFungible(token string, tokenID uint64, account string, amount decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.erc1155[token]
	if s.balances[tokenID] == nil {
		s.balances[tokenID] = make(map[string]decimal.Decimal)
	}
	s.balances[tokenID][account] = s.balances[tokenID][account].Add(amount)
}

// --- 余额查询 ---

// BalanceOfFungible 查询 ERC-20 余额
func (b *Bank) BalanceOfFungible(token, account string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.erc20[token].balances[account]
}

// OwnerOf 查询 NFT 归属
func (b *Bank) OwnerOf(token string, tokenID uint64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.erc721[token].owners[tokenID]
}

// BalanceOfSemiFungible 查询 ERC-1155 余额
func (b *Bank) BalanceOfSemiFungible(token string, tokenID uint64, account string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.erc1155[token]
	if s.balances[tokenID] == nil {
		return decimal.Zero
	}
	return s.balances[tokenID][account]
}

// --- 转账后端 ---

// from 不是 operator 时按 transferFrom 语义扣减授权额度
func (b *Bank) transferFungible(token, from, to string, amount decimal.Decimal) error {
	s, ok := b.erc20[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	if from != b.operator {
		if s.allowances[from].LessThan(amount) {
			return ErrInsufficientAllowance
		}
		s.allowances[from] = s.allowances[from].Sub(amount)
	}
	if s.balances[from].LessThan(amount) {
		return ErrInsufficientBalance
	}
	s.balances[from] = s.balances[from].Sub(amount)
	s.balances[to] = s.balances[to].Add(amount)
	return nil
}

func (b *Bank) transferNonFungible(token string, tokenID uint64, from, to string) error {
	s, ok := b.erc721[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	if s.owners[tokenID] != from {
		return ErrIncorrectOwner
	}
	if from != b.operator && !s.approvedAll[from] && !s.approved[tokenID] {
		return ErrNotApproved
	}
	delete(s.approved, tokenID)
	s.owners[tokenID] = to
	return nil
}

func (b *Bank) transferSemiFungible(token string, tokenID uint64, from, to string, amount decimal.Decimal) error {
	s, ok := b.erc1155[token]
	if !ok {
		return domain.ErrUnknownToken
	}
	if from != b.operator && !s.approvedAll[from] {
		return ErrNotApproved1155
	}
	if s.balances[tokenID] == nil || s.balances[tokenID][from].LessThan(amount) {
		return ErrInsufficient1155
	}
	s.balances[tokenID][from] = s.balances[tokenID][from].Sub(amount)
	s.balances[tokenID][to] = s.balances[tokenID][to].Add(amount)
	return nil
}

// Fungible 返回 ERC-20 转账后端
func (b *Bank) Fungible() domain.FungibleTransferor { return fungibleBackend{b} }

// NonFungible 返回 ERC-721 转账后端
func (b *Bank) NonFungible() domain.NonFungibleTransferor { return nonFungibleBackend{b} }

// SemiFungible 返回 ERC-1155 转账后端
func (b *Bank) SemiFungible() domain.SemiFungibleTransferor { return semiFungibleBackend{b} }

type fungibleBackend struct{ bank *Bank }

func (f fungibleBackend) Transfer(ctx context.Context, token, from, to string, amount decimal.Decimal) error {
	f.bank.mu.Lock()
	defer f.bank.mu.Unlock()
	return f.bank.transferFungible(token, from, to, amount)
}

type nonFungibleBackend struct{ bank *Bank }

func (n nonFungibleBackend) Transfer(ctx context.Context, token string, tokenID uint64, from, to string) error {
	n.bank.mu.Lock()
	defer n.bank.mu.Unlock()
	return n.bank.transferNonFungible(token, tokenID, from, to)
}

type semiFungibleBackend struct{ bank *Bank }

func (s semiFungibleBackend) Transfer(ctx context.Context, token string, tokenID uint64, from, to string, amount decimal.Decimal) error {
	s.bank.mu.Lock()
	defer s.bank.mu.Unlock()
	return s.bank.transferSemiFungible(token, tokenID, from, to, amount)
}

// Agent 构造以该银行为三种后端的托管划转代理
func (b *Bank) Agent() *domain.TransferAgent {
	return &domain.TransferAgent{
		Vault:        b.operator,
		Fungible:     b.Fungible(),
		NonFungible:  b.NonFungible(),
		SemiFungible: b.SemiFungible(),
	}
}

// --- 内存事务参与 ---

type bankSnapshot struct {
	erc20   map[string]*fungibleState
	erc721  map[string]*nonFungibleState
	erc1155 map[string]*semiFungibleState
}

func (b *Bank) Snapshot() any {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := bankSnapshot{
		erc20:   make(map[string]*fungibleState, len(b.erc20)),
		erc721:  make(map[string]*nonFungibleState, len(b.erc721)),
		erc1155: make(map[string]*semiFungibleState, len(b.erc1155)),
	}
	for token, s := range b.erc20 {
		snap.erc20[token] = &fungibleState{
			balances:   cloneDecimalMap(s.balances),
			allowances: cloneDecimalMap(s.allowances),
		}
	}
	for token, s := range b.erc721 {
		clone := &nonFungibleState{
			owners:      make(map[uint64]string, len(s.owners)),
			approvedAll: make(map[string]bool, len(s.approvedAll)),
			approved:    make(map[uint64]bool, len(s.approved)),
		}
		for id, owner := range s.owners {
			clone.owners[id] = owner
		}
		for owner, ok := range s.approvedAll {
			clone.approvedAll[owner] = ok
		}
		for id, ok := range s.approved {
			clone.approved[id] = ok
		}
		snap.erc721[token] = clone
	}
	for token, s := range b.erc1155 {
		clone := &semiFungibleState{
			balances:    make(map[uint64]map[string]decimal.Decimal, len(s.balances)),
			approvedAll: make(map[string]bool, len(s.approvedAll)),
		}
		for id, accounts := range s.balances {
			clone.balances[id] = cloneDecimalMap(accounts)
		}
		for owner, ok := range s.approvedAll {
			clone.approvedAll[owner] = ok
		}
		snap.erc1155[token] = clone
	}
	return snap
}

func (b *Bank) Restore(snapshot any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := snapshot.(bankSnapshot)
	b.erc20 = snap.erc20
	b.erc721 = snap.erc721
	b.erc1155 = snap.erc1155
}

func cloneDecimalMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionvault/internal/custody/domain"
	optiondomain "github.com/wyfcoding/optionvault/internal/option/domain"
)

type holdingKey struct {
	account string
	token   string
	tokenID uint64
}

type fakeVaultRepository struct {
	contracts map[string]*domain.TokenContract
	holdings  map[holdingKey]*domain.Holding
	transfers []*domain.TransferRecord
}

func newFakeVaultRepository() *fakeVaultRepository {
	return &fakeVaultRepository{
		contracts: make(map[string]*domain.TokenContract),
		holdings:  make(map[holdingKey]*domain.Holding),
	}
}

func (r *fakeVaultRepository) GetContract(ctx context.Context, token string) (*domain.TokenContract, error) {
	return r.contracts[token], nil
}

func (r *fakeVaultRepository) SaveContract(ctx context.Context, contract *domain.TokenContract) error {
	r.contracts[contract.Token] = contract
	return nil
}

func (r *fakeVaultRepository) GetHolding(ctx context.Context, account, token string, tokenID uint64) (*domain.Holding, error) {
	return r.holdings[holdingKey{account, token, tokenID}], nil
}

func (r *fakeVaultRepository) SaveHolding(ctx context.Context, holding *domain.Holding) error {
	r.holdings[holdingKey{holding.Account, holding.Token, holding.TokenID}] = holding
	return nil
}

func (r *fakeVaultRepository) FindOwner(ctx context.Context, token string, tokenID uint64) (*domain.Holding, error) {
	for _, holding := range r.holdings {
		if holding.Token == token && holding.TokenID == tokenID && holding.Balance.IsPositive() {
			return holding, nil
		}
	}
	return nil, nil
}

func (r *fakeVaultRepository) RecordTransfer(ctx context.Context, record *domain.TransferRecord) error {
	r.transfers = append(r.transfers, record)
	return nil
}

func TestVaultServiceRegisterAndClassify(t *testing.T) {
	svc := NewVaultService(newFakeVaultRepository())
	ctx := context.Background()

	require.NoError(t, svc.RegisterToken(ctx, "USDC", optiondomain.StandardERC20))
	require.NoError(t, svc.RegisterToken(ctx, "DEED", optiondomain.StandardERC721))

	std, err := svc.Classify(ctx, "USDC")
	require.NoError(t, err)
	assert.Equal(t, optiondomain.StandardERC20, std)

	_, err = svc.Classify(ctx, "DOGE")
	require.ErrorIs(t, err, optiondomain.ErrUnknownToken)
	assert.EqualError(t, err, "Unknown token")

	err = svc.RegisterToken(ctx, "USDC", optiondomain.StandardERC20)
	require.ErrorIs(t, err, domain.ErrTokenAlreadyRegistered)
}

func TestVaultServiceFungibleTransfer(t *testing.T) {
	repo := newFakeVaultRepository()
	svc := NewVaultService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, "USDC", 0, "alice", decimal.NewFromInt(100)))

	err := svc.Fungible().Transfer(ctx, "USDC", "alice", "vault", decimal.NewFromInt(101))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, svc.Fungible().Transfer(ctx, "USDC", "alice", "vault", decimal.NewFromInt(40)))

	balance, err := svc.BalanceOf(ctx, "USDC", 0, "vault")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(40)))

	balance, err = svc.BalanceOf(ctx, "USDC", 0, "alice")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(60)))

	// 每次划转留痕
	require.Len(t, repo.transfers, 1)
	assert.Equal(t, "alice", repo.transfers[0].FromAccount)
}

func TestVaultServiceNonFungibleTransfer(t *testing.T) {
	svc := NewVaultService(newFakeVaultRepository())
	ctx := context.Background()

	require.NoError(t, svc.Deposit(ctx, "DEED", 7, "alice", decimal.NewFromInt(1)))

	err := svc.NonFungible().Transfer(ctx, "DEED", 7, "bob", "vault")
	require.ErrorIs(t, err, ErrIncorrectOwner)

	require.NoError(t, svc.NonFungible().Transfer(ctx, "DEED", 7, "alice", "vault"))

	balance, err := svc.BalanceOf(ctx, "DEED", 7, "vault")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1)))
}

func TestVaultServiceZeroAmountTransferIsNoop(t *testing.T) {
	repo := newFakeVaultRepository()
	svc := NewVaultService(repo)

	require.NoError(t, svc.Fungible().Transfer(context.Background(), "USDC", "alice", "vault", decimal.Zero))
	assert.Empty(t, repo.transfers)
}

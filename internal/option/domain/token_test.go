package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMove struct {
	standard TokenStandard
	token    string
	tokenID  uint64
	from     string
	to       string
	amount   decimal.Decimal
}

type stubBackends struct {
	moves []recordedMove
}

func (s *stubBackends) Transfer(ctx context.Context, token, from, to string, amount decimal.Decimal) error {
	s.moves = append(s.moves, recordedMove{standard: StandardERC20, token: token, from: from, to: to, amount: amount})
	return nil
}

type stubNFT struct{ backends *stubBackends }

func (s stubNFT) Transfer(ctx context.Context, token string, tokenID uint64, from, to string) error {
	s.backends.moves = append(s.backends.moves, recordedMove{standard: StandardERC721, token: token, tokenID: tokenID, from: from, to: to})
	return nil
}

type stubSemi struct{ backends *stubBackends }

func (s stubSemi) Transfer(ctx context.Context, token string, tokenID uint64, from, to string, amount decimal.Decimal) error {
	s.backends.moves = append(s.backends.moves, recordedMove{standard: StandardERC1155, token: token, tokenID: tokenID, from: from, to: to, amount: amount})
	return nil
}

func newStubAgent() (*TransferAgent, *stubBackends) {
	backends := &stubBackends{}
	agent := &TransferAgent{
		Vault:        "vault",
		Fungible:     backends,
		NonFungible:  stubNFT{backends},
		SemiFungible: stubSemi{backends},
	}
	return agent, backends
}

func TestAgentDispatchesByStandard(t *testing.T) {
	agent, backends := newStubAgent()
	ctx := context.Background()

	require.NoError(t, agent.Move(ctx, StandardERC20, "USDC", 0, decimal.NewFromInt(5), "a", "b"))
	require.NoError(t, agent.Move(ctx, StandardERC721, "DEED", 7, decimal.NewFromInt(1), "a", "b"))
	require.NoError(t, agent.Move(ctx, StandardERC1155, "GEMS", 3, decimal.NewFromInt(9), "a", "b"))

	require.Len(t, backends.moves, 3)
	assert.Equal(t, StandardERC20, backends.moves[0].standard)
	assert.Equal(t, StandardERC721, backends.moves[1].standard)
	assert.Equal(t, uint64(7), backends.moves[1].tokenID)
	assert.Equal(t, StandardERC1155, backends.moves[2].standard)
	assert.True(t, backends.moves[2].amount.Equal(decimal.NewFromInt(9)))
}

func TestAgentPullPushUseVaultAccount(t *testing.T) {
	agent, backends := newStubAgent()
	ctx := context.Background()

	require.NoError(t, agent.Pull(ctx, StandardERC20, "USDC", 0, decimal.NewFromInt(5), "alice"))
	require.NoError(t, agent.Push(ctx, StandardERC20, "USDC", 0, decimal.NewFromInt(5), "bob"))

	assert.Equal(t, "alice", backends.moves[0].from)
	assert.Equal(t, "vault", backends.moves[0].to)
	assert.Equal(t, "vault", backends.moves[1].from)
	assert.Equal(t, "bob", backends.moves[1].to)
}

func TestAgentNonFungibleAmountMustBeOne(t *testing.T) {
	agent, backends := newStubAgent()

	err := agent.Move(context.Background(), StandardERC721, "DEED", 7, decimal.NewFromInt(2), "a", "b")
	require.ErrorIs(t, err, ErrNonFungibleAmount)
	assert.Empty(t, backends.moves)
}

func TestAgentUnknownStandard(t *testing.T) {
	agent, _ := newStubAgent()

	err := agent.Move(context.Background(), TokenStandard(9), "X", 0, decimal.NewFromInt(1), "a", "b")
	require.ErrorIs(t, err, ErrUnknownToken)
}

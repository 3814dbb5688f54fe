package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() OptionSpec {
	return OptionSpec{
		Side:                SideCall,
		UnderlyingToken:     "WETH",
		Amount:              decimal.NewFromInt(1_000_000),
		StrikeToken:         "USDC",
		Strike:              decimal.NewFromInt(500_000),
		PremiumToken:        "USDC",
		Premium:             decimal.NewFromInt(30_000),
		ExerciseWindowStart: 2000,
		ExerciseWindowEnd:   3000,
	}
}

func TestSpecValidate(t *testing.T) {
	spec := testSpec()
	require.NoError(t, spec.Validate(1000))

	// 窗口结束时间必须晚于当前时间
	assert.ErrorIs(t, spec.Validate(3000), ErrWindowEnded)
	assert.ErrorIs(t, spec.Validate(4000), ErrWindowEnded)

	bad := testSpec()
	bad.Amount = decimal.Zero
	assert.ErrorIs(t, bad.Validate(1000), ErrInvalidQuantity)

	bad = testSpec()
	bad.Amount = decimal.RequireFromString("1.5")
	assert.ErrorIs(t, bad.Validate(1000), ErrInvalidQuantity)

	bad = testSpec()
	bad.Strike = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(1000), ErrInvalidPrice)

	bad = testSpec()
	bad.Premium = decimal.RequireFromString("0.5")
	assert.ErrorIs(t, bad.Validate(1000), ErrInvalidPrice)

	// 零价格合法
	free := testSpec()
	free.Strike = decimal.Zero
	free.Premium = decimal.Zero
	require.NoError(t, free.Validate(1000))
}

func TestIssuanceWindows(t *testing.T) {
	i := NewIssuance(0, "alice", testSpec(), StandardERC20, StandardERC20, StandardERC20)

	assert.False(t, i.WindowClosed(3000))
	assert.True(t, i.WindowClosed(3001))

	assert.False(t, i.InExerciseWindow(1999))
	assert.True(t, i.InExerciseWindow(2000))
	assert.True(t, i.InExerciseWindow(3000))
	assert.False(t, i.InExerciseWindow(3001))
}

func TestIssuanceCollateral(t *testing.T) {
	call := NewIssuance(0, "alice", testSpec(), StandardERC20, StandardERC20, StandardERC20)
	std, token, _, amount := call.Collateral()
	assert.Equal(t, StandardERC20, std)
	assert.Equal(t, "WETH", token)
	assert.True(t, amount.Equal(decimal.NewFromInt(1_000_000)))

	putSpec := testSpec()
	putSpec.Side = SidePut
	put := NewIssuance(1, "alice", putSpec, StandardERC20, StandardERC20, StandardERC20)
	_, token, _, amount = put.Collateral()
	assert.Equal(t, "USDC", token)
	assert.True(t, amount.Equal(decimal.NewFromInt(500_000)))
}

func TestIssuanceRemainingCollateral(t *testing.T) {
	i := NewIssuance(0, "alice", testSpec(), StandardERC20, StandardERC20, StandardERC20)
	assert.True(t, i.RemainingCollateral().Equal(decimal.NewFromInt(1_000_000)))

	i.ReleasedCollateral = decimal.NewFromInt(300_000)
	assert.True(t, i.RemainingCollateral().Equal(decimal.NewFromInt(700_000)))

	i.ReleasedCollateral = decimal.NewFromInt(1_000_001)
	assert.True(t, i.RemainingCollateral().IsZero())
}

func TestIssuancePricingForPartials(t *testing.T) {
	i := NewIssuance(0, "alice", testSpec(), StandardERC20, StandardERC20, StandardERC20)

	assert.True(t, i.PremiumFor(decimal.NewFromInt(100_000)).Equal(decimal.NewFromInt(3_000)))
	assert.True(t, i.StrikeFor(decimal.NewFromInt(100_000)).Equal(decimal.NewFromInt(50_000)))
}

func TestIssuanceNonFungiblePricingIsIndivisible(t *testing.T) {
	spec := testSpec()
	spec.StrikeToken = "DEED"
	spec.Strike = decimal.NewFromInt(1)
	spec.PremiumToken = "DEED"
	spec.Premium = decimal.NewFromInt(1)
	i := NewIssuance(0, "alice", spec, StandardERC20, StandardERC721, StandardERC721)

	// ERC-721 计价不拆分：无论行权多少份，整体转移
	assert.True(t, i.StrikeFor(decimal.NewFromInt(1)).Equal(decimal.NewFromInt(1)))
	assert.True(t, i.PremiumFor(decimal.NewFromInt(999_999)).Equal(decimal.NewFromInt(1)))
}

func TestIssuanceRemainingToSell(t *testing.T) {
	i := NewIssuance(0, "alice", testSpec(), StandardERC20, StandardERC20, StandardERC20)
	i.SoldOptions = decimal.NewFromInt(400_000)
	assert.True(t, i.RemainingToSell().Equal(decimal.NewFromInt(600_000)))
}

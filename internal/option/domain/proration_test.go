package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProrateExactDivision(t *testing.T) {
	got := Prorate(decimal.NewFromInt(1_000_000), decimal.NewFromInt(30_000), decimal.NewFromInt(100_000))
	assert.True(t, got.Equal(decimal.NewFromInt(3_000)))
}

func TestProrateFloorsTowardZero(t *testing.T) {
	// floor(1 * 10 / 3) = 3
	got := Prorate(decimal.NewFromInt(3), decimal.NewFromInt(10), decimal.NewFromInt(1))
	assert.True(t, got.Equal(decimal.NewFromInt(3)))

	// floor(2 * 10 / 3) = 6
	got = Prorate(decimal.NewFromInt(3), decimal.NewFromInt(10), decimal.NewFromInt(2))
	assert.True(t, got.Equal(decimal.NewFromInt(6)))
}

func TestProrateZeroFloorIsFree(t *testing.T) {
	got := Prorate(decimal.NewFromInt(1_000_000), decimal.NewFromInt(1), decimal.NewFromInt(999))
	assert.True(t, got.IsZero())
}

func TestProrateFullQuantityPaysFullPrice(t *testing.T) {
	got := Prorate(decimal.NewFromInt(7), decimal.NewFromInt(13), decimal.NewFromInt(7))
	assert.True(t, got.Equal(decimal.NewFromInt(13)))
}

func TestProrateZeroTotalQuantity(t *testing.T) {
	got := Prorate(decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(1))
	assert.True(t, got.IsZero())
}

func TestProrateLargeValuesStayExact(t *testing.T) {
	total, _ := decimal.NewFromString("1000000000000000000000000")
	price, _ := decimal.NewFromString("333333333333333333333333")
	partial, _ := decimal.NewFromString("3")
	// floor(3 * price / total) = 0（整数精确运算，无浮点误差）
	assert.True(t, Prorate(total, price, partial).IsZero())

	partial, _ = decimal.NewFromString("999999999999999999999999")
	want, _ := decimal.NewFromString("333333333333333333333332")
	assert.True(t, Prorate(total, price, partial).Equal(want))
}

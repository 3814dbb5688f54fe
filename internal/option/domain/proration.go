package domain

import "github.com/shopspring/decimal"

// Prorate 计算 partialQty / totalQty 份额对应的应付价格：
//
//	floor(partialQty * totalPrice / totalQty)
//
// 全程精确整数运算（QuoRem），绝不引入浮点或有理数，否则可观测的
// 结算金额会发生变化。正数入参下商为截断（即向下取整）。
// 份额很小时结果可能取整到 0：此时该份额免费成交，属于约定行为而非错误。
func Prorate(totalQty, totalPrice, partialQty decimal.Decimal) decimal.Decimal {
	if totalQty.IsZero() {
		return decimal.Zero
	}
	q, _ := partialQty.Mul(totalPrice).QuoRem(totalQty, 0)
	return q
}

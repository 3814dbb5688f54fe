// Package domain 期权金库（Options Vault）的领域模型：
// 发行（Issuance）状态机、三种代币标准的统一转账抽象、按比例结算运算。
package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Side 期权方向
type Side int8

const (
	SideCall Side = iota // 看涨
	SidePut              // 看跌
)

// OptionSpec 卖方提交的发行条款。
// 金额均以代币最小单位的整数计；strike 与 premium 是整个发行的总价。
type OptionSpec struct {
	Side                Side            `json:"side"`
	UnderlyingToken     string          `json:"underlying_token"`
	UnderlyingTokenID   uint64          `json:"underlying_token_id"`
	Amount              decimal.Decimal `json:"amount"`
	StrikeToken         string          `json:"strike_token"`
	StrikeTokenID       uint64          `json:"strike_token_id"`
	Strike              decimal.Decimal `json:"strike"`
	PremiumToken        string          `json:"premium_token"`
	PremiumTokenID      uint64          `json:"premium_token_id"`
	Premium             decimal.Decimal `json:"premium"`
	ExerciseWindowStart int64           `json:"exercise_window_start"`
	ExerciseWindowEnd   int64           `json:"exercise_window_end"`
}

// Validate 校验发行条款。now 为当前 Unix 秒。
func (s OptionSpec) Validate(now int64) error {
	if s.ExerciseWindowEnd <= now {
		return ErrWindowEnded
	}
	if !s.Amount.IsInteger() || !s.Amount.IsPositive() {
		return ErrInvalidQuantity
	}
	if !s.Strike.IsInteger() || s.Strike.IsNegative() {
		return ErrInvalidPrice
	}
	if !s.Premium.IsInteger() || s.Premium.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Issuance 发行实体。
// 合约自 0 起顺序编号；seller 为空即墓碑（不存在或已结清）。
type Issuance struct {
	gorm.Model
	IssuanceID          int64           `gorm:"column:issuance_id;uniqueIndex;not null" json:"issuance_id"`
	Seller              string          `gorm:"column:seller;type:varchar(64);index;not null" json:"seller"`
	Side                Side            `gorm:"column:side;not null" json:"side"`
	UnderlyingToken     string          `gorm:"column:underlying_token;type:varchar(64);not null" json:"underlying_token"`
	UnderlyingTokenID   uint64          `gorm:"column:underlying_token_id;not null" json:"underlying_token_id"`
	Amount              decimal.Decimal `gorm:"column:amount;type:decimal(65,0);not null" json:"amount"`
	StrikeToken         string          `gorm:"column:strike_token;type:varchar(64);not null" json:"strike_token"`
	StrikeTokenID       uint64          `gorm:"column:strike_token_id;not null" json:"strike_token_id"`
	Strike              decimal.Decimal `gorm:"column:strike;type:decimal(65,0);not null" json:"strike"`
	PremiumToken        string          `gorm:"column:premium_token;type:varchar(64);not null" json:"premium_token"`
	PremiumTokenID      uint64          `gorm:"column:premium_token_id;not null" json:"premium_token_id"`
	Premium             decimal.Decimal `gorm:"column:premium;type:decimal(65,0);not null" json:"premium"`
	ExerciseWindowStart int64           `gorm:"column:exercise_window_start;not null" json:"exercise_window_start"`
	ExerciseWindowEnd   int64           `gorm:"column:exercise_window_end;not null" json:"exercise_window_end"`
	// 三种资产的标准在创建时解析一次并缓存，之后不再探测，
	// 避免代币在生命周期中途改报标准。
	UnderlyingTokenType TokenStandard `gorm:"column:underlying_token_type;not null" json:"underlying_token_type"`
	StrikeTokenType     TokenStandard `gorm:"column:strike_token_type;not null" json:"strike_token_type"`
	PremiumTokenType    TokenStandard `gorm:"column:premium_token_type;not null" json:"premium_token_type"`

	SoldOptions      decimal.Decimal `gorm:"column:sold_options;type:decimal(65,0);not null" json:"sold_options"`
	ExercisedOptions decimal.Decimal `gorm:"column:exercised_options;type:decimal(65,0);not null" json:"exercised_options"`
	// ReleasedCollateral 累计已从托管释放的抵押数量（Call: 标的单位，Put: 行权价单位），
	// 回收时据此推回剩余托管，整除截断的尾差也一并归还卖方。
	ReleasedCollateral decimal.Decimal `gorm:"column:released_collateral;type:decimal(65,0);not null" json:"released_collateral"`
}

func (Issuance) TableName() string {
	return "option_issuances"
}

// NewIssuance 由条款构造发行记录，抵押尚未入库。
func NewIssuance(id int64, seller string, spec OptionSpec, underlying, strike, premium TokenStandard) *Issuance {
	return &Issuance{
		IssuanceID:          id,
		Seller:              seller,
		Side:                spec.Side,
		UnderlyingToken:     spec.UnderlyingToken,
		UnderlyingTokenID:   spec.UnderlyingTokenID,
		Amount:              spec.Amount,
		StrikeToken:         spec.StrikeToken,
		StrikeTokenID:       spec.StrikeTokenID,
		Strike:              spec.Strike,
		PremiumToken:        spec.PremiumToken,
		PremiumTokenID:      spec.PremiumTokenID,
		Premium:             spec.Premium,
		ExerciseWindowStart: spec.ExerciseWindowStart,
		ExerciseWindowEnd:   spec.ExerciseWindowEnd,
		UnderlyingTokenType: underlying,
		StrikeTokenType:     strike,
		PremiumTokenType:    premium,
		SoldOptions:         decimal.Zero,
		ExercisedOptions:    decimal.Zero,
		ReleasedCollateral:  decimal.Zero,
	}
}

// RemainingToSell 剩余可售数量
func (i *Issuance) RemainingToSell() decimal.Decimal {
	return i.Amount.Sub(i.SoldOptions)
}

// WindowClosed 购买与行权的截止判断
func (i *Issuance) WindowClosed(now int64) bool {
	return now > i.ExerciseWindowEnd
}

// InExerciseWindow 当前时间是否落在行权窗口内
func (i *Issuance) InExerciseWindow(now int64) bool {
	return now >= i.ExerciseWindowStart && now <= i.ExerciseWindowEnd
}

// Collateral 返回该发行在托管中锁定的抵押资产：
// Call 锁定全部标的，Put 锁定整个发行的行权总价。
func (i *Issuance) Collateral() (std TokenStandard, token string, tokenID uint64, amount decimal.Decimal) {
	if i.Side == SideCall {
		return i.UnderlyingTokenType, i.UnderlyingToken, i.UnderlyingTokenID, i.Amount
	}
	return i.StrikeTokenType, i.StrikeToken, i.StrikeTokenID, i.Strike
}

// RemainingCollateral 托管中尚未释放的抵押数量
func (i *Issuance) RemainingCollateral() decimal.Decimal {
	_, _, _, total := i.Collateral()
	remaining := total.Sub(i.ReleasedCollateral)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// StrikeFor 计算行权 quantity 份所需支付的行权价。
// ERC-721 计价不可分割，不做按比例拆分，整体转移（0 或 1 个）。
func (i *Issuance) StrikeFor(quantity decimal.Decimal) decimal.Decimal {
	if i.StrikeTokenType == StandardERC721 {
		return i.Strike
	}
	return Prorate(i.Amount, i.Strike, quantity)
}

// PremiumFor 计算购买 quantity 份应付的权利金，规则同 StrikeFor。
func (i *Issuance) PremiumFor(quantity decimal.Decimal) decimal.Decimal {
	if i.PremiumTokenType == StandardERC721 {
		return i.Premium
	}
	return Prorate(i.Amount, i.Premium, quantity)
}

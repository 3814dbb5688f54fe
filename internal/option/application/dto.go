package application

import (
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// IssuanceDTO 发行记录的对外视图，金额一律以十进制字符串表示
type IssuanceDTO struct {
	IssuanceID          int64  `json:"issuance_id"`
	Seller              string `json:"seller"`
	Side                int8   `json:"side"`
	UnderlyingToken     string `json:"underlying_token"`
	UnderlyingTokenID   uint64 `json:"underlying_token_id"`
	Amount              string `json:"amount"`
	StrikeToken         string `json:"strike_token"`
	StrikeTokenID       uint64 `json:"strike_token_id"`
	Strike              string `json:"strike"`
	PremiumToken        string `json:"premium_token"`
	PremiumTokenID      uint64 `json:"premium_token_id"`
	Premium             string `json:"premium"`
	ExerciseWindowStart int64  `json:"exercise_window_start"`
	ExerciseWindowEnd   int64  `json:"exercise_window_end"`
	UnderlyingTokenType int8   `json:"underlying_token_type"`
	StrikeTokenType     int8   `json:"strike_token_type"`
	PremiumTokenType    int8   `json:"premium_token_type"`
	SoldOptions         string `json:"sold_options"`
	ExercisedOptions    string `json:"exercised_options"`
	CreatedAt           int64  `json:"created_at"`
	UpdatedAt           int64  `json:"updated_at"`
}

// BuyReceiptDTO 购买回执：实际成交数量（可能被剩余量截断）与实付权利金
type BuyReceiptDTO struct {
	IssuanceID  int64  `json:"issuance_id"`
	Buyer       string `json:"buyer"`
	Filled      string `json:"filled"`
	PremiumPaid string `json:"premium_paid"`
}

// ExerciseReceiptDTO 行权回执
type ExerciseReceiptDTO struct {
	IssuanceID int64  `json:"issuance_id"`
	Holder     string `json:"holder"`
	Exercised  string `json:"exercised"`
	StrikePaid string `json:"strike_paid"`
}

func toIssuanceDTO(i *domain.Issuance) *IssuanceDTO {
	return &IssuanceDTO{
		IssuanceID:          i.IssuanceID,
		Seller:              i.Seller,
		Side:                int8(i.Side),
		UnderlyingToken:     i.UnderlyingToken,
		UnderlyingTokenID:   i.UnderlyingTokenID,
		Amount:              i.Amount.String(),
		StrikeToken:         i.StrikeToken,
		StrikeTokenID:       i.StrikeTokenID,
		Strike:              i.Strike.String(),
		PremiumToken:        i.PremiumToken,
		PremiumTokenID:      i.PremiumTokenID,
		Premium:             i.Premium.String(),
		ExerciseWindowStart: i.ExerciseWindowStart,
		ExerciseWindowEnd:   i.ExerciseWindowEnd,
		UnderlyingTokenType: int8(i.UnderlyingTokenType),
		StrikeTokenType:     int8(i.StrikeTokenType),
		PremiumTokenType:    int8(i.PremiumTokenType),
		SoldOptions:         i.SoldOptions.String(),
		ExercisedOptions:    i.ExercisedOptions.String(),
		CreatedAt:           i.CreatedAt.Unix(),
		UpdatedAt:           i.UpdatedAt.Unix(),
	}
}

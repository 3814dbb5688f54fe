package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 事件主题，同时用作 outbox topic 与 kafka topic
const (
	IssuanceCreatedEventType     = "option.issuance.created"
	OptionsBoughtEventType       = "option.issuance.bought"
	IssuanceCanceledEventType    = "option.issuance.canceled"
	PremiumUpdatedEventType      = "option.issuance.premium_updated"
	OptionsExercisedEventType    = "option.issuance.exercised"
	CollateralReclaimedEventType = "option.issuance.reclaimed"
)

// IssuanceEvent 发行生命周期领域事件。
// 每次成功的状态迁移恰好发出一个事件，失败的调用不触碰事件流。
type IssuanceEvent interface {
	EventType() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// IssuanceCreatedEvent 发行创建
type IssuanceCreatedEvent struct {
	BaseEvent
	IssuanceID int64      `json:"issuance_id"`
	Seller     string     `json:"seller"`
	Spec       OptionSpec `json:"spec"`
}

func (e IssuanceCreatedEvent) EventType() string { return IssuanceCreatedEventType }

// OptionsBoughtEvent 期权购买，携带实际成交数量与已付权利金
type OptionsBoughtEvent struct {
	BaseEvent
	IssuanceID  int64           `json:"issuance_id"`
	Buyer       string          `json:"buyer"`
	Amount      decimal.Decimal `json:"amount"`
	PremiumPaid decimal.Decimal `json:"premium_paid"`
}

func (e OptionsBoughtEvent) EventType() string { return OptionsBoughtEventType }

// IssuanceCanceledEvent 未售出发行被卖方撤销
type IssuanceCanceledEvent struct {
	BaseEvent
	IssuanceID int64  `json:"issuance_id"`
	Seller     string `json:"seller"`
}

func (e IssuanceCanceledEvent) EventType() string { return IssuanceCanceledEventType }

// PremiumUpdatedEvent 权利金条款变更
type PremiumUpdatedEvent struct {
	BaseEvent
	IssuanceID int64           `json:"issuance_id"`
	Premium    decimal.Decimal `json:"premium"`
}

func (e PremiumUpdatedEvent) EventType() string { return PremiumUpdatedEventType }

// OptionsExercisedEvent 持仓行权
type OptionsExercisedEvent struct {
	BaseEvent
	IssuanceID int64           `json:"issuance_id"`
	Holder     string          `json:"holder"`
	Amount     decimal.Decimal `json:"amount"`
	StrikePaid decimal.Decimal `json:"strike_paid"`
}

func (e OptionsExercisedEvent) EventType() string { return OptionsExercisedEventType }

// CollateralReclaimedEvent 窗口结束后卖方回收剩余托管
type CollateralReclaimedEvent struct {
	BaseEvent
	IssuanceID int64           `json:"issuance_id"`
	Seller     string          `json:"seller"`
	Amount     decimal.Decimal `json:"amount"`
}

func (e CollateralReclaimedEvent) EventType() string { return CollateralReclaimedEventType }

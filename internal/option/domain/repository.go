package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// IssuanceRepository 发行登记簿（Registry）。记录的创建、变更与删除只经由此接口。
type IssuanceRepository interface {
	// WithTx 在单个事务内执行 fn；fn 返回错误时整体回滚，
	// 保证每次状态迁移对外要么完整可见要么完全不可见。
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// NextID 分配下一个顺序发行 id（自 0 起），必须在事务内调用
	NextID(ctx context.Context) (int64, error)
	// Counter 返回下一个待分配的 id，即历史发行总数
	Counter(ctx context.Context) (int64, error)
	// Save 保存或更新发行记录
	Save(ctx context.Context, issuance *Issuance) error
	// Get 按发行 id 读取，不存在时返回 (nil, nil)
	Get(ctx context.Context, issuanceID int64) (*Issuance, error)
	// Delete 删除记录（墓碑化：之后 Get 返回 nil，id 不复用）
	Delete(ctx context.Context, issuanceID int64) error
	// ListBySeller 查询某卖方的存活发行
	ListBySeller(ctx context.Context, seller string, limit, offset int) ([]*Issuance, error)
}

// IssuanceReadRepository 查询侧的只读缓存（Redis 读模型）
type IssuanceReadRepository interface {
	Save(ctx context.Context, issuance *Issuance) error
	Get(ctx context.Context, issuanceID int64) (*Issuance, error)
	Delete(ctx context.Context, issuanceID int64) error
}

// EventStore 追加式生命周期事件存储，用于审计与投影重建
type EventStore interface {
	Append(ctx context.Context, issuanceID int64, events []IssuanceEvent) error
}

// EventPublisher 集成事件发布。实现通过 ctx 中携带的事务加入 Outbox，
// 与状态迁移同事务提交。
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// PositionLedger 外部持仓账本：按 (发行 id, 持有人) 记账的期权份额。
// 购买时铸造，行权时销毁。
type PositionLedger interface {
	Mint(ctx context.Context, holder string, issuanceID int64, amount decimal.Decimal) error
	Burn(ctx context.Context, holder string, issuanceID int64, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, holder string, issuanceID int64) (decimal.Decimal, error)
}

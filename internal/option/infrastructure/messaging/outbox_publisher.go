// Package messaging 基于 Outbox 模式的集成事件发布。
package messaging

import (
	"context"

	"github.com/wyfcoding/optionvault/internal/option/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"gorm.io/gorm"
)

// outboxPublisher 将集成事件写入 outbox 表，与业务状态同事务提交，
// 由 outbox 中继异步投递到 Kafka。
type outboxPublisher struct {
	manager *outbox.Manager
}

func NewOutboxPublisher(manager *outbox.Manager) domain.EventPublisher {
	return &outboxPublisher{manager: manager}
}

// Publish 写入 outbox。ctx 中携带事务时加入该事务，
// 保证事件与状态迁移一起提交或一起回滚。
func (p *outboxPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	db := p.manager.DB()
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		db = tx
	}
	return p.manager.PublishInTx(ctx, db, topic, key, event)
}

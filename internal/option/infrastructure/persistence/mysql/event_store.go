package mysql

import (
	"context"
	"encoding/json"

	"github.com/wyfcoding/optionvault/internal/option/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

// eventStore 追加式事件存储实现
type eventStore struct {
	db *gorm.DB
}

func NewEventStore(db *gorm.DB) domain.EventStore {
	return &eventStore{db: db}
}

func (s *eventStore) Append(ctx context.Context, issuanceID int64, events []domain.IssuanceEvent) error {
	db := s.getDB(ctx)

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		po := &EventPO{
			IssuanceID: issuanceID,
			EventType:  event.EventType(),
			Payload:    string(payload),
			OccurredAt: event.OccurredAt().UnixNano(),
		}
		if err := db.Create(po).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *eventStore) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return s.db
}

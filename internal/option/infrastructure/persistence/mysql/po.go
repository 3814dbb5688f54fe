package mysql

// CounterPO 发行 id 计数器，单行表。
// 撤销会物理移除发行记录，因此 id 序列由独立计数器维护，只增不回退。
type CounterPO struct {
	ID     uint  `gorm:"primaryKey"`
	NextID int64 `gorm:"column:next_id;not null"`
}

func (CounterPO) TableName() string {
	return "option_issuance_counter"
}

// EventPO 生命周期事件存储对象
type EventPO struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	IssuanceID int64  `gorm:"column:issuance_id;index;not null"`
	EventType  string `gorm:"column:event_type;type:varchar(64);not null"`
	Payload    string `gorm:"column:payload;type:json;not null"`
	OccurredAt int64  `gorm:"column:occurred_at;not null"`
}

func (EventPO) TableName() string {
	return "option_issuance_events"
}

package memory

import (
	"context"
	"sync"

	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// EventLog 内存事件存储，按发生顺序追加
type EventLog struct {
	mu      sync.Mutex
	entries []LoggedEvent
}

// LoggedEvent 一条已存储的生命周期事件
type LoggedEvent struct {
	IssuanceID int64
	Event      domain.IssuanceEvent
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Append(ctx context.Context, issuanceID int64, events []domain.IssuanceEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, event := range events {
		l.entries = append(l.entries, LoggedEvent{IssuanceID: issuanceID, Event: event})
	}
	return nil
}

// Entries 返回事件流副本
func (l *EventLog) Entries() []LoggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoggedEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) Snapshot() any {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoggedEvent, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *EventLog) Restore(snapshot any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = snapshot.([]LoggedEvent)
}

// EventRecorder 内存事件发布器，记录发往 outbox 的消息
type EventRecorder struct {
	mu       sync.Mutex
	messages []RecordedMessage
}

// RecordedMessage 一条待发布的集成事件
type RecordedMessage struct {
	Topic string
	Key   string
	Event any
}

func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

func (r *EventRecorder) Publish(ctx context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, RecordedMessage{Topic: topic, Key: key, Event: event})
	return nil
}

// Messages 返回已记录消息的副本
func (r *EventRecorder) Messages() []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *EventRecorder) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *EventRecorder) Restore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = snapshot.([]RecordedMessage)
}

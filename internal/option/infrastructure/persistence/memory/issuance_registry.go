// Package memory 发行登记簿的内存实现，供开发模式与测试使用。
// 事务语义：全局互斥锁串行化，失败时按快照整体回滚。
package memory

import (
	"context"
	"sync"

	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// Snapshotter 参与内存事务的组件：事务开始时快照，失败时恢复。
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

// IssuanceRegistry 内存发行登记簿
type IssuanceRegistry struct {
	mu           sync.Mutex
	records      map[int64]*domain.Issuance
	nextID       int64
	participants []Snapshotter
}

// NewIssuanceRegistry 构造内存登记簿。participants 中的组件
// （持仓账本、代币后端等）与登记簿一起参与事务回滚。
func NewIssuanceRegistry(participants ...Snapshotter) *IssuanceRegistry {
	return &IssuanceRegistry{
		records:      make(map[int64]*domain.Issuance),
		participants: participants,
	}
}

type txKey struct{}

// lock 获取互斥锁；事务内的调用已持锁，直接放行
func (r *IssuanceRegistry) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *IssuanceRegistry) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshots := make([]any, len(r.participants))
	for i, p := range r.participants {
		snapshots[i] = p.Snapshot()
	}
	registrySnapshot := r.snapshotLocked()

	if err := fn(context.WithValue(ctx, txKey{}, r)); err != nil {
		r.restoreLocked(registrySnapshot)
		for i, p := range r.participants {
			p.Restore(snapshots[i])
		}
		return err
	}
	return nil
}

func (r *IssuanceRegistry) NextID(ctx context.Context) (int64, error) {
	defer r.lock(ctx)()
	id := r.nextID
	r.nextID++
	return id, nil
}

func (r *IssuanceRegistry) Counter(ctx context.Context) (int64, error) {
	defer r.lock(ctx)()
	return r.nextID, nil
}

func (r *IssuanceRegistry) Save(ctx context.Context, issuance *domain.Issuance) error {
	defer r.lock(ctx)()
	clone := *issuance
	r.records[issuance.IssuanceID] = &clone
	return nil
}

func (r *IssuanceRegistry) Get(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	defer r.lock(ctx)()
	issuance, ok := r.records[issuanceID]
	if !ok {
		return nil, nil
	}
	clone := *issuance
	return &clone, nil
}

func (r *IssuanceRegistry) Delete(ctx context.Context, issuanceID int64) error {
	defer r.lock(ctx)()
	delete(r.records, issuanceID)
	return nil
}

func (r *IssuanceRegistry) ListBySeller(ctx context.Context, seller string, limit, offset int) ([]*domain.Issuance, error) {
	defer r.lock(ctx)()
	matched := make([]*domain.Issuance, 0)
	for id := int64(0); id < r.nextID; id++ {
		issuance, ok := r.records[id]
		if !ok || issuance.Seller != seller {
			continue
		}
		clone := *issuance
		matched = append(matched, &clone)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

type registrySnapshot struct {
	records map[int64]*domain.Issuance
	nextID  int64
}

func (r *IssuanceRegistry) snapshotLocked() registrySnapshot {
	records := make(map[int64]*domain.Issuance, len(r.records))
	for id, issuance := range r.records {
		clone := *issuance
		records[id] = &clone
	}
	return registrySnapshot{records: records, nextID: r.nextID}
}

func (r *IssuanceRegistry) restoreLocked(s registrySnapshot) {
	r.records = s.records
	r.nextID = s.nextID
}

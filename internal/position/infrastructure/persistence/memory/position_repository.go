// Package memory 持仓仓储的内存实现，供开发模式与测试使用。
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wyfcoding/optionvault/internal/position/domain"
)

type key struct {
	holder     string
	issuanceID int64
}

// PositionRepository 内存持仓仓储，可参与内存事务回滚
type PositionRepository struct {
	mu        sync.Mutex
	positions map[key]*domain.Position
}

func NewPositionRepository() *PositionRepository {
	return &PositionRepository{positions: make(map[key]*domain.Position)}
}

func (r *PositionRepository) Get(ctx context.Context, holder string, issuanceID int64) (*domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	position, ok := r.positions[key{holder, issuanceID}]
	if !ok {
		return nil, nil
	}
	clone := *position
	return &clone, nil
}

func (r *PositionRepository) Save(ctx context.Context, position *domain.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *position
	r.positions[key{position.Holder, position.IssuanceID}] = &clone
	return nil
}

func (r *PositionRepository) ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*domain.Position, 0)
	for k, position := range r.positions {
		if k.holder != holder {
			continue
		}
		clone := *position
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].IssuanceID < matched[j].IssuanceID })

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *PositionRepository) Snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[key]*domain.Position, len(r.positions))
	for k, position := range r.positions {
		clone := *position
		snap[k] = &clone
	}
	return snap
}

func (r *PositionRepository) Restore(snapshot any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = snapshot.(map[key]*domain.Position)
}

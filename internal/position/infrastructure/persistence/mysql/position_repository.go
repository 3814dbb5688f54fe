// Package mysql 持仓仓储的 MySQL 实现。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionvault/internal/position/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type positionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Get(ctx context.Context, holder string, issuanceID int64) (*domain.Position, error) {
	var position domain.Position
	err := r.getDB(ctx).WithContext(ctx).
		Where("holder = ? AND issuance_id = ?", holder, issuanceID).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *positionRepository) Save(ctx context.Context, position *domain.Position) error {
	return r.getDB(ctx).WithContext(ctx).Save(position).Error
}

func (r *positionRepository) ListByHolder(ctx context.Context, holder string, limit, offset int) ([]*domain.Position, error) {
	var positions []*domain.Position
	err := r.getDB(ctx).WithContext(ctx).Where("holder = ?", holder).
		Order("issuance_id ASC").Limit(limit).Offset(offset).Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *positionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

// Package mysql 发行登记簿的 MySQL 实现。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionvault/internal/option/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// issuanceRepository 发行仓储实现
type issuanceRepository struct {
	db *gorm.DB
}

func NewIssuanceRepository(db *gorm.DB) domain.IssuanceRepository {
	return &issuanceRepository{db: db}
}

func (r *issuanceRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

// NextID 分配下一个顺序发行 id，计数器行加排它锁以保证并发唯一。
func (r *issuanceRepository) NextID(ctx context.Context) (int64, error) {
	db := r.getDB(ctx)

	var po CounterPO
	err := db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", 1).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		po = CounterPO{ID: 1, NextID: 1}
		if err := db.WithContext(ctx).Create(&po).Error; err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	id := po.NextID
	if err := db.WithContext(ctx).Model(&CounterPO{}).
		Where("id = ?", 1).Update("next_id", id+1).Error; err != nil {
		return 0, err
	}
	return id, nil
}

func (r *issuanceRepository) Counter(ctx context.Context) (int64, error) {
	var po CounterPO
	err := r.getDB(ctx).WithContext(ctx).Where("id = ?", 1).First(&po).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return po.NextID, nil
}

func (r *issuanceRepository) Save(ctx context.Context, issuance *domain.Issuance) error {
	return r.getDB(ctx).WithContext(ctx).Save(issuance).Error
}

func (r *issuanceRepository) Get(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	var issuance domain.Issuance
	err := r.getDB(ctx).WithContext(ctx).Where("issuance_id = ?", issuanceID).First(&issuance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issuance, nil
}

// Delete 软删除：记录从所有查询中消失，id 不复用，行保留作审计。
func (r *issuanceRepository) Delete(ctx context.Context, issuanceID int64) error {
	return r.getDB(ctx).WithContext(ctx).
		Where("issuance_id = ?", issuanceID).Delete(&domain.Issuance{}).Error
}

func (r *issuanceRepository) ListBySeller(ctx context.Context, seller string, limit, offset int) ([]*domain.Issuance, error) {
	var issuances []*domain.Issuance
	err := r.getDB(ctx).WithContext(ctx).Where("seller = ?", seller).
		Order("issuance_id ASC").Limit(limit).Offset(offset).Find(&issuances).Error
	if err != nil {
		return nil, err
	}
	return issuances, nil
}

func (r *issuanceRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

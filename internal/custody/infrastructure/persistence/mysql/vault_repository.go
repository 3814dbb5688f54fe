// Package mysql 托管账本仓储的 MySQL 实现。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionvault/internal/custody/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type vaultRepository struct {
	db *gorm.DB
}

func NewVaultRepository(db *gorm.DB) domain.VaultRepository {
	return &vaultRepository{db: db}
}

func (r *vaultRepository) GetContract(ctx context.Context, token string) (*domain.TokenContract, error) {
	var contract domain.TokenContract
	err := r.getDB(ctx).WithContext(ctx).Where("token = ?", token).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *vaultRepository) SaveContract(ctx context.Context, contract *domain.TokenContract) error {
	return r.getDB(ctx).WithContext(ctx).Save(contract).Error
}

func (r *vaultRepository) GetHolding(ctx context.Context, account, token string, tokenID uint64) (*domain.Holding, error) {
	var holding domain.Holding
	err := r.getDB(ctx).WithContext(ctx).
		Where("account = ? AND token = ? AND token_id = ?", account, token, tokenID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (r *vaultRepository) SaveHolding(ctx context.Context, holding *domain.Holding) error {
	return r.getDB(ctx).WithContext(ctx).Save(holding).Error
}

func (r *vaultRepository) FindOwner(ctx context.Context, token string, tokenID uint64) (*domain.Holding, error) {
	var holding domain.Holding
	err := r.getDB(ctx).WithContext(ctx).
		Where("token = ? AND token_id = ? AND balance > 0", token, tokenID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

func (r *vaultRepository) RecordTransfer(ctx context.Context, record *domain.TransferRecord) error {
	return r.getDB(ctx).WithContext(ctx).Create(record).Error
}

func (r *vaultRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

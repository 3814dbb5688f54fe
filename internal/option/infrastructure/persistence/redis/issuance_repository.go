// Package redis 发行查询侧的 Redis 读模型。
package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

type issuanceRedisRepository struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewIssuanceRedisRepository(client redis.UniversalClient) domain.IssuanceReadRepository {
	return &issuanceRedisRepository{
		client: client,
		prefix: "option:issuance:",
		ttl:    24 * time.Hour,
	}
}

func (r *issuanceRedisRepository) Save(ctx context.Context, issuance *domain.Issuance) error {
	if issuance == nil {
		return nil
	}
	data, err := json.Marshal(issuance)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(issuance.IssuanceID), data, r.ttl).Err()
}

func (r *issuanceRedisRepository) Get(ctx context.Context, issuanceID int64) (*domain.Issuance, error) {
	data, err := r.client.Get(ctx, r.key(issuanceID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var issuance domain.Issuance
	if err := json.Unmarshal(data, &issuance); err != nil {
		return nil, err
	}
	return &issuance, nil
}

func (r *issuanceRedisRepository) Delete(ctx context.Context, issuanceID int64) error {
	return r.client.Del(ctx, r.key(issuanceID)).Err()
}

func (r *issuanceRedisRepository) key(id int64) string {
	return r.prefix + strconv.FormatInt(id, 10)
}

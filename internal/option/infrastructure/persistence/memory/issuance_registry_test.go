package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

func newTestIssuance(id int64) *domain.Issuance {
	spec := domain.OptionSpec{
		Side:                domain.SideCall,
		UnderlyingToken:     "WETH",
		Amount:              decimal.NewFromInt(100),
		StrikeToken:         "USDC",
		Strike:              decimal.NewFromInt(50),
		PremiumToken:        "USDC",
		Premium:             decimal.NewFromInt(1),
		ExerciseWindowStart: 2000,
		ExerciseWindowEnd:   3000,
	}
	return domain.NewIssuance(id, "alice", spec,
		domain.StandardERC20, domain.StandardERC20, domain.StandardERC20)
}

func TestRegistryTxRollback(t *testing.T) {
	registry := NewIssuanceRegistry()
	ctx := context.Background()

	require.NoError(t, registry.Save(ctx, newTestIssuance(0)))

	err := registry.WithTx(ctx, func(ctx context.Context) error {
		if _, err := registry.NextID(ctx); err != nil {
			return err
		}
		if err := registry.Delete(ctx, 0); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	// 失败的事务整体回滚：记录仍在，计数器未前进
	got, err := registry.Get(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	counter, err := registry.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counter)
}

// 查询路径与命令事务并发访问登记簿不产生数据竞争
func TestRegistryConcurrentReadsAndWrites(t *testing.T) {
	registry := NewIssuanceRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				err := registry.WithTx(ctx, func(ctx context.Context) error {
					id, err := registry.NextID(ctx)
					if err != nil {
						return err
					}
					return registry.Save(ctx, newTestIssuance(id))
				})
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := registry.Get(ctx, int64(i))
				assert.NoError(t, err)
				_, err = registry.Counter(ctx)
				assert.NoError(t, err)
				_, err = registry.ListBySeller(ctx, "alice", 10, 0)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	counter, err := registry.Counter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), counter)
}

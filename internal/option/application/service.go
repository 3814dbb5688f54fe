package application

import (
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// OptionService 期权金库服务门面，整合命令与查询服务。
// 命令侧直连 MySQL 仓储；查询侧可注入组合仓储以命中 Redis 读模型。
type OptionService struct {
	Command *IssuanceCommandService
	Query   *IssuanceQuery
}

func NewOptionService(
	commandRepo domain.IssuanceRepository,
	queryRepo domain.IssuanceRepository,
	eventStore domain.EventStore,
	publisher domain.EventPublisher,
	ledger domain.PositionLedger,
	agent *domain.TransferAgent,
	directory domain.TokenDirectory,
) *OptionService {
	return &OptionService{
		Command: NewIssuanceCommandService(commandRepo, eventStore, publisher, ledger, agent, directory),
		Query:   NewIssuanceQuery(queryRepo, ledger),
	}
}

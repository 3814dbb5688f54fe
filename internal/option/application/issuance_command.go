// Package application 期权金库的应用层：生命周期命令与查询。
package application

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionvault/internal/option/domain"
)

// CreateIssuanceCommand 创建发行命令
type CreateIssuanceCommand struct {
	Seller string
	Spec   domain.OptionSpec
}

// BuyOptionsCommand 购买命令
type BuyOptionsCommand struct {
	IssuanceID int64
	Buyer      string
	Amount     decimal.Decimal
}

// CancelIssuanceCommand 撤销命令
type CancelIssuanceCommand struct {
	IssuanceID int64
	Seller     string
}

// UpdatePremiumCommand 权利金变更命令
type UpdatePremiumCommand struct {
	IssuanceID int64
	Seller     string
	Premium    decimal.Decimal
}

// ExerciseOptionsCommand 行权命令
type ExerciseOptionsCommand struct {
	IssuanceID int64
	Holder     string
	Amount     decimal.Decimal
}

// ReclaimCollateralCommand 回收命令
type ReclaimCollateralCommand struct {
	IssuanceID int64
	Seller     string
}

// IssuanceCommandService 处理发行生命周期的全部写操作。
// 每个命令在单个仓储事务内完成：登记簿变更、托管划转、持仓铸销、
// 事件追加与 outbox 写入一起提交或一起回滚。
type IssuanceCommandService struct {
	repo       domain.IssuanceRepository
	eventStore domain.EventStore
	publisher  domain.EventPublisher
	ledger     domain.PositionLedger
	agent      *domain.TransferAgent
	directory  domain.TokenDirectory
	now        func() time.Time
}

func NewIssuanceCommandService(
	repo domain.IssuanceRepository,
	eventStore domain.EventStore,
	publisher domain.EventPublisher,
	ledger domain.PositionLedger,
	agent *domain.TransferAgent,
	directory domain.TokenDirectory,
) *IssuanceCommandService {
	return &IssuanceCommandService{
		repo:       repo,
		eventStore: eventStore,
		publisher:  publisher,
		ledger:     ledger,
		agent:      agent,
		directory:  directory,
		now:        time.Now,
	}
}

// Create 创建发行并锁入抵押。
// Call 锁入全部标的，Put 锁入整个发行的行权总价。
func (s *IssuanceCommandService) Create(ctx context.Context, cmd CreateIssuanceCommand) (*IssuanceDTO, error) {
	now := s.now().Unix()
	if err := cmd.Spec.Validate(now); err != nil {
		return nil, err
	}

	// 三种资产的标准仅在此处解析一次，之后缓存在记录上
	underlying, err := s.directory.Classify(ctx, cmd.Spec.UnderlyingToken)
	if err != nil {
		return nil, err
	}
	strike, err := s.directory.Classify(ctx, cmd.Spec.StrikeToken)
	if err != nil {
		return nil, err
	}
	premium, err := s.directory.Classify(ctx, cmd.Spec.PremiumToken)
	if err != nil {
		return nil, err
	}
	if underlying == domain.StandardERC721 && !cmd.Spec.Amount.Equal(decimal.NewFromInt(1)) {
		return nil, domain.ErrNonFungibleAmount
	}
	// ERC-721 计价不可分割，价格只允许 0 或 1，否则行权/购买永远无法结算
	if strike == domain.StandardERC721 && !isBinary(cmd.Spec.Strike) {
		return nil, domain.ErrPriceNotBinary
	}
	if premium == domain.StandardERC721 && !isBinary(cmd.Spec.Premium) {
		return nil, domain.ErrPriceNotBinary
	}

	var issuance *domain.Issuance
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		id, err := s.repo.NextID(ctx)
		if err != nil {
			return err
		}
		issuance = domain.NewIssuance(id, cmd.Seller, cmd.Spec, underlying, strike, premium)

		std, token, tokenID, amount := issuance.Collateral()
		if err := s.agent.Pull(ctx, std, token, tokenID, amount, cmd.Seller); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, issuance); err != nil {
			return err
		}

		event := domain.IssuanceCreatedEvent{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			IssuanceID: id,
			Seller:     cmd.Seller,
			Spec:       cmd.Spec,
		}
		if err := s.eventStore.Append(ctx, id, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, domain.IssuanceCreatedEventType, issuanceKey(id), event)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create issuance", "seller", cmd.Seller, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "issuance created",
		"issuance_id", issuance.IssuanceID, "seller", cmd.Seller, "side", issuance.Side)
	return toIssuanceDTO(issuance), nil
}

// Buy 购买期权份额。请求量超过剩余量时截断到剩余量；
// 权利金按成交量对整个发行等比折算，向下取整，可能为零。
func (s *IssuanceCommandService) Buy(ctx context.Context, cmd BuyOptionsCommand) (*BuyReceiptDTO, error) {
	if !cmd.Amount.IsInteger() || !cmd.Amount.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	var receipt *BuyReceiptDTO
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		issuance, err := s.repo.Get(ctx, cmd.IssuanceID)
		if err != nil {
			return err
		}
		// 不存在的记录窗口为零值，一律视为已关闭
		if issuance == nil || issuance.WindowClosed(s.now().Unix()) {
			return domain.ErrWindowClosed
		}
		remaining := issuance.RemainingToSell()
		if !remaining.IsPositive() {
			return domain.ErrSoldOut
		}

		filled := cmd.Amount
		if filled.GreaterThan(remaining) {
			filled = remaining
		}
		// ERC-721 权利金不可分割：PremiumFor 恒为整枚（0 或 1），
		// 首笔成交即整体转移，之后的分笔购买由代币后端以持有人校验拒绝
		premium := issuance.PremiumFor(filled)
		if premium.IsPositive() {
			// 权利金买卖双方直接结算，不经托管
			if err := s.agent.Move(ctx, issuance.PremiumTokenType, issuance.PremiumToken,
				issuance.PremiumTokenID, premium, cmd.Buyer, issuance.Seller); err != nil {
				return err
			}
		}

		issuance.SoldOptions = issuance.SoldOptions.Add(filled)
		if err := s.repo.Save(ctx, issuance); err != nil {
			return err
		}
		if err := s.ledger.Mint(ctx, cmd.Buyer, cmd.IssuanceID, filled); err != nil {
			return err
		}

		event := domain.OptionsBoughtEvent{
			BaseEvent:   domain.BaseEvent{Timestamp: s.now()},
			IssuanceID:  cmd.IssuanceID,
			Buyer:       cmd.Buyer,
			Amount:      filled,
			PremiumPaid: premium,
		}
		if err := s.eventStore.Append(ctx, cmd.IssuanceID, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		if err := s.publisher.Publish(ctx, domain.OptionsBoughtEventType, issuanceKey(cmd.IssuanceID), event); err != nil {
			return err
		}

		receipt = &BuyReceiptDTO{
			IssuanceID:  cmd.IssuanceID,
			Buyer:       cmd.Buyer,
			Filled:      filled.String(),
			PremiumPaid: premium.String(),
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to buy options",
			"issuance_id", cmd.IssuanceID, "buyer", cmd.Buyer, "error", err)
		return nil, err
	}
	return receipt, nil
}

// Cancel 撤销尚无成交的发行并退还全部抵押，记录随之墓碑化。
func (s *IssuanceCommandService) Cancel(ctx context.Context, cmd CancelIssuanceCommand) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		issuance, err := s.loadForSeller(ctx, cmd.IssuanceID, cmd.Seller)
		if err != nil {
			return err
		}
		if issuance.SoldOptions.IsPositive() {
			return domain.ErrAlreadySold
		}

		std, token, tokenID, amount := issuance.Collateral()
		if err := s.agent.Push(ctx, std, token, tokenID, amount, issuance.Seller); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, cmd.IssuanceID); err != nil {
			return err
		}

		event := domain.IssuanceCanceledEvent{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			IssuanceID: cmd.IssuanceID,
			Seller:     cmd.Seller,
		}
		if err := s.eventStore.Append(ctx, cmd.IssuanceID, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, domain.IssuanceCanceledEventType, issuanceKey(cmd.IssuanceID), event)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to cancel issuance",
			"issuance_id", cmd.IssuanceID, "seller", cmd.Seller, "error", err)
		return err
	}
	return nil
}

// UpdatePremium 变更权利金，只影响之后的购买。
func (s *IssuanceCommandService) UpdatePremium(ctx context.Context, cmd UpdatePremiumCommand) error {
	if !cmd.Premium.IsInteger() || cmd.Premium.IsNegative() {
		return domain.ErrInvalidPrice
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		issuance, err := s.loadForSeller(ctx, cmd.IssuanceID, cmd.Seller)
		if err != nil {
			return err
		}
		if issuance.PremiumTokenType == domain.StandardERC721 && !isBinary(cmd.Premium) {
			return domain.ErrPriceNotBinary
		}

		issuance.Premium = cmd.Premium
		if err := s.repo.Save(ctx, issuance); err != nil {
			return err
		}

		event := domain.PremiumUpdatedEvent{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			IssuanceID: cmd.IssuanceID,
			Premium:    cmd.Premium,
		}
		if err := s.eventStore.Append(ctx, cmd.IssuanceID, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, domain.PremiumUpdatedEventType, issuanceKey(cmd.IssuanceID), event)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to update premium",
			"issuance_id", cmd.IssuanceID, "seller", cmd.Seller, "error", err)
		return err
	}
	return nil
}

// Exercise 在行权窗口内销毁持仓并结算：
// Call 持有人付行权价、从托管取得标的；Put 持有人交付标的、从托管取得行权价。
// 全部售出且全部行权后记录结清并墓碑化。
func (s *IssuanceCommandService) Exercise(ctx context.Context, cmd ExerciseOptionsCommand) (*ExerciseReceiptDTO, error) {
	if !cmd.Amount.IsInteger() || !cmd.Amount.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	var receipt *ExerciseReceiptDTO
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		issuance, err := s.repo.Get(ctx, cmd.IssuanceID)
		if err != nil {
			return err
		}
		now := s.now().Unix()
		if issuance == nil || issuance.WindowClosed(now) {
			return domain.ErrWindowClosed
		}
		if now < issuance.ExerciseWindowStart {
			return domain.ErrWindowNotStarted
		}

		balance, err := s.ledger.BalanceOf(ctx, cmd.Holder, cmd.IssuanceID)
		if err != nil {
			return err
		}
		if balance.LessThan(cmd.Amount) {
			return domain.ErrInsufficientPositions
		}
		if issuance.ExercisedOptions.Add(cmd.Amount).GreaterThan(issuance.SoldOptions) {
			return domain.ErrInsufficientPositions
		}
		if err := s.ledger.Burn(ctx, cmd.Holder, cmd.IssuanceID, cmd.Amount); err != nil {
			return err
		}

		strike := issuance.StrikeFor(cmd.Amount)
		if issuance.Side == domain.SideCall {
			// 行权价买卖双方直接结算，标的从托管释放
			if strike.IsPositive() {
				if err := s.agent.Move(ctx, issuance.StrikeTokenType, issuance.StrikeToken,
					issuance.StrikeTokenID, strike, cmd.Holder, issuance.Seller); err != nil {
					return err
				}
			}
			if err := s.agent.Push(ctx, issuance.UnderlyingTokenType, issuance.UnderlyingToken,
				issuance.UnderlyingTokenID, cmd.Amount, cmd.Holder); err != nil {
				return err
			}
			issuance.ReleasedCollateral = issuance.ReleasedCollateral.Add(cmd.Amount)
		} else {
			// Put: 标的交付卖方，行权价从托管释放
			if err := s.agent.Move(ctx, issuance.UnderlyingTokenType, issuance.UnderlyingToken,
				issuance.UnderlyingTokenID, cmd.Amount, cmd.Holder, issuance.Seller); err != nil {
				return err
			}
			if strike.IsPositive() {
				if err := s.agent.Push(ctx, issuance.StrikeTokenType, issuance.StrikeToken,
					issuance.StrikeTokenID, strike, cmd.Holder); err != nil {
					return err
				}
			}
			issuance.ReleasedCollateral = issuance.ReleasedCollateral.Add(strike)
		}

		issuance.ExercisedOptions = issuance.ExercisedOptions.Add(cmd.Amount)
		if issuance.ExercisedOptions.Equal(issuance.Amount) {
			// 全部份额已售出并行权，记录结清。逐次折算取整可能在托管中
			// 留下尾差（Put 的行权总价减去各次释放之和），随最后一笔行权退还卖方
			if dust := issuance.RemainingCollateral(); dust.IsPositive() {
				std, token, tokenID, _ := issuance.Collateral()
				if err := s.agent.Push(ctx, std, token, tokenID, dust, issuance.Seller); err != nil {
					return err
				}
			}
			if err := s.repo.Delete(ctx, cmd.IssuanceID); err != nil {
				return err
			}
		} else if err := s.repo.Save(ctx, issuance); err != nil {
			return err
		}

		event := domain.OptionsExercisedEvent{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			IssuanceID: cmd.IssuanceID,
			Holder:     cmd.Holder,
			Amount:     cmd.Amount,
			StrikePaid: strike,
		}
		if err := s.eventStore.Append(ctx, cmd.IssuanceID, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		if err := s.publisher.Publish(ctx, domain.OptionsExercisedEventType, issuanceKey(cmd.IssuanceID), event); err != nil {
			return err
		}

		receipt = &ExerciseReceiptDTO{
			IssuanceID: cmd.IssuanceID,
			Holder:     cmd.Holder,
			Exercised:  cmd.Amount.String(),
			StrikePaid: strike.String(),
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to exercise options",
			"issuance_id", cmd.IssuanceID, "holder", cmd.Holder, "error", err)
		return nil, err
	}
	return receipt, nil
}

// Reclaim 窗口结束后卖方取回托管中尚未因行权释放的抵押
// （未售出部分加上已售未行权部分，含折算取整的尾差），记录随之结清。
func (s *IssuanceCommandService) Reclaim(ctx context.Context, cmd ReclaimCollateralCommand) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		issuance, err := s.loadForSeller(ctx, cmd.IssuanceID, cmd.Seller)
		if err != nil {
			return err
		}
		if !issuance.WindowClosed(s.now().Unix()) {
			return domain.ErrWindowClosed
		}

		remaining := issuance.RemainingCollateral()
		if remaining.IsPositive() {
			std, token, tokenID, _ := issuance.Collateral()
			if err := s.agent.Push(ctx, std, token, tokenID, remaining, issuance.Seller); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, cmd.IssuanceID); err != nil {
			return err
		}

		event := domain.CollateralReclaimedEvent{
			BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
			IssuanceID: cmd.IssuanceID,
			Seller:     cmd.Seller,
			Amount:     remaining,
		}
		if err := s.eventStore.Append(ctx, cmd.IssuanceID, []domain.IssuanceEvent{event}); err != nil {
			return err
		}
		return s.publisher.Publish(ctx, domain.CollateralReclaimedEventType, issuanceKey(cmd.IssuanceID), event)
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to reclaim collateral",
			"issuance_id", cmd.IssuanceID, "seller", cmd.Seller, "error", err)
		return err
	}
	return nil
}

// loadForSeller 加载记录并校验卖方身份。
// 记录不存在与调用方不是卖方返回同一个错误，不向调用方泄露记录是否存在。
func (s *IssuanceCommandService) loadForSeller(ctx context.Context, issuanceID int64, seller string) (*domain.Issuance, error) {
	issuance, err := s.repo.Get(ctx, issuanceID)
	if err != nil {
		return nil, err
	}
	if issuance == nil || issuance.Seller != seller {
		return nil, domain.ErrNotSeller
	}
	return issuance, nil
}

func isBinary(v decimal.Decimal) bool {
	return v.IsZero() || v.Equal(decimal.NewFromInt(1))
}

func issuanceKey(id int64) string {
	return "issuance-" + strconv.FormatInt(id, 10)
}

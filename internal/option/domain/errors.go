package domain

import "errors"

// 错误文案是对外兼容契约的一部分，调用方按字符串匹配，不可改动。
// 其中 "exceriseWindowEnd" 的拼写错误是历史遗留，保留原样。
var (
	// ErrWindowEnded 创建时行权窗口结束时间必须晚于当前时间
	ErrWindowEnded = errors.New("exerciseWindowEnd")
	// ErrWindowClosed 购买/行权/回收时窗口已关闭（不存在的发行记录窗口为零值，同样命中）
	ErrWindowClosed = errors.New("exceriseWindowEnd")
	// ErrWindowNotStarted 行权窗口尚未开始
	ErrWindowNotStarted = errors.New("exerciseWindowStart")
	// ErrSoldOut 无剩余可售数量
	ErrSoldOut = errors.New("amount")
	// ErrNotSeller 发行不存在，或调用方不是卖方（两种情况刻意不做区分）
	ErrNotSeller = errors.New("seller")
	// ErrAlreadySold 已有成交的发行不可撤销
	ErrAlreadySold = errors.New("soldOptions")
	// ErrPriceNotBinary ERC-721 计价的价格（行权价或权利金）只能是 0 或 1
	ErrPriceNotBinary = errors.New("0 or 1 for ERC-721")
	// ErrUnknownToken 资产未实现任何受支持的转账标准
	ErrUnknownToken = errors.New("Unknown token")
	// ErrInsufficientPositions 持仓不足以行权
	ErrInsufficientPositions = errors.New("positions")
	// ErrNonFungibleAmount ERC-721 资产的数量必须恰好为 1
	ErrNonFungibleAmount = errors.New("amount must be exactly 1 for ERC-721")
	// ErrInvalidQuantity 数量必须为正整数（代币最小单位计）
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidPrice 价格必须为非负整数（代币最小单位计）
	ErrInvalidPrice = errors.New("price must be a non-negative integer")
)

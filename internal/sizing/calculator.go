package sizing

import "github.com/shopspring/decimal"

// SizeCalculator 由当前权益推导 slot 值与基础仓位的纯函数集合。
// 不做任何 I/O；权益随时在漂移，所以每次 sizing 决策都要重新计算。
type SizeCalculator struct {
	walletBlocks     decimal.Decimal
	firstCycleFactor decimal.Decimal
}

// NewSizeCalculator 由配置构造计算器
func NewSizeCalculator(cfg Config) SizeCalculator {
	return SizeCalculator{
		walletBlocks:     decimal.NewFromInt(int64(cfg.WalletBlocks)),
		firstCycleFactor: decimal.NewFromFloat(cfg.FirstCycleFactor),
	}
}

// SlotValue 单个 slot 的价值 = equity / wallet_blocks。
// 权益为零或负数时返回 0（除零保护，见错误处理约定）。
func (c SizeCalculator) SlotValue(equity decimal.Decimal) decimal.Decimal {
	if equity.Sign() <= 0 || c.walletBlocks.Sign() <= 0 {
		return decimal.Zero
	}
	return equity.Div(c.walletBlocks)
}

// BaseSize 新 symbol（或亏损重置后）的基础分配 = slot_value × first_cycle_factor
func (c SizeCalculator) BaseSize(slotValue decimal.Decimal) decimal.Decimal {
	if slotValue.Sign() <= 0 {
		return decimal.Zero
	}
	return slotValue.Mul(c.firstCycleFactor)
}

// BaseSizeForEquity 直接由权益计算基础分配
func (c SizeCalculator) BaseSizeForEquity(equity decimal.Decimal) decimal.Decimal {
	return c.BaseSize(c.SlotValue(equity))
}

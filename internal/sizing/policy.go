package sizing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
	"github.com/FrancescoGigli/TradingJii-sub002/internal/metrics"
)

// sizing 决策理由（写入日志和审计事件）
const (
	ReasonNewSymbol  = "new_symbol"
	ReasonFromMemory = "from_memory"
)

// GetSymbolSize 决定某个 symbol 下一笔交易可用的保证金。
//
// 状态机：NEW（无记录）→ ACTIVE（有记录且未冷却）→ BLOCKED（冷却中）→ ACTIVE。
// NEW 返回按当前权益计算的 base_size，且**不创建记录**（纯查询不产生副作用）；
// BLOCKED 永远返回 0（冷却期间没有部分分配）；
// ACTIVE 返回 min(current_size, slot_value × cap_multiplier)。
func (e *Engine) GetSymbolSize(symbol string, equity float64) (amount decimal.Decimal, blocked bool, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.symbolSizeLocked(symbol, decimal.NewFromFloat(equity))
}

func (e *Engine) symbolSizeLocked(symbol string, equity decimal.Decimal) (decimal.Decimal, bool, string) {
	slot := e.calc.SlotValue(equity)

	m, ok := e.state.Symbols[symbol]
	if !ok {
		return e.calc.BaseSize(slot), false, ReasonNewSymbol
	}

	if m.BlockedCyclesLeft > 0 {
		return decimal.Zero, true, fmt.Sprintf("blocked_%d_cycles", m.BlockedCyclesLeft)
	}

	// 文档化的例外：读取时也把 base_size 刷新为实时权益对应的值，
	// 审计字段因此始终相对当前账户规模。只改内存，随下一次真实变更落盘。
	m.BaseSize = e.calc.BaseSize(slot)

	// 上限在读取时强制执行（存储值允许短暂超出）
	amount := m.CurrentSize
	if capValue := slot.Mul(e.capMult); amount.GreaterThan(capValue) {
		amount = capValue
	}
	if amount.Sign() < 0 {
		amount = decimal.Zero
	}
	return amount, false, ReasonFromMemory
}

// RegisterOpening 开仓成功后登记。marginUsed 是实际成交占用的保证金，
// 可能与请求值不同（交易所步进、滑点等）。
//
// 无记录时创建记录并以实际金额作为 current_size；已有记录只刷新审计
// 时间戳，下一笔的金额完全由 UpdateAfterTrade 决定。立即落盘。
func (e *Engine) RegisterOpening(symbol string, marginUsed float64, equity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eq := decimal.NewFromFloat(equity)
	now := time.Now()
	cycle := e.state.CurrentCycle

	m, ok := e.state.Symbols[symbol]
	if !ok {
		used := decimal.NewFromFloat(marginUsed)
		m = &domain.SymbolMemory{
			Symbol:           symbol,
			BaseSize:         e.calc.BaseSizeForEquity(eq),
			CurrentSize:      used,
			LastCycleUpdated: cycle,
			LastUpdated:      now,
		}
		e.state.Symbols[symbol] = m
		log.Infof("🆕 [Sizing] 新建记忆: symbol=%s current=%s (首次开仓实际金额)",
			symbol, used.StringFixed(2))
		e.record(Event{
			Cycle: cycle, Symbol: symbol, Kind: EventNew,
			SizeAfter: used, Reason: "first_opening",
		})
	} else {
		m.LastCycleUpdated = cycle
		m.LastUpdated = now
		log.Debugf("[Sizing] 开仓登记: symbol=%s margin=%.2f (仅刷新审计字段)", symbol, marginUsed)
		e.record(Event{
			Cycle: cycle, Symbol: symbol, Kind: EventOpening,
			SizeAfter: m.CurrentSize, Reason: "opening",
		})
	}

	e.saveLocked()
}

// UpdateAfterTrade 每笔平仓恰好调用一次，按结果奖励或重置。
//
// 盈利（pnl_pct > 0）：current_size × (1 + pnl_pct/100)，按 slot × cap 截断，
// 连胜会一直复利到碰到上限为止。
// 亏损（pnl_pct <= 0）：current_size 重置为按当前权益刚算出的 base_size，
// 并进入固定的 block_cycles 冷却，无论亏损幅度多大，处理完全一致。
//
// 注意：pnl_pct == 0 走亏损分支（严格 > 0 判定）。统计子系统对零附近
// 另设 breakeven 桶，两边口径不一致；这里沿用原有行为，待产品侧确认。
func (e *Engine) UpdateAfterTrade(symbol string, pnlPct float64, equity float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eq := decimal.NewFromFloat(equity)
	slot := e.calc.SlotValue(eq)
	base := e.calc.BaseSize(slot)
	now := time.Now()
	cycle := e.state.CurrentCycle

	m, ok := e.state.Symbols[symbol]
	if !ok {
		// 防御性创建：重启后可能出现没观察到开仓的平仓上报
		m = &domain.SymbolMemory{
			Symbol:      symbol,
			BaseSize:    base,
			CurrentSize: base,
		}
		e.state.Symbols[symbol] = m
		log.Warnf("⚠️ [Sizing] 未登记的 symbol 上报平仓, 防御性创建记录: %s", symbol)
	}

	m.TotalTrades++
	m.LastPnlPct = pnlPct
	m.LastCycleUpdated = cycle
	m.LastUpdated = now
	m.BaseSize = base // 每次触达都按当前权益重算
	before := m.CurrentSize

	if pnlPct > 0 {
		m.Wins++
		growth := decimal.NewFromFloat(pnlPct).Div(decimal.NewFromInt(100)).Add(decimal.NewFromInt(1))
		newSize := m.CurrentSize.Mul(growth)
		if capValue := slot.Mul(e.capMult); newSize.GreaterThan(capValue) {
			newSize = capValue
		}
		m.CurrentSize = newSize
		log.Infof("✅ [Sizing] 盈利奖励: symbol=%s pnl=%+.2f%% size %s -> %s",
			symbol, pnlPct, before.StringFixed(2), newSize.StringFixed(2))
		e.record(Event{
			Cycle: cycle, Symbol: symbol, Kind: EventReward, PnlPct: pnlPct,
			SizeBefore: before, SizeAfter: newSize, Reason: "win_compound",
		})
	} else {
		m.Losses++
		m.CurrentSize = base
		m.BlockedCyclesLeft = e.cfg.BlockCycles
		log.Infof("🔻 [Sizing] 亏损重置: symbol=%s pnl=%+.2f%% size %s -> %s, 冷却 %d 周期",
			symbol, pnlPct, before.StringFixed(2), base.StringFixed(2), e.cfg.BlockCycles)
		e.record(Event{
			Cycle: cycle, Symbol: symbol, Kind: EventReset, PnlPct: pnlPct,
			SizeBefore: before, SizeAfter: base, Reason: "loss_reset",
		})
	}

	metrics.TradesRecorded.Add(1)
	e.saveLocked()
}

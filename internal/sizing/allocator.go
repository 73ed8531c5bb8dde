package sizing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
)

// AllocationStats 一次分配的汇总信息（只供观测，失败不影响 sizing）
type AllocationStats struct {
	Cycle          int64           `json:"cycle"`
	Equity         decimal.Decimal `json:"equity"`
	SlotValue      decimal.Decimal `json:"slot_value"`
	BaseSize       decimal.Decimal `json:"base_size"`
	Requested      int             `json:"requested"`       // 输入信号数
	Accepted       int             `json:"accepted"`        // 实际分配数
	SkippedBlocked []string        `json:"skipped_blocked"` // 因冷却被跳过的 symbol
	TotalMargin    decimal.Decimal `json:"total_margin"`
	MaxLoss        decimal.Decimal `json:"max_loss"`
	RiskLimit      decimal.Decimal `json:"risk_limit"`
	RiskScaled     bool            `json:"risk_scaled"`
	ScaleFactor    decimal.Decimal `json:"scale_factor"`
}

// CalculateAdaptiveMargins 对排好序的信号列表逐个决定保证金，直到达到
// maxPositions（<= 0 表示不限制，约定与其它并发上限一致：0 = 无上限）。
// 冷却中的 symbol 被跳过且不占用名额。最后做组合级风险检查：
// 最坏亏损超过 equity × risk_max_pct 时对全部保证金做等比例缩放，
// 各 symbol 之间的相对大小保持不变。
//
// 返回的 margins 与 symbols 一定等长同序。本方法不修改任何 SymbolMemory
// （base_size 的读取时刷新除外，见 GetSymbolSize）。真正的状态变更只
// 发生在 RegisterOpening / UpdateAfterTrade，由调用方在真实开平仓后触发。
func (e *Engine) CalculateAdaptiveMargins(signals []domain.Signal, equity float64, maxPositions int) ([]decimal.Decimal, []string, AllocationStats) {
	e.mu.Lock()
	defer e.mu.Unlock()

	eq := decimal.NewFromFloat(equity)
	stats := AllocationStats{
		Cycle:       e.state.CurrentCycle,
		Equity:      eq,
		Requested:   len(signals),
		ScaleFactor: decimal.NewFromInt(1),
	}
	margins := make([]decimal.Decimal, 0, len(signals))
	accepted := make([]string, 0, len(signals))

	if eq.Sign() <= 0 {
		log.Warnf("⚠️ [Sizing] 权益为零或负数 (%.2f), 本轮不分配任何保证金", equity)
		return margins, accepted, stats
	}

	slot := e.calc.SlotValue(eq)
	stats.SlotValue = slot
	stats.BaseSize = e.calc.BaseSize(slot)

	for i, sig := range signals {
		if maxPositions > 0 && len(margins) >= maxPositions {
			break
		}
		symbol := sig.Symbol
		if symbol == "" {
			// 一条坏信号不能中断整批分配，换占位符继续
			symbol = fmt.Sprintf("UNKNOWN_%d", i)
			log.Warnf("⚠️ [Sizing] 信号缺少 symbol, 使用占位符 %s 继续", symbol)
		}

		amount, blocked, reason := e.symbolSizeLocked(symbol, eq)
		if blocked {
			stats.SkippedBlocked = append(stats.SkippedBlocked, symbol)
			log.Debugf("⏸️ [Sizing] 跳过冷却中的 %s (%s)", symbol, reason)
			continue
		}

		margins = append(margins, amount)
		accepted = append(accepted, symbol)
		log.Debugf("[Sizing] %s -> %s (%s)", symbol, amount.StringFixed(2), reason)
	}

	total := decimal.Zero
	for _, m := range margins {
		total = total.Add(m)
	}
	maxLoss := total.Mul(e.lossMult)
	riskLimit := eq.Mul(e.riskMaxPct)
	stats.TotalMargin = total
	stats.MaxLoss = maxLoss
	stats.RiskLimit = riskLimit

	if maxLoss.GreaterThan(riskLimit) && maxLoss.Sign() > 0 {
		factor := riskLimit.Div(maxLoss)
		for i := range margins {
			margins[i] = margins[i].Mul(factor)
		}
		total = decimal.Zero
		for _, m := range margins {
			total = total.Add(m)
		}
		stats.RiskScaled = true
		stats.ScaleFactor = factor
		stats.TotalMargin = total
		stats.MaxLoss = total.Mul(e.lossMult)
		log.Infof("🛡️ [Sizing] 组合风险缩放: factor=%s 总保证金 -> %s (风险上限 %s)",
			factor.StringFixed(4), total.StringFixed(2), riskLimit.StringFixed(2))
	}

	stats.Accepted = len(accepted)
	log.Infof("📊 [Sizing] 周期 %d 分配完成: 信号 %d 个, 接受 %d 个, 冷却跳过 %d 个, 总保证金 %s",
		stats.Cycle, stats.Requested, stats.Accepted, len(stats.SkippedBlocked), stats.TotalMargin.StringFixed(2))

	return margins, accepted, stats
}

package sizing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/metrics"
)

// IncrementCycle 推进全局周期计数器：每个冷却中的 symbol 计数减 1，
// 恰好归零的 symbol 在返回值中作为"本次解除冷却"上报。
//
// 必须每个交易周期恰好调用一次，且严格早于该周期的任何 sizing 决策
// （先解除冷却，再分配）。周期号本身已变化，所以总是落盘。
func (e *Engine) IncrementCycle() (cycle int64, unblocked []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.CurrentCycle++
	cycle = e.state.CurrentCycle

	stillBlocked := 0
	for _, sym := range e.sortedSymbolsLocked() {
		m := e.state.Symbols[sym]
		if m.BlockedCyclesLeft <= 0 {
			continue
		}
		m.BlockedCyclesLeft--
		if m.BlockedCyclesLeft == 0 {
			unblocked = append(unblocked, sym)
			log.Infof("🟢 [Sizing] 冷却结束, 恢复可交易: %s", sym)
			e.record(Event{
				Cycle: cycle, Symbol: sym, Kind: EventUnblocked,
				SizeAfter: m.CurrentSize, Reason: "cooldown_expired",
			})
		} else {
			stillBlocked++
		}
	}

	metrics.CyclesAdvanced.Add(1)
	log.Infof("⏱️ [Sizing] 进入周期 %d: 解除冷却 %d 个, 仍在冷却 %d 个",
		cycle, len(unblocked), stillBlocked)

	e.saveLocked()
	return cycle, unblocked
}

// MemoryStats 只读聚合统计（任何失败都不影响 sizing 主流程）
type MemoryStats struct {
	CurrentCycle int64   `json:"current_cycle"`
	TotalSymbols int     `json:"total_symbols"`
	Active       int     `json:"active"`
	Blocked      int     `json:"blocked"`
	TotalTrades  int     `json:"total_trades"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"win_rate"` // 百分比
}

// GetMemoryStats 汇总当前全部 symbol 的状态，纯读取，不做任何修改
func (e *Engine) GetMemoryStats() MemoryStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := MemoryStats{
		CurrentCycle: e.state.CurrentCycle,
		TotalSymbols: len(e.state.Symbols),
	}
	for _, m := range e.state.Symbols {
		if m.IsBlocked() {
			stats.Blocked++
		} else {
			stats.Active++
		}
		stats.TotalTrades += m.TotalTrades
		stats.Wins += m.Wins
		stats.Losses += m.Losses
	}
	if settled := stats.Wins + stats.Losses; settled > 0 {
		stats.WinRate = float64(stats.Wins) / float64(settled) * 100
	}
	return stats
}

// MemoryReport 枚举每个 symbol 状态的完整报告（周期性审计输出）
func (e *Engine) MemoryReport() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "周期 %d | symbols=%d\n", e.state.CurrentCycle, len(e.state.Symbols))
	for _, sym := range e.sortedSymbolsLocked() {
		m := e.state.Symbols[sym]
		status := string(m.State())
		if m.IsBlocked() {
			status = fmt.Sprintf("blocked(%d)", m.BlockedCyclesLeft)
		}
		fmt.Fprintf(&b, "  %-12s %-10s current=%s base=%s trades=%d W/L=%d/%d last_pnl=%+.2f%%\n",
			sym, status,
			m.CurrentSize.StringFixed(2), m.BaseSize.StringFixed(2),
			m.TotalTrades, m.Wins, m.Losses, m.LastPnlPct)
	}
	return b.String()
}

// LogMemoryReport 把完整报告逐行写入日志
func (e *Engine) LogMemoryReport() {
	for _, line := range strings.Split(strings.TrimRight(e.MemoryReport(), "\n"), "\n") {
		log.Infof("📋 [Sizing] %s", line)
	}
}

// sortedSymbolsLocked 排序后的 symbol 列表（保证日志和报告输出确定性）
func (e *Engine) sortedSymbolsLocked() []string {
	keys := make([]string, 0, len(e.state.Symbols))
	for k := range e.state.Symbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SnapshotVersion 当前快照结构版本。
// 旧快照没有 version 字段（解码后为 0），加载时按 v0 兼容处理。
const SnapshotVersion = 1

// SymbolMemory 单个交易对的资金记忆（每个 symbol 一条）
//
// BaseSize 在每次触达时都会按当前权益重新计算，所以仓位始终跟随账户规模；
// CurrentSize 是下一笔交易实际使用的金额：盈利时乘法增长，亏损时重置为 BaseSize。
type SymbolMemory struct {
	Symbol            string          `json:"symbol"`
	BaseSize          decimal.Decimal `json:"base_size"`
	CurrentSize       decimal.Decimal `json:"current_size"`
	BlockedCyclesLeft int             `json:"blocked_cycles_left"` // > 0 时该 symbol 不可交易
	LastPnlPct        float64         `json:"last_pnl_pct"`        // 最近一笔平仓的收益率（%）
	LastCycleUpdated  int64           `json:"last_cycle_updated"`
	LastUpdated       time.Time       `json:"last_updated"`
	TotalTrades       int             `json:"total_trades"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
}

// SymbolState 单个 symbol 的状态机状态
type SymbolState string

const (
	StateNew     SymbolState = "new"     // 没有记录
	StateActive  SymbolState = "active"  // 有记录且未被冷却
	StateBlocked SymbolState = "blocked" // 冷却中（blocked_cycles_left > 0）
)

// State 返回当前状态（nil 记录视为 NEW）
func (m *SymbolMemory) State() SymbolState {
	if m == nil {
		return StateNew
	}
	if m.BlockedCyclesLeft > 0 {
		return StateBlocked
	}
	return StateActive
}

// IsBlocked 是否处于冷却中
func (m *SymbolMemory) IsBlocked() bool {
	return m != nil && m.BlockedCyclesLeft > 0
}

// WinRate 胜率（没有已结算交易时返回 0）
func (m *SymbolMemory) WinRate() float64 {
	if m == nil {
		return 0
	}
	settled := m.Wins + m.Losses
	if settled == 0 {
		return 0
	}
	return float64(m.Wins) / float64(settled) * 100
}

// Clone 深拷贝（decimal 是不可变值类型，直接复制即可）
func (m *SymbolMemory) Clone() *SymbolMemory {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}

// GlobalState 引擎的全量状态：周期计数器 + 全部 SymbolMemory。
// 每次保存都是一次完整快照覆盖，不是追加日志。
type GlobalState struct {
	Version      int                      `json:"version"`
	CurrentCycle int64                    `json:"current_cycle"`
	Symbols      map[string]*SymbolMemory `json:"symbols"`
	LastSaved    time.Time                `json:"last_saved"`
}

// NewGlobalState 返回周期 0 的空状态
func NewGlobalState() GlobalState {
	return GlobalState{
		Version: SnapshotVersion,
		Symbols: make(map[string]*SymbolMemory),
	}
}

// Clone 深拷贝（保存快照时避免与持有锁的调用方共享 map）
func (s GlobalState) Clone() GlobalState {
	cp := s
	cp.Symbols = make(map[string]*SymbolMemory, len(s.Symbols))
	for k, v := range s.Symbols {
		cp.Symbols[k] = v.Clone()
	}
	return cp
}

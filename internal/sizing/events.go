package sizing

import "github.com/shopspring/decimal"

// EventKind 决策事件类型
type EventKind string

const (
	EventNew       EventKind = "new"       // 首次为 symbol 建立记忆
	EventOpening   EventKind = "opening"   // 开仓成功登记
	EventReward    EventKind = "reward"    // 盈利后仓位乘法增长
	EventReset     EventKind = "reset"     // 亏损后重置并进入冷却
	EventUnblocked EventKind = "unblocked" // 冷却结束恢复可交易
)

// Event 一次 sizing 决策的审计事件
type Event struct {
	Cycle      int64
	Symbol     string
	Kind       EventKind
	PnlPct     float64
	SizeBefore decimal.Decimal
	SizeAfter  decimal.Decimal
	Reason     string
}

// Recorder 决策事件接收器（审计落地，如 SQLite journal）。
// 实现必须自行消化错误：Record 不返回 error，失败只能记日志，
// 绝不允许影响分配主流程。
type Recorder interface {
	Record(ev Event)
}

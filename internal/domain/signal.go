package domain

// Signal 上游（信号/排序子系统）给出的候选交易信号。
// 分配引擎只读取 Symbol 字段，其余字段原样携带，便于日志关联。
type Signal struct {
	Symbol string  `json:"symbol"`
	Side   string  `json:"side,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

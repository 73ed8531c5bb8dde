package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/sizing"
)

var log = logrus.WithField("module", "journal")

// Journal 把每一次 sizing 决策写入 SQLite，作为可查询的审计日志。
// 纯尽力而为：任何失败只记日志，绝不影响分配主流程。
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sizing_events (
	id          TEXT PRIMARY KEY,
	ts          TEXT NOT NULL,
	cycle       INTEGER NOT NULL,
	symbol      TEXT NOT NULL,
	kind        TEXT NOT NULL,
	pnl_pct     REAL NOT NULL DEFAULT 0,
	size_before TEXT NOT NULL DEFAULT '',
	size_after  TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sizing_events_symbol_ts ON sizing_events (symbol, ts);
`

// Open 打开（或创建）SQLite 审计库
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开审计库失败: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("初始化审计表失败: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record 实现 sizing.Recorder。写入失败只记日志。
func (j *Journal) Record(ev sizing.Event) {
	if j == nil || j.db == nil {
		return
	}
	_, err := j.db.Exec(`
INSERT INTO sizing_events (id, ts, cycle, symbol, kind, pnl_pct, size_before, size_after, reason)
VALUES (?,?,?,?,?,?,?,?,?)
`,
		uuid.NewString(),
		time.Now().Format(time.RFC3339Nano),
		ev.Cycle, ev.Symbol, string(ev.Kind), ev.PnlPct,
		ev.SizeBefore.String(), ev.SizeAfter.String(), ev.Reason,
	)
	if err != nil {
		log.Warnf("⚠️ [Journal] 写入决策事件失败: %v", err)
	}
}

// Entry 审计事件的查询结果
type Entry struct {
	ID         string    `json:"id"`
	TS         time.Time `json:"ts"`
	Cycle      int64     `json:"cycle"`
	Symbol     string    `json:"symbol"`
	Kind       string    `json:"kind"`
	PnlPct     float64   `json:"pnl_pct"`
	SizeBefore string    `json:"size_before"`
	SizeAfter  string    `json:"size_after"`
	Reason     string    `json:"reason"`
}

// Recent 返回最近 limit 条事件（新的在前）
func (j *Journal) Recent(limit int) ([]Entry, error) {
	if limit <= 0 || limit > 2000 {
		limit = 200
	}
	rows, err := j.db.Query(`
SELECT id, ts, cycle, symbol, kind, pnl_pct, size_before, size_after, reason
FROM sizing_events
ORDER BY ts DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ts string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Cycle, &e.Symbol, &e.Kind, &e.PnlPct, &e.SizeBefore, &e.SizeAfter, &e.Reason); err != nil {
			return nil, err
		}
		e.TS, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close 关闭底层数据库
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

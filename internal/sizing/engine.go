package sizing

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
	"github.com/FrancescoGigli/TradingJii-sub002/internal/metrics"
)

var log = logrus.WithField("module", "sizing")

// BootMode 启动模式：继续历史记忆，或清空后全新开始
type BootMode int

const (
	// ModeContinue 读取已有快照继续运行（默认）
	ModeContinue BootMode = iota
	// ModeFreshStart 删除已有快照，从周期 0 的空状态开始
	ModeFreshStart
)

func (m BootMode) String() string {
	switch m {
	case ModeFreshStart:
		return "fresh_start"
	default:
		return "continue"
	}
}

// SnapshotStore 引擎状态的持久化后端。
// Load 在快照不存在时返回空状态而不是错误；Save 必须对崩溃保持原子性。
type SnapshotStore interface {
	Load() (domain.GlobalState, error)
	Save(state domain.GlobalState) error
	Wipe() error
}

// Engine 自适应资金分配引擎：每个交易周期决定给每个候选 symbol
// 投入多少保证金，依据是该 symbol 在本次会话内的历史表现。
//
// 引擎是显式构造、显式传递的对象（进程内只应存在一个实例），
// 所有公开入口都以同一把互斥锁保证对快照的原子性；引擎内部
// 不做任何网络 I/O，唯一的延迟来源是本地同步快照写入。
type Engine struct {
	cfg  Config
	calc SizeCalculator

	// 配置的 decimal 形式，避免每次决策重复转换
	capMult    decimal.Decimal
	riskMaxPct decimal.Decimal
	lossMult   decimal.Decimal

	store SnapshotStore
	rec   Recorder

	mu    sync.Mutex
	state domain.GlobalState
}

// Option 引擎可选项
type Option func(*Engine)

// WithRecorder 挂接决策事件接收器（审计 journal）
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		e.rec = rec
	}
}

// NewEngine 构造引擎并按启动模式加载状态。
// store 可以为 nil（纯内存模式，用于回测和测试）。
func NewEngine(cfg Config, mode BootMode, store SnapshotStore, opts ...Option) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		calc:       NewSizeCalculator(cfg),
		capMult:    decimal.NewFromFloat(cfg.CapMultiplier),
		riskMaxPct: decimal.NewFromFloat(cfg.RiskMaxPct),
		lossMult:   decimal.NewFromFloat(cfg.LossMultiplier),
		store:      store,
	}
	for _, opt := range opts {
		opt(e)
	}

	switch mode {
	case ModeFreshStart:
		if e.store != nil {
			if err := e.store.Wipe(); err != nil {
				log.Warnf("⚠️ [Sizing] 清空历史快照失败: %v", err)
			}
		}
		e.state = domain.NewGlobalState()
		log.Infof("🆕 [Sizing] fresh-start 模式: 历史记忆已清空, 从周期 0 开始")
	default:
		e.state = e.loadState()
	}

	return e, nil
}

// loadState 从后端加载快照；任何失败都降级为空状态，绝不中断启动
func (e *Engine) loadState() domain.GlobalState {
	if e.store == nil {
		return domain.NewGlobalState()
	}
	st, err := e.store.Load()
	if err != nil {
		metrics.SnapshotErrors.Add(1)
		log.Warnf("⚠️ [Sizing] 加载快照失败, 以空状态启动: %v", err)
		return domain.NewGlobalState()
	}
	if st.Symbols == nil {
		st.Symbols = make(map[string]*domain.SymbolMemory)
	}
	metrics.SnapshotLoads.Add(1)
	log.Infof("📂 [Sizing] 快照已加载: cycle=%d symbols=%d version=%d",
		st.CurrentCycle, len(st.Symbols), st.Version)
	return st
}

// saveLocked 立即落盘当前状态（调用方必须已持有 e.mu）。
// 写失败只记日志，内存状态在进程生命周期内仍是权威。
func (e *Engine) saveLocked() {
	if e.store == nil {
		return
	}
	e.state.Version = domain.SnapshotVersion
	e.state.LastSaved = time.Now()
	if err := e.store.Save(e.state.Clone()); err != nil {
		metrics.SnapshotErrors.Add(1)
		log.Errorf("⚠️ [Sizing] 保存快照失败 (内存状态继续生效): %v", err)
		return
	}
	metrics.SnapshotSaves.Add(1)
}

// record 尽力而为地下发审计事件
func (e *Engine) record(ev Event) {
	if e.rec != nil {
		e.rec.Record(ev)
	}
}

// Cycle 当前周期号
func (e *Engine) Cycle() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentCycle
}

// Config 引擎配置（副本）
func (e *Engine) Config() Config {
	return e.cfg
}

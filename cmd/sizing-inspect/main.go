package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/journal"
	"github.com/FrancescoGigli/TradingJii-sub002/internal/sizing"
	"github.com/FrancescoGigli/TradingJii-sub002/internal/storage"
	"github.com/FrancescoGigli/TradingJii-sub002/pkg/config"
	"github.com/FrancescoGigli/TradingJii-sub002/pkg/logger"
)

// sizing-inspect 运维工具：打开某个 bot 实例的记忆快照，
// 打印每个 symbol 的状态与聚合统计，可选查看最近的审计事件。
func main() {
	var (
		configPath  = flag.String("config", "", "配置文件路径 (yaml/json, 可选)")
		freshStart  = flag.Bool("fresh-start", false, "清空历史记忆后启动 (危险, 不可恢复)")
		journalTail = flag.Int("journal", 0, "打印最近 N 条审计事件 (0 = 不打印)")
	)
	flag.Parse()

	// .env 可选，不存在不是错误
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}
	if *freshStart {
		cfg.FreshStart = true
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "日志初始化失败: %v\n", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Errorf("打开快照存储失败: %v", err)
		os.Exit(1)
	}
	defer closeStore()

	var (
		jrn  *journal.Journal
		opts []sizing.Option
	)
	if cfg.Journal.Enabled {
		jrn, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warnf("打开审计库失败, 继续但不记录事件: %v", err)
			jrn = nil
		} else {
			defer jrn.Close()
			opts = append(opts, sizing.WithRecorder(jrn))
		}
	}

	mode := sizing.ModeContinue
	if cfg.FreshStart {
		mode = sizing.ModeFreshStart
	}

	engine, err := sizing.NewEngine(sizing.Config{
		WalletBlocks:     cfg.Sizing.WalletBlocks,
		FirstCycleFactor: cfg.Sizing.FirstCycleFactor,
		BlockCycles:      cfg.Sizing.BlockCycles,
		CapMultiplier:    cfg.Sizing.CapMultiplier,
		RiskMaxPct:       cfg.Sizing.RiskMaxPct,
		LossMultiplier:   cfg.Sizing.LossMultiplier,
	}, mode, store, opts...)
	if err != nil {
		logger.Errorf("初始化 sizing 引擎失败: %v", err)
		os.Exit(1)
	}

	fmt.Println(engine.MemoryReport())

	stats := engine.GetMemoryStats()
	fmt.Printf("汇总: cycle=%d symbols=%d active=%d blocked=%d trades=%d W/L=%d/%d win_rate=%.1f%%\n",
		stats.CurrentCycle, stats.TotalSymbols, stats.Active, stats.Blocked,
		stats.TotalTrades, stats.Wins, stats.Losses, stats.WinRate)

	if jrn != nil && *journalTail > 0 {
		printJournal(jrn, *journalTail)
	}
}

// openStore 按配置选择快照后端
func openStore(cfg *config.Config) (sizing.SnapshotStore, func(), error) {
	switch cfg.Persistence.Backend {
	case "badger":
		bs, err := storage.OpenBadgerStore(cfg.Persistence.BadgerPath, cfg.BotID)
		if err != nil {
			return nil, nil, err
		}
		return bs, func() { _ = bs.Close() }, nil
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, nil, err
		}
		return storage.NewJSONStore(filepath.Join(cfg.DataDir, "persistence"), cfg.BotID), func() {}, nil
	}
}

func printJournal(jrn *journal.Journal, n int) {
	entries, err := jrn.Recent(n)
	if err != nil {
		logger.Warnf("读取审计事件失败: %v", err)
		return
	}
	fmt.Printf("最近 %d 条审计事件:\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s cycle=%d %-12s %-10s pnl=%+.2f%% %s -> %s %s\n",
			e.TS.Format("06-01-02 15:04:05"), e.Cycle, e.Symbol, e.Kind,
			e.PnlPct, e.SizeBefore, e.SizeAfter, e.Reason)
	}
}

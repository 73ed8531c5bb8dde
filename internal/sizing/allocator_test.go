package sizing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
)

func signalsFor(symbols ...string) []domain.Signal {
	out := make([]domain.Signal, 0, len(symbols))
	for i, s := range symbols {
		out = append(out, domain.Signal{Symbol: s, Side: "LONG", Score: float64(100 - i)})
	}
	return out
}

// TestCalculateAdaptiveMarginsBasic 测试基本分配与输出对齐
func TestCalculateAdaptiveMarginsBasic(t *testing.T) {
	e := newTestEngine(t)

	margins, accepted, stats := e.CalculateAdaptiveMargins(signalsFor("AAA", "BBB", "CCC"), 10000, 0)
	if len(margins) != len(accepted) {
		t.Fatalf("margins 与 symbols 必须等长，实际为 %d/%d", len(margins), len(accepted))
	}
	if len(accepted) != 3 {
		t.Fatalf("3 个新 symbol 都应该被接受，实际为 %d", len(accepted))
	}
	// 全部是新 symbol，每个拿 base=1000
	for i, m := range margins {
		if !m.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("%s 应该分配 1000，实际为 %s", accepted[i], m)
		}
	}
	if stats.Requested != 3 || stats.Accepted != 3 {
		t.Errorf("统计应该为 requested=3 accepted=3，实际为 %d/%d", stats.Requested, stats.Accepted)
	}
	// 排序保持输入顺序
	for i, want := range []string{"AAA", "BBB", "CCC"} {
		if accepted[i] != want {
			t.Errorf("第 %d 个 symbol 应该为 %s，实际为 %s", i, want, accepted[i])
		}
	}
}

// TestCalculateAdaptiveMarginsPositionCap 测试持仓上限
func TestCalculateAdaptiveMarginsPositionCap(t *testing.T) {
	e := newTestEngine(t)

	margins, accepted, _ := e.CalculateAdaptiveMargins(signalsFor("AAA", "BBB", "CCC", "DDD"), 10000, 2)
	if len(margins) != 2 || len(accepted) != 2 {
		t.Fatalf("maxPositions=2 时应该只接受 2 个，实际为 %d", len(accepted))
	}
	if accepted[0] != "AAA" || accepted[1] != "BBB" {
		t.Errorf("应该按排名取前 2 个，实际为 %v", accepted)
	}
}

// TestCalculateAdaptiveMarginsBlockedSkipped 测试冷却 symbol 被跳过且不占名额
func TestCalculateAdaptiveMarginsBlockedSkipped(t *testing.T) {
	e := newTestEngine(t)

	e.RegisterOpening("AAA", 1000, 10000)
	e.UpdateAfterTrade("AAA", -5, 10000) // AAA 进入冷却

	margins, accepted, stats := e.CalculateAdaptiveMargins(signalsFor("AAA", "BBB", "CCC"), 10000, 2)
	if len(margins) != 2 || len(accepted) != 2 {
		t.Fatalf("冷却 symbol 不应该占用名额，应该接受 2 个，实际为 %d", len(accepted))
	}
	if accepted[0] != "BBB" || accepted[1] != "CCC" {
		t.Errorf("应该跳过 AAA 接受 BBB/CCC，实际为 %v", accepted)
	}
	if len(stats.SkippedBlocked) != 1 || stats.SkippedBlocked[0] != "AAA" {
		t.Errorf("SkippedBlocked 应该为 [AAA]，实际为 %v", stats.SkippedBlocked)
	}
}

// TestCalculateAdaptiveMarginsRiskScaling 测试组合风险等比例缩放
func TestCalculateAdaptiveMarginsRiskScaling(t *testing.T) {
	e := newTestEngine(t)

	// 10 个新 symbol，每个 base=1000，总保证金 10000
	// max_loss = 10000 × 0.5 = 5000 > risk_limit = 10000 × 0.3 = 3000
	syms := []string{"S0", "S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9"}
	margins, accepted, stats := e.CalculateAdaptiveMargins(signalsFor(syms...), 10000, 0)
	if !stats.RiskScaled {
		t.Fatal("本场景应该触发风险缩放")
	}
	if len(accepted) != 10 {
		t.Fatalf("缩放不应该减少持仓数，实际为 %d", len(accepted))
	}

	// 缩放后 max_loss == risk_limit
	if !stats.MaxLoss.Sub(stats.RiskLimit).Abs().LessThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("缩放后 max_loss 应该等于 risk_limit 3000，实际为 %s", stats.MaxLoss)
	}

	// 等比例：各 symbol 之间的相对大小保持不变（这里全相等）
	for i, m := range margins {
		if !m.Sub(margins[0]).Abs().LessThan(decimal.NewFromFloat(0.0001)) {
			t.Errorf("等额输入缩放后仍应该等额，第 %d 个为 %s，第 0 个为 %s", i, m, margins[0])
		}
	}
	// factor = 3000/5000 = 0.6，每个 1000 -> 600
	if !margins[0].Sub(decimal.NewFromInt(600)).Abs().LessThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("缩放后单笔保证金应该约为 600，实际为 %s", margins[0])
	}
}

// TestCalculateAdaptiveMarginsZeroEquity 测试权益为零或负数不分配
func TestCalculateAdaptiveMarginsZeroEquity(t *testing.T) {
	e := newTestEngine(t)

	for _, eq := range []float64{0, -100} {
		margins, accepted, stats := e.CalculateAdaptiveMargins(signalsFor("AAA"), eq, 0)
		if len(margins) != 0 || len(accepted) != 0 {
			t.Errorf("权益 %.0f 时不应该分配任何保证金，实际接受 %d 个", eq, len(accepted))
		}
		if stats.Accepted != 0 {
			t.Errorf("权益 %.0f 时 Accepted 应该为 0，实际为 %d", eq, stats.Accepted)
		}
	}
}

// TestCalculateAdaptiveMarginsMalformedSignal 测试缺少 symbol 的坏信号
func TestCalculateAdaptiveMarginsMalformedSignal(t *testing.T) {
	e := newTestEngine(t)

	signals := []domain.Signal{
		{Symbol: "AAA", Score: 90},
		{Symbol: "", Score: 80}, // 坏信号
		{Symbol: "CCC", Score: 70},
	}
	margins, accepted, _ := e.CalculateAdaptiveMargins(signals, 10000, 0)
	if len(accepted) != 3 {
		t.Fatalf("坏信号不应该中断整批分配，应该接受 3 个，实际为 %d", len(accepted))
	}
	if accepted[1] != "UNKNOWN_1" {
		t.Errorf("坏信号应该替换为占位符 UNKNOWN_1，实际为 %s", accepted[1])
	}
	if len(margins) != 3 {
		t.Errorf("margins 应该与 symbols 等长，实际为 %d", len(margins))
	}
}

// TestCalculateAdaptiveMarginsNoMutation 测试分配不修改记忆
func TestCalculateAdaptiveMarginsNoMutation(t *testing.T) {
	e := newTestEngine(t)

	e.RegisterOpening("AAA", 1000, 10000)
	before := e.GetMemoryStats()

	e.CalculateAdaptiveMargins(signalsFor("AAA", "BBB", "CCC"), 10000, 0)

	after := e.GetMemoryStats()
	if before.TotalSymbols != after.TotalSymbols {
		t.Errorf("分配不应该创建记录，之前 %d 个之后 %d 个", before.TotalSymbols, after.TotalSymbols)
	}
	if before.TotalTrades != after.TotalTrades {
		t.Error("分配不应该修改任何交易统计")
	}
}

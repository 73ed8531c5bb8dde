package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
)

// TestSlotValue 测试 slot 价值计算
func TestSlotValue(t *testing.T) {
	calc := NewSizeCalculator(Config{WalletBlocks: 5, FirstCycleFactor: 0.5})

	slot := calc.SlotValue(decimal.NewFromInt(10000))
	if !slot.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("slot_value 应该为 2000，实际为 %s", slot)
	}

	// 权益为零或负数时返回 0，不能 panic
	if got := calc.SlotValue(decimal.Zero); !got.IsZero() {
		t.Errorf("权益为 0 时 slot_value 应该为 0，实际为 %s", got)
	}
	if got := calc.SlotValue(decimal.NewFromInt(-500)); !got.IsZero() {
		t.Errorf("权益为负数时 slot_value 应该为 0，实际为 %s", got)
	}
}

// TestBaseSize 测试基础仓位计算
func TestBaseSize(t *testing.T) {
	calc := NewSizeCalculator(Config{WalletBlocks: 5, FirstCycleFactor: 0.5})

	base := calc.BaseSize(decimal.NewFromInt(2000))
	if !base.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("base_size 应该为 1000，实际为 %s", base)
	}

	if got := calc.BaseSize(decimal.Zero); !got.IsZero() {
		t.Errorf("slot 为 0 时 base_size 应该为 0，实际为 %s", got)
	}
}

// TestBaseSizeForEquity 测试从权益直接计算基础仓位
func TestBaseSizeForEquity(t *testing.T) {
	calc := NewSizeCalculator(Config{WalletBlocks: 4, FirstCycleFactor: 0.25})

	// 8000 / 4 = 2000, 2000 × 0.25 = 500
	base := calc.BaseSizeForEquity(decimal.NewFromInt(8000))
	if !base.Equal(decimal.NewFromInt(500)) {
		t.Errorf("base_size 应该为 500，实际为 %s", base)
	}
}

// TestSlotValueExactDivision 测试除法不丢精度
func TestSlotValueExactDivision(t *testing.T) {
	calc := NewSizeCalculator(Config{WalletBlocks: 3, FirstCycleFactor: 1})

	slot := calc.SlotValue(decimal.NewFromInt(100))
	// 100/3 在 decimal 下保留足够精度，乘回去应该几乎等于 100
	back := slot.Mul(decimal.NewFromInt(3))
	diff := back.Sub(decimal.NewFromInt(100)).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.0001)) {
		t.Errorf("slot × wallet_blocks 应该还原权益，偏差为 %s", diff)
	}
}

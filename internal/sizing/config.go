package sizing

import "fmt"

// 默认参数（原始机器人长期实盘使用的一组保守值）
const (
	DefaultWalletBlocks     = 5
	DefaultFirstCycleFactor = 0.5
	DefaultBlockCycles      = 3
	DefaultCapMultiplier    = 1.5
	DefaultRiskMaxPct       = 0.30
	DefaultLossMultiplier   = 0.5
)

// Config 自适应仓位引擎的固定配置。
// 进程启动时确定，运行期间不可变。
type Config struct {
	WalletBlocks     int     `yaml:"wallet_blocks" json:"wallet_blocks"`         // 钱包等分块数，slot_value = equity / wallet_blocks
	FirstCycleFactor float64 `yaml:"first_cycle_factor" json:"first_cycle_factor"` // 新 symbol 首次分配占 slot 的比例（<= 1）
	BlockCycles      int     `yaml:"block_cycles" json:"block_cycles"`           // 亏损后的冷却周期数
	CapMultiplier    float64 `yaml:"cap_multiplier" json:"cap_multiplier"`       // 单 symbol 仓位上限 = slot_value × cap_multiplier
	RiskMaxPct       float64 `yaml:"risk_max_pct" json:"risk_max_pct"`           // 组合最坏亏损占权益的上限比例
	LossMultiplier   float64 `yaml:"loss_multiplier" json:"loss_multiplier"`     // 单位保证金的最坏亏损系数
}

// ApplyDefaults 填充未设置（零值）的字段
func (c *Config) ApplyDefaults() {
	if c.WalletBlocks == 0 {
		c.WalletBlocks = DefaultWalletBlocks
	}
	if c.FirstCycleFactor == 0 {
		c.FirstCycleFactor = DefaultFirstCycleFactor
	}
	if c.BlockCycles == 0 {
		c.BlockCycles = DefaultBlockCycles
	}
	if c.CapMultiplier == 0 {
		c.CapMultiplier = DefaultCapMultiplier
	}
	if c.RiskMaxPct == 0 {
		c.RiskMaxPct = DefaultRiskMaxPct
	}
	if c.LossMultiplier == 0 {
		c.LossMultiplier = DefaultLossMultiplier
	}
}

// Validate 验证参数范围
func (c *Config) Validate() error {
	if c.WalletBlocks < 1 {
		return fmt.Errorf("wallet_blocks 必须 >= 1, 实际为 %d", c.WalletBlocks)
	}
	if c.FirstCycleFactor <= 0 || c.FirstCycleFactor > 1 {
		return fmt.Errorf("first_cycle_factor 必须在 (0, 1] 之间, 实际为 %v", c.FirstCycleFactor)
	}
	if c.BlockCycles < 0 {
		return fmt.Errorf("block_cycles 不能为负数, 实际为 %d", c.BlockCycles)
	}
	if c.CapMultiplier < 1 {
		return fmt.Errorf("cap_multiplier 必须 >= 1, 实际为 %v", c.CapMultiplier)
	}
	if c.RiskMaxPct <= 0 || c.RiskMaxPct > 1 {
		return fmt.Errorf("risk_max_pct 必须在 (0, 1] 之间, 实际为 %v", c.RiskMaxPct)
	}
	if c.LossMultiplier <= 0 {
		return fmt.Errorf("loss_multiplier 必须 > 0, 实际为 %v", c.LossMultiplier)
	}
	return nil
}

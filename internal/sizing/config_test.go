package sizing

import "testing"

// TestConfigDefaults 测试配置默认值
func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.WalletBlocks != DefaultWalletBlocks {
		t.Errorf("WalletBlocks 默认值应该为 %d，实际为 %d", DefaultWalletBlocks, cfg.WalletBlocks)
	}
	if cfg.FirstCycleFactor != DefaultFirstCycleFactor {
		t.Errorf("FirstCycleFactor 默认值应该为 %.2f，实际为 %.2f", DefaultFirstCycleFactor, cfg.FirstCycleFactor)
	}
	if cfg.BlockCycles != DefaultBlockCycles {
		t.Errorf("BlockCycles 默认值应该为 %d，实际为 %d", DefaultBlockCycles, cfg.BlockCycles)
	}
	if cfg.CapMultiplier != DefaultCapMultiplier {
		t.Errorf("CapMultiplier 默认值应该为 %.2f，实际为 %.2f", DefaultCapMultiplier, cfg.CapMultiplier)
	}
	if cfg.RiskMaxPct != DefaultRiskMaxPct {
		t.Errorf("RiskMaxPct 默认值应该为 %.2f，实际为 %.2f", DefaultRiskMaxPct, cfg.RiskMaxPct)
	}
	if cfg.LossMultiplier != DefaultLossMultiplier {
		t.Errorf("LossMultiplier 默认值应该为 %.2f，实际为 %.2f", DefaultLossMultiplier, cfg.LossMultiplier)
	}
}

// TestConfigValidation 测试配置验证
func TestConfigValidation(t *testing.T) {
	valid := &Config{}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Errorf("有效配置验证失败: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"wallet_blocks 为 0", func(c *Config) { c.WalletBlocks = -1 }},
		{"first_cycle_factor 超过 1", func(c *Config) { c.FirstCycleFactor = 1.5 }},
		{"first_cycle_factor 为负数", func(c *Config) { c.FirstCycleFactor = -0.5 }},
		{"block_cycles 为负数", func(c *Config) { c.BlockCycles = -1 }},
		{"cap_multiplier 小于 1", func(c *Config) { c.CapMultiplier = 0.5 }},
		{"risk_max_pct 超过 1", func(c *Config) { c.RiskMaxPct = 1.5 }},
		{"loss_multiplier 为负数", func(c *Config) { c.LossMultiplier = -0.1 }},
	}
	for _, tc := range cases {
		cfg := &Config{}
		cfg.ApplyDefaults()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s 应该验证失败", tc.name)
		}
	}
}

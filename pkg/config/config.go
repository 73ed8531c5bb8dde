package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PersistenceConfig 快照持久化配置
type PersistenceConfig struct {
	Backend    string `yaml:"backend" json:"backend"`         // json | badger
	BadgerPath string `yaml:"badger_path" json:"badger_path"` // 为空时默认 <data_dir>/badger
}

// JournalConfig 决策审计库配置
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"` // 为空时默认 <data_dir>/journal.db
}

// SizingConfig 仓位引擎参数（进程启动后不可变）
type SizingConfig struct {
	WalletBlocks     int     `yaml:"wallet_blocks" json:"wallet_blocks"`
	FirstCycleFactor float64 `yaml:"first_cycle_factor" json:"first_cycle_factor"`
	BlockCycles      int     `yaml:"block_cycles" json:"block_cycles"`
	CapMultiplier    float64 `yaml:"cap_multiplier" json:"cap_multiplier"`
	RiskMaxPct       float64 `yaml:"risk_max_pct" json:"risk_max_pct"`
	LossMultiplier   float64 `yaml:"loss_multiplier" json:"loss_multiplier"`
}

// Config 应用配置
type Config struct {
	BotID        string            `yaml:"bot_id" json:"bot_id"`
	DataDir      string            `yaml:"data_dir" json:"data_dir"`
	FreshStart   bool              `yaml:"fresh_start" json:"fresh_start"` // 启动时清空历史记忆
	MaxPositions int               `yaml:"max_positions" json:"max_positions"` // 0 = 不限制
	Persistence  PersistenceConfig `yaml:"persistence" json:"persistence"`
	Journal      JournalConfig     `yaml:"journal" json:"journal"`
	Sizing       SizingConfig      `yaml:"sizing" json:"sizing"`
	LogLevel     string            `yaml:"log_level" json:"log_level"`
	LogFile      string            `yaml:"log_file" json:"log_file"`
}

// LoadFromFile 加载配置：文件（YAML/JSON，可选）+ 环境变量覆盖 + 默认值
func LoadFromFile(filePath string) (*Config, error) {
	cfg := &Config{
		BotID:        "default",
		DataDir:      "data",
		MaxPositions: 5,
		Persistence:  PersistenceConfig{Backend: "json"},
		Journal:      JournalConfig{Enabled: true},
		LogLevel:     "info",
	}

	if filePath != "" {
		if err := loadConfigFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Persistence.BadgerPath == "" {
		cfg.Persistence.BadgerPath = filepath.Join(cfg.DataDir, "badger")
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = filepath.Join(cfg.DataDir, "journal.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return cfg, nil
}

// loadConfigFile 解析配置文件（支持 YAML 和 JSON）
func loadConfigFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}
	return nil
}

// applyEnvOverrides 环境变量覆盖（优先级高于配置文件）
func applyEnvOverrides(cfg *Config) {
	cfg.BotID = getEnv("BOT_ID", cfg.BotID)
	cfg.DataDir = getEnv("DATA_DIR", cfg.DataDir)
	cfg.FreshStart = parseBoolEnv("FRESH_START", cfg.FreshStart)
	cfg.MaxPositions = parseIntEnv("MAX_POSITIONS", cfg.MaxPositions)
	cfg.Persistence.Backend = getEnv("PERSISTENCE_BACKEND", cfg.Persistence.Backend)
	cfg.Persistence.BadgerPath = getEnv("PERSISTENCE_BADGER_PATH", cfg.Persistence.BadgerPath)
	cfg.Journal.Enabled = parseBoolEnv("JOURNAL_ENABLED", cfg.Journal.Enabled)
	cfg.Journal.Path = getEnv("JOURNAL_PATH", cfg.Journal.Path)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	cfg.Sizing.WalletBlocks = parseIntEnv("WALLET_BLOCKS", cfg.Sizing.WalletBlocks)
	cfg.Sizing.FirstCycleFactor = parseFloatEnv("FIRST_CYCLE_FACTOR", cfg.Sizing.FirstCycleFactor)
	cfg.Sizing.BlockCycles = parseIntEnv("BLOCK_CYCLES", cfg.Sizing.BlockCycles)
	cfg.Sizing.CapMultiplier = parseFloatEnv("CAP_MULTIPLIER", cfg.Sizing.CapMultiplier)
	cfg.Sizing.RiskMaxPct = parseFloatEnv("RISK_MAX_PCT", cfg.Sizing.RiskMaxPct)
	cfg.Sizing.LossMultiplier = parseFloatEnv("LOSS_MULTIPLIER", cfg.Sizing.LossMultiplier)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.BotID == "" {
		return fmt.Errorf("bot_id 不能为空")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir 不能为空")
	}
	if c.MaxPositions < 0 {
		return fmt.Errorf("max_positions 不能为负数, 实际为 %d", c.MaxPositions)
	}
	switch c.Persistence.Backend {
	case "json", "badger":
	default:
		return fmt.Errorf("未知的持久化后端: %s (支持 json, badger)", c.Persistence.Backend)
	}
	// 仓位参数的范围验证在 sizing.Config.Validate 中完成（那里是权威定义）
	return nil
}

// 环境变量辅助函数

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

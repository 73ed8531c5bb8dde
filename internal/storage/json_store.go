package storage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
	"github.com/FrancescoGigli/TradingJii-sub002/pkg/persistence"
)

var log = logrus.WithField("module", "storage")

// JSONStore 基于 JSON 文件的快照存储：每个 bot 实例一个文件，
// 每次保存整体覆盖（写临时文件再 rename，崩溃安全）。
type JSONStore struct {
	store persistence.Store
}

// NewJSONStore 创建 JSON 快照存储，文件位于 baseDir 下，按 botID 区分
func NewJSONStore(baseDir, botID string) *JSONStore {
	svc := persistence.NewJSONFileService(baseDir)
	return &JSONStore{
		store: svc.NewStore("sizing", botID, "memory"),
	}
}

// Load 读取快照。文件不存在返回空状态（不是错误）；
// 文件损坏返回空状态和错误，由调用方降级处理。
func (s *JSONStore) Load() (domain.GlobalState, error) {
	var st domain.GlobalState
	err := s.store.Load(&st)
	if errors.Is(err, persistence.ErrNotExists) {
		return domain.NewGlobalState(), nil
	}
	if err != nil {
		return domain.NewGlobalState(), fmt.Errorf("读取快照失败: %w", err)
	}
	if st.Symbols == nil {
		st.Symbols = make(map[string]*domain.SymbolMemory)
	}
	return st, nil
}

// Save 整体覆盖保存
func (s *JSONStore) Save(state domain.GlobalState) error {
	return s.store.Save(state)
}

// Wipe 删除快照（fresh-start 启动模式）
func (s *JSONStore) Wipe() error {
	log.Warn("🧹 [Storage] 删除已有 JSON 快照 (fresh-start)")
	return s.store.Delete()
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/FrancescoGigli/TradingJii-sub002/internal/domain"
)

// BadgerStore 基于 Badger 的快照存储，适合已经在跑 Badger 的部署。
// 单个事务内整体写入，与"临时文件 + rename"提供等价的崩溃原子性。
type BadgerStore struct {
	db  *badger.DB
	key []byte
}

// OpenBadgerStore 打开（或创建）Badger 库并返回快照存储
func OpenBadgerStore(path, botID string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 Badger 失败: %w", err)
	}
	return &BadgerStore{
		db:  db,
		key: []byte(fmt.Sprintf("sizing:%s:memory", botID)),
	}, nil
}

// Load 读取快照。键不存在返回空状态；数据损坏返回空状态和错误。
func (s *BadgerStore) Load() (domain.GlobalState, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewGlobalState(), nil
	}
	if err != nil {
		return domain.NewGlobalState(), fmt.Errorf("读取快照失败: %w", err)
	}

	var st domain.GlobalState
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.NewGlobalState(), fmt.Errorf("解析快照失败: %w", err)
	}
	if st.Symbols == nil {
		st.Symbols = make(map[string]*domain.SymbolMemory)
	}
	return st, nil
}

// Save 单事务整体覆盖
func (s *BadgerStore) Save(state domain.GlobalState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, b)
	})
}

// Wipe 删除快照键（fresh-start 启动模式）
func (s *BadgerStore) Wipe() error {
	log.Warn("🧹 [Storage] 删除已有 Badger 快照 (fresh-start)")
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
}

// Close 关闭底层数据库
func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

package services

import (
	"log"
	"sync"
)

// Ticket はアップロードイベントの発生順序を表します。
type Ticket struct {
	seq uint64
}

// DatasetStore は最新のデータセットを1件だけ保持するスロットです。
// 書き込みはイベント順（チケット順）で後勝ちとなり、古いイベントの結果が遅れて
// 届いても新しいデータを上書きしません。
type DatasetStore struct {
	mu        sync.RWMutex
	current   *Dataset
	issued    uint64
	committed uint64
}

// NewDatasetStore は空のDatasetStoreを生成します。
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

// Begin issues a ticket for a new upload event.
func (s *DatasetStore) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket{seq: s.issued}
}

// Commit stores ds if no later event has already committed. It reports whether ds was stored.
func (s *DatasetStore) Commit(t Ticket, ds *Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.seq <= s.committed {
		log.Printf("⏭️ [store] チケット %d は古いため破棄しました（現在: %d）", t.seq, s.committed)
		return false
	}
	s.committed = t.seq
	s.current = ds
	return true
}

// Set replaces the current dataset unconditionally (as a new event).
func (s *DatasetStore) Set(ds *Dataset) {
	s.Commit(s.Begin(), ds)
}

// Get returns the current dataset, or false when the store is empty.
func (s *DatasetStore) Get() (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != nil
}

// Clear empties the store. It is ordered like any other event.
func (s *DatasetStore) Clear() {
	s.Commit(s.Begin(), nil)
}

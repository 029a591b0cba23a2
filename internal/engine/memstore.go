package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemStore is a thread-safe in-memory session store. When a Persistence is
// attached every mutation is written to disk in the background.
type MemStore struct {
	mu        sync.RWMutex
	data      map[string]Entry
	persister *Persistence
	wg        sync.WaitGroup
	now       func() time.Time

	version   uint64 // bumped on every mutation, under mu
	persistMu sync.Mutex
	saved     uint64 // newest version written, under persistMu
	saveErr   error  // outcome of the newest write attempted, under persistMu
}

// NewMemStore initializes a store.
// It accepts existing data (from Load) and a persister, either may be nil.
func NewMemStore(initialData map[string]Entry, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]Entry)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
		now:       time.Now,
	}
}

// Wait waits for all background persistence tasks to complete and reports
// the error of the newest write, if it failed.
func (m *MemStore) Wait() error {
	m.wg.Wait()
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	return m.saveErr
}

func (m *MemStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.Expired(m.now()) {
		return "", ErrKeyNotFound
	}
	return e.Value, nil
}

func (m *MemStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	e := Entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
	snapshot, version := m.copyData(), m.bump()
	m.mu.Unlock()

	m.persist(snapshot, version)
	return nil
}

func (m *MemStore) Clear(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	snapshot, version := m.copyData(), m.bump()
	m.mu.Unlock()

	m.persist(snapshot, version)
	return nil
}

// Entries returns a copy of every entry that has not expired.
func (m *MemStore) Entries(_ context.Context) (map[string]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	out := make(map[string]Entry, len(m.data))
	for k, e := range m.data {
		if !e.Expired(now) {
			out[k] = e
		}
	}
	return out, nil
}

// persist writes snapshot in the background. Writes can finish out of
// order, so a snapshot older than the last one written is dropped.
func (m *MemStore) persist(snapshot map[string]Entry, version uint64) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.persistMu.Lock()
		defer m.persistMu.Unlock()
		if version < m.saved {
			return
		}
		if err := m.persister.Save(snapshot); err != nil {
			m.saveErr = fmt.Errorf("save session: %w", err)
			return
		}
		m.saved = version
		m.saveErr = nil
	}()
}

// bump MUST be called while holding m.mu.
func (m *MemStore) bump() uint64 {
	m.version++
	return m.version
}

// copyData creates a copy of the entries, dropping expired ones.
// It MUST be called while holding m.mu.
func (m *MemStore) copyData() map[string]Entry {
	now := m.now()
	out := make(map[string]Entry, len(m.data))
	for k, e := range m.data {
		if !e.Expired(now) {
			out[k] = e
		}
	}
	return out
}

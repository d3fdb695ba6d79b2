package fleet

import "sync"

// Memo caches the most recent result of a filter computation. The result is
// recomputed only when the dataset version or the filter key changes.
type Memo[K comparable, T any] struct {
	mu      sync.Mutex
	valid   bool
	version uint64
	key     K
	result  []T
}

// Get returns the cached result for (version, key), computing it on a miss.
func (m *Memo[K, T]) Get(version uint64, key K, compute func() []T) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.version == version && m.key == key {
		return m.result
	}
	m.result = compute()
	m.version, m.key, m.valid = version, key, true
	return m.result
}

// Reset drops the cached result.
func (m *Memo[K, T]) Reset() {
	m.mu.Lock()
	m.valid = false
	m.result = nil
	m.mu.Unlock()
}

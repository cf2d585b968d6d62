package store

import "strings"

// KV is the persistent key-value store the deck engine writes through.
// A single Set call is one logical transition and is applied as a whole.
type KV interface {
	Get(key string) (string, bool)
	Set(items map[string]string) error
	Delete(keys ...string) error
	Clear() error
}

// Backend names a KV implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// MemoryStore keeps everything in a map. It is used by tests and ephemeral runs.
type MemoryStore struct {
	items map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]string{}}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStore) Set(items map[string]string) error {
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(keys ...string) error {
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryStore) Clear() error {
	m.items = map[string]string{}
	return nil
}

// Keys returns the stored keys that start with prefix.
func (m *MemoryStore) Keys(prefix string) []string {
	return keysWithPrefix(m.items, prefix)
}

func keysWithPrefix(items map[string]string, prefix string) []string {
	out := make([]string, 0)
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

// Package state provides StateStore backings: an in-memory map for
// single-process use and a Redis-backed store for sharing style state
// across the extraction and (possibly later, possibly elsewhere)
// injection processes of a document pipeline.
package state

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"

	transfuse "github.com/apertium/transfuse-go"
)

type entry struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// MemoryStore is a thread-safe, process-local transfuse.StateStore,
// grounded on gotlai/cache.InMemoryCache's mutex-guarded map shape but
// keyed by (kind, hash) rather than by a single cache key, and without a
// TTL — a document's style table lives exactly as long as its Document.
type MemoryStore struct {
	mu     sync.RWMutex
	byHash map[string]entry
	format string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHash: make(map[string]entry)}
}

// Style inserts or looks up (kind, open, close) and returns its hash,
// deduplicating identical entries within the same kind.
func (m *MemoryStore) Style(kind, open, close string) (string, error) {
	hash := styleHash(kind, open, close)
	key := kind + ":" + hash

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHash[key]; !ok {
		m.byHash[key] = entry{Open: open, Close: close}
	}
	return hash, nil
}

// StyleByHash reverse-looks-up a previously minted hash.
func (m *MemoryStore) StyleByHash(kind, hash string) (string, string, bool, error) {
	key := kind + ":" + hash
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byHash[key]
	if !ok {
		return "", "", false, nil
	}
	return e.Open, e.Close, true, nil
}

// Begin is a no-op for MemoryStore: there is no batching boundary to
// open for a plain map.
func (m *MemoryStore) Begin() error { return nil }

// Commit is a no-op for MemoryStore.
func (m *MemoryStore) Commit() error { return nil }

// Format returns the format tag most recently set by SetFormat.
func (m *MemoryStore) Format() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.format
}

// SetFormat records the format tag extraction ran under.
func (m *MemoryStore) SetFormat(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.format = format
}

// Len returns the number of distinct style entries stored, for tests and
// diagnostics.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byHash)
}

// styleHash computes a content-addressed hash for a (kind, open, close)
// triple: the full 64-bit xxhash sum as unpadded base64url. BlockID (see
// DESIGN.md Open Question 3) uses the same hash and encoding but folds
// the sum to 32 bits first.
func styleHash(kind, open, close string) string {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(open)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(close)
	sum := h.Sum64()
	buf := []byte{
		byte(sum >> 56), byte(sum >> 48), byte(sum >> 40), byte(sum >> 32),
		byte(sum >> 24), byte(sum >> 16), byte(sum >> 8), byte(sum),
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(buf)
}

// snapshot is the on-disk shape Save/Load exchange. Spec.md §6 names the
// staging directory's persisted state file state.sqlite3, but the format
// is explicitly opaque to the core; no SQLite driver appears anywhere in
// the retrieved example corpus, so Save/Load use encoding/json (the same
// library the gotlai CLI uses for its --json output) rather than fabricate
// a driver dependency that isn't grounded in anything the pack shows.
type snapshot struct {
	Format  string           `json:"format"`
	Entries map[string]entry `json:"entries"`
}

// Save persists the store's content to path, so it can survive the
// process exit/restart boundary spec.md §5 allows between extraction and
// injection.
func (m *MemoryStore) Save(path string) error {
	m.mu.RLock()
	snap := snapshot{Format: m.format, Entries: make(map[string]entry, len(m.byHash))}
	for k, v := range m.byHash {
		snap.Entries[k] = v
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshaling snapshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load replaces the store's content with a snapshot previously written by
// Save.
func (m *MemoryStore) Load(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the caller's own staging directory
	if err != nil {
		return fmt.Errorf("state: reading snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("state: unmarshaling snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.format = snap.Format
	m.byHash = snap.Entries
	if m.byHash == nil {
		m.byHash = make(map[string]entry)
	}
	return nil
}

var _ transfuse.StateStore = (*MemoryStore)(nil)

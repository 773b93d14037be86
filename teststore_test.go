package transfuse

import "strconv"

// testStateStore is a minimal in-memory StateStore for unit tests,
// independent of the state subpackage so the core package's tests carry
// no import on it.
type testStateStore struct {
	entries map[string][2]string
	format  string
	next    int
}

func newTestStateStore() *testStateStore {
	return &testStateStore{entries: make(map[string][2]string)}
}

func (s *testStateStore) Style(kind, open, close string) (string, error) {
	for h, v := range s.entries {
		if v[0] == open && v[1] == close && hasKindPrefix(h, kind) {
			return stripKindPrefix(h, kind), nil
		}
	}
	s.next++
	hash := strconv.Itoa(s.next)
	s.entries[kind+"\x00"+hash] = [2]string{open, close}
	return hash, nil
}

func (s *testStateStore) StyleByHash(kind, hash string) (string, string, bool, error) {
	v, ok := s.entries[kind+"\x00"+hash]
	if !ok {
		return "", "", false, nil
	}
	return v[0], v[1], true, nil
}

// Len reports the number of distinct style entries, mirroring
// state.MemoryStore.Len so ProcessedDocument.StylesMinted can be tested
// without pulling in the state subpackage.
func (s *testStateStore) Len() int { return len(s.entries) }

func (s *testStateStore) Begin() error  { return nil }
func (s *testStateStore) Commit() error { return nil }
func (s *testStateStore) Format() string {
	return s.format
}
func (s *testStateStore) SetFormat(format string) { s.format = format }

func hasKindPrefix(key, kind string) bool {
	return len(key) > len(kind) && key[:len(kind)] == kind && key[len(kind)] == '\x00'
}

func stripKindPrefix(key, kind string) string {
	return key[len(kind)+1:]
}

var _ StateStore = (*testStateStore)(nil)

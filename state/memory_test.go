package state

import (
	"path/filepath"
	"testing"
)

func TestMemoryStoreStyleRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	hash, err := s.Style("b", "<b>", "</b>")
	if err != nil {
		t.Fatalf("Style: %v", err)
	}

	open, close, ok, err := s.StyleByHash("b", hash)
	if err != nil {
		t.Fatalf("StyleByHash: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if open != "<b>" || close != "</b>" {
		t.Errorf("got (%q, %q)", open, close)
	}
}

func TestMemoryStoreStyleDeduplicates(t *testing.T) {
	s := NewMemoryStore()

	h1, _ := s.Style("b", "<b>", "</b>")
	h2, _ := s.Style("b", "<b>", "</b>")
	if h1 != h2 {
		t.Errorf("expected identical hash for identical entry, got %q and %q", h1, h2)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}
}

func TestMemoryStoreStyleByHashMiss(t *testing.T) {
	s := NewMemoryStore()
	_, _, ok, err := s.StyleByHash("b", "nonexistent")
	if err != nil {
		t.Fatalf("StyleByHash: %v", err)
	}
	if ok {
		t.Error("expected miss")
	}
}

func TestMemoryStoreKindIsolation(t *testing.T) {
	s := NewMemoryStore()
	hash, _ := s.Style("b", "<b>", "</b>")
	_, _, ok, _ := s.StyleByHash("i", hash)
	if ok {
		t.Error("expected kind to isolate identical hashes")
	}
}

func TestMemoryStoreFormat(t *testing.T) {
	s := NewMemoryStore()
	if s.Format() != "" {
		t.Errorf("expected empty default format")
	}
	s.SetFormat("docx")
	if s.Format() != "docx" {
		t.Errorf("got %q", s.Format())
	}
}

func TestMemoryStoreBeginCommitNoop(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Begin(); err != nil {
		t.Errorf("Begin: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Errorf("Commit: %v", err)
	}
}

func TestMemoryStoreSaveLoadRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	s.SetFormat("docx")
	hash, _ := s.Style("b", "<b>", "</b>")

	path := filepath.Join(t.TempDir(), "state.sqlite3")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewMemoryStore()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Format() != "docx" {
		t.Errorf("got format %q", loaded.Format())
	}
	open, close, ok, err := loaded.StyleByHash("b", hash)
	if err != nil {
		t.Fatalf("StyleByHash: %v", err)
	}
	if !ok || open != "<b>" || close != "</b>" {
		t.Errorf("got (%q, %q, %v)", open, close, ok)
	}
}

func TestMemoryStoreLoadMissingFile(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Load(filepath.Join(t.TempDir(), "missing.sqlite3")); err == nil {
		t.Error("expected an error loading a nonexistent snapshot")
	}
}

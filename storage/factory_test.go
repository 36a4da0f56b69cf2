package storage

import (
	"path/filepath"
	"testing"
)

func TestNewStore_Kinds(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Errorf("memory store: %v", err)
	}
	if _, err := NewStore("", ""); err != nil {
		t.Errorf("default store: %v", err)
	}

	store, err := NewStore("sqlite", filepath.Join(t.TempDir(), "brine.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if err := CloseIfSupported(store); err != nil {
		t.Errorf("closing sqlite store: %v", err)
	}

	if _, err := NewStore("sqlite", ""); err == nil {
		t.Error("sqlite store without a path should fail")
	}
	if _, err := NewStore("etcd", ""); err == nil {
		t.Error("unknown store kind should fail")
	}
}

func TestCloseIfSupported_MemoryNoop(t *testing.T) {
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Errorf("memory close: %v", err)
	}
}

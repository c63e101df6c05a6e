package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache[string](time.Minute, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
	_ = c.Set("k", "v", 0)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("expected hit with v, got %q %v", v, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache[[]byte](time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired item to miss")
	}
}

func TestMemoryCache_SatisfiesCache(t *testing.T) {
	var _ Cache = NewMemoryCache[[]byte](time.Minute, time.Minute)
}

func TestKey(t *testing.T) {
	a := Key("kb", "Acme")
	if !strings.HasPrefix(a, "websnip:v1:kb:") {
		t.Errorf("unexpected key %s", a)
	}
	if a == Key("kb", "Acme Corp") || a != Key("kb", "Acme") {
		t.Error("keys should be stable and distinct")
	}
}

func TestDocumentStore_SequentialIndex(t *testing.T) {
	dir := t.TempDir()
	s := NewDocumentStore(dir)

	p0, err := s.Save("Jane Doe", "PER", []byte(`{"n":0}`))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	p1, err := s.Save("Jane Doe", "PER", []byte(`{"n":1}`))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if filepath.Base(p0) != "Jane_Doe.custom.0.json" || filepath.Base(p1) != "Jane_Doe.custom.1.json" {
		t.Errorf("unexpected paths %s %s", p0, p1)
	}
	if filepath.Dir(p0) != filepath.Join(dir, "PER", "Jane_Doe") {
		t.Errorf("unexpected dir %s", filepath.Dir(p0))
	}

	entry, err := s.Load(p1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if entry.Index != 1 || entry.Entity != "Jane Doe" || string(entry.Data) != `{"n":1}` || entry.ID == "" {
		t.Errorf("unexpected entry %+v", entry)
	}
}

func TestDocumentStore_ContinuesAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewDocumentStore(dir).Save("Acme", "ORG", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDocumentStore(dir).Save("Acme", "ORG", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "ORG", "Acme"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files, got %d", len(entries))
	}
}

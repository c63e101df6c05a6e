package handler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/websnip/internal/model"
)

func TestSlotCounts_WriteSortsByCount(t *testing.T) {
	c := NewSlotCounts()
	for _, w := range []string{"b", "a", "b", "c", "b", "a"} {
		c.Add("per:title", w)
	}
	c.Add("org:founded", "x")

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	want := "org:founded\t1\tx\t1\n" +
		"per:title\t1\tb\t3\n" +
		"per:title\t2\ta\t2\n" +
		"per:title\t3\tc\t1\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestStatsCollector_MasksAndCounts(t *testing.T) {
	var out bytes.Buffer
	s := NewStatsCollector(&out)

	cfg := model.DefaultConfig()
	if err := s.Init(&cfg); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	feed(t, s,
		mention("per:title", "Obama", "president", "POS",
			"<em>Obama</em> is <b>president</b>",
			"<em>Obama</em> spoke"),
		mention("per:title", "Obama", "president", "EE", "the <em>president</em>"),
	)
	if err := s.Finish(); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	if got := s.Words().Count("per:title", "*ENTITY*"); got != 2 {
		t.Errorf("expected 2 entity tokens, got %d", got)
	}
	if got := s.Words().Count("per:title", "*FILLER*"); got != 2 {
		t.Errorf("expected 2 filler tokens, got %d", got)
	}
	if got := s.QueryTypes().Count("per:title", "POS"); got != 2 {
		t.Errorf("expected POS counted per snippet, got %d", got)
	}
	if !strings.Contains(out.String(), "per:title\t1\tPOS\t2\n") {
		t.Errorf("missing query type stats in:\n%s", out.String())
	}
}

func TestStatsCollector_FilesAndQueryTypeRestriction(t *testing.T) {
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Mask.MarkedWords = false
	cfg.Stats.WordStatsFile = filepath.Join(dir, "words.tsv")
	cfg.Stats.QueryTypeStatsFile = filepath.Join(dir, "types.tsv")
	cfg.Stats.QueryType = "EE"

	s := NewStatsCollector(nil)
	if err := s.Init(&cfg); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	feed(t, s,
		mention("per:title", "A", "f", "POS", "alpha beta"),
		mention("per:title", "A", "f", "EE", "gamma"),
	)
	if err := s.Finish(); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	words, err := os.ReadFile(cfg.Stats.WordStatsFile)
	if err != nil {
		t.Fatalf("read words: %v", err)
	}
	if string(words) != "per:title\t1\tgamma\t1\n" {
		t.Errorf("expected only EE words, got:\n%s", words)
	}

	types, err := os.ReadFile(cfg.Stats.QueryTypeStatsFile)
	if err != nil {
		t.Fatalf("read types: %v", err)
	}
	if !strings.Contains(string(types), "per:title\t1\tEE\t1") || !strings.Contains(string(types), "per:title\t2\tPOS\t1") {
		t.Errorf("unexpected type stats:\n%s", types)
	}
}

package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
)

const records = "per:title\tJane Doe\tCEO\tchief\tPOS\n" +
	"0\t120\tJane Doe chief\n" +
	"1\thttp://news.example.org/a\t<b>Jane Doe</b> is the chief executive officer of Acme Corp and has led the company through two decades of steady growth.\n" +
	"2\thttp://news.example.org/b\tJane Doe, CEO!\n" +
	"\n" +
	"per:title\tJane Doe\tCEO\tjob\tNEU\n" +
	"0\t80\tJane Doe job\n" +
	"1\thttp://news.example.org/c\tJane Doe works at Acme Corp as the chief executive and spends most of her time meeting investors in Boston.\n" +
	"\n" +
	"org:founded\tAcme Corp\t1990\tfounded\tPOS\n" +
	"0\t50\tAcme founded\n" +
	"1\t\tAcme Corp was founded in 1990\n" +
	"\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snippets.txt")
	if err := os.WriteFile(path, []byte(records), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestPipeline(cfg *model.Config) (*Pipeline, *bytes.Buffer) {
	p := New(cfg, nil, metrics.New())
	var out bytes.Buffer
	p.SetOutput(&out)
	return p, &out
}

func TestPrintSnippets_Filters(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Filter.QueryTypes = "NEU"
	p, out := newTestPipeline(&cfg)

	if err := p.PrintSnippets(writeInput(t)); err != nil {
		t.Fatalf("printSnippets failed: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "per:title\tJane Doe\tCEO\tjob\tNEU\n0\t80\tJane Doe job\n") {
		t.Errorf("unexpected output:\n%s", got)
	}
	if strings.Contains(got, "POS") {
		t.Errorf("POS mentions should be filtered:\n%s", got)
	}
}

func TestCleanSnippets_LowerCaseOverride(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Clean.LowerCase = true
	cfg.CleanOverrides = map[string]bool{"lowerCase": true}
	p, out := newTestPipeline(&cfg)

	if err := p.CleanSnippets(writeInput(t)); err != nil {
		t.Fatalf("cleanSnippets failed: %v", err)
	}
	if !strings.Contains(out.String(), "\tacme corp was founded in 1990\n") {
		t.Errorf("expected lower-cased text:\n%s", out.String())
	}
}

func TestPrintStats(t *testing.T) {
	cfg := model.DefaultConfig()
	p, out := newTestPipeline(&cfg)

	if err := p.PrintStats(writeInput(t)); err != nil {
		t.Fatalf("printStats failed: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "org:founded\t1\tPOS\t1\n") {
		t.Errorf("missing query type ranking:\n%s", got)
	}
	if !strings.Contains(got, "per:title\t1\tPOS\t2\n") && !strings.Contains(got, "per:title\t1\tPOS\t1\n") {
		t.Errorf("missing per:title query type ranking:\n%s", got)
	}
}

func TestPrintSamples(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Samples.Dir = t.TempDir()
	cfg.Samples.QueryTypes = "POS"
	p, _ := newTestPipeline(&cfg)

	if err := p.PrintSamples(writeInput(t)); err != nil {
		t.Fatalf("printSamples failed: %v", err)
	}
	for _, name := range []string{"per:title", "org:founded"} {
		path := filepath.Join(cfg.Samples.Dir, strings.ReplaceAll(name, "/", "_")+".samples.gz")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected sample file %s: %v", path, err)
		}
	}
}

func TestPrintSamples_RequiresDir(t *testing.T) {
	cfg := model.DefaultConfig()
	p, _ := newTestPipeline(&cfg)
	if err := p.PrintSamples(writeInput(t)); err == nil {
		t.Error("expected error without samples.dir")
	}
}

func TestSaveAndPrintAnnotations(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Annotation.File = filepath.Join(t.TempDir(), "annotations.yaml")
	p, out := newTestPipeline(&cfg)
	input := writeInput(t)

	if err := p.SaveAnnotations(context.Background(), input); err != nil {
		t.Fatalf("saveAnnotations failed: %v", err)
	}
	if err := p.PrintAnnotations(""); err != nil {
		t.Fatalf("printAnnotations failed: %v", err)
	}

	got := out.String()
	if strings.Count(got, "Record #") != 3 {
		t.Errorf("expected 3 records:\n%s", got)
	}
	if !strings.Contains(got, "   for per:title\tJane Doe\tPOS\tchief\tCEO\n   got 2 documents\n") {
		t.Errorf("unexpected first record:\n%s", got)
	}

	// a second run reuses the first as its saved file
	cfg.Annotation.SavedFile = cfg.Annotation.File
	cfg.Annotation.File = filepath.Join(t.TempDir(), "again.yaml")
	if err := p.SaveAnnotations(context.Background(), input); err != nil {
		t.Fatalf("second saveAnnotations failed: %v", err)
	}
}

func TestSaveAnnotations_NoInputLeavesStreamsUntouched(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "saved.yaml")
	if err := os.WriteFile(saved, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.Annotation.File = filepath.Join(dir, "annotations.yaml")
	cfg.Annotation.SavedFile = saved
	p, _ := newTestPipeline(&cfg)

	if err := p.SaveAnnotations(context.Background(), ""); err == nil {
		t.Fatal("expected error without an input path")
	}
	if _, err := os.Stat(cfg.Annotation.File); !os.IsNotExist(err) {
		t.Errorf("annotation file should not be created, stat err: %v", err)
	}
}

func TestToCacheTrain(t *testing.T) {
	dir := t.TempDir()
	kbPath := filepath.Join(dir, "kb.tsv")
	if err := os.WriteFile(kbPath, []byte("Jane Doe\tPER\nAcme Corp\tORG\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.KB.Path = kbPath
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	p, _ := newTestPipeline(&cfg)

	if err := p.ToCache(context.Background(), writeInput(t), handler.CacheTrain); err != nil {
		t.Fatalf("toCacheTrain failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(cfg.Cache.Dir, "PER", "*", "*.custom.*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("expected one cached Jane Doe document, got %v", matches)
	}
	// the org snippet is shorter than cache.minSentenceLength tokens
	if orgs, _ := filepath.Glob(filepath.Join(cfg.Cache.Dir, "ORG", "*", "*")); len(orgs) != 0 {
		t.Errorf("expected no org documents, got %v", orgs)
	}
}

func TestToCache_RequiresDir(t *testing.T) {
	cfg := model.DefaultConfig()
	p, _ := newTestPipeline(&cfg)
	if err := p.ToCache(context.Background(), writeInput(t), handler.CacheTest); err == nil {
		t.Error("expected error without cache.dir")
	}
}

func TestLookup(t *testing.T) {
	cfg := model.DefaultConfig()
	p, out := newTestPipeline(&cfg)
	input := writeInput(t)

	n, err := p.Lookup(input, "", "Jane Doe")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if n != 2 || strings.Count(out.String(), "per:title\tJane Doe") != 2 {
		t.Errorf("expected 2 mentions, got %d:\n%s", n, out.String())
	}

	out.Reset()
	if _, err := p.Lookup(input, "", ""); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if out.String() != "org:founded\t1\nper:title\t2\n" {
		t.Errorf("unexpected slot listing:\n%s", out.String())
	}
}

func TestSummarize(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Summarize.Workers = 2
	p, out := newTestPipeline(&cfg)

	if err := p.Summarize(context.Background(), writeInput(t)); err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	fields := strings.Fields(out.String())
	var total []string
	for i, f := range fields {
		if f == "TOTAL" {
			total = fields[i+1 : i+4]
		}
	}
	if strings.Join(total, " ") != "2 3 4" {
		t.Errorf("unexpected totals %v in:\n%s", total, out.String())
	}
}

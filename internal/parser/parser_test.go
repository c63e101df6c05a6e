package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/model"
)

// recorder logs every event it receives
type recorder struct {
	handler.Base
	events   []string
	mentions []*model.Mention
}

func (r *recorder) StartRelation(name string) error {
	r.events = append(r.events, "startRelation "+name)
	return nil
}

func (r *recorder) FinishRelation(name string) error {
	r.events = append(r.events, "finishRelation "+name)
	return nil
}

func (r *recorder) StartMention(m *model.Mention) error {
	r.events = append(r.events, "startMention "+m.EntityName())
	r.mentions = append(r.mentions, m)
	return nil
}

func (r *recorder) FinishMention(m *model.Mention) error {
	r.events = append(r.events, "finishMention "+m.EntityName())
	return nil
}

func (r *recorder) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	r.events = append(r.events, fmt.Sprintf("snippet %d %s", s.Rank, s.Text))
	return nil
}

func parse(t *testing.T, opts Options, input string) (*recorder, string) {
	t.Helper()
	var logs bytes.Buffer
	opts.Diag = model.NewDiagnostics(slog.New(slog.NewTextHandler(&logs, nil)))

	rec := &recorder{}
	if err := New(opts).Parse(strings.NewReader(input), "input.txt", rec); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return rec, logs.String()
}

func TestParse_V1Blocks(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\telected\tPOS\n" +
		"0\t1200\tjane doe mayor elected\n" +
		"1\thttp://a.example/x\tJane <b>Doe</b> was elected mayor\n" +
		"2\thttp://b.example/y\tMayor Doe\n" +
		"\n\n" +
		"per:title\tJohn Roe\tsenator\t\tEE\n" +
		"0\t5\tjohn roe senator\n" +
		"\n" +
		"org:founded\tAcme\t1999\t\tEE\n" +
		"1\t\tfounded in 1999\n"

	rec, _ := parse(t, Options{Version: 1, AutoClean: true}, input)

	want := []string{
		"startRelation per:title",
		"startMention Jane Doe",
		"snippet 1 Jane Doe was elected mayor",
		"snippet 2 Mayor Doe",
		"finishMention Jane Doe",
		"startMention John Roe",
		"finishMention John Roe",
		"finishRelation per:title",
		"startRelation org:founded",
		"startMention Acme",
		"snippet 1 founded in 1999",
		"finishMention Acme",
		"finishRelation org:founded",
	}
	if !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("unexpected events:\n%s", strings.Join(rec.events, "\n"))
	}

	jane := rec.mentions[0]
	if kw, _ := jane.Keyword().Get(); kw != "elected" {
		t.Errorf("expected keyword 'elected', got %q", kw)
	}
	if jane.QueryType() != model.QueryPOS {
		t.Errorf("expected POS, got %s", jane.QueryType())
	}
	if len(jane.Snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(jane.Snippets))
	}
	if link, _ := jane.Snippets[0].Link.Get(); link != "http://a.example/x" {
		t.Errorf("unexpected link %q", link)
	}

	acme := rec.mentions[2]
	if acme.Snippets[0].Link.IsSet() {
		t.Error("expected empty link to be absent")
	}
}

func TestParse_InfoLine(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\telected\tPOS\n" +
		"0\t42\tjane doe \"mayor\" elected\n"

	rec, _ := parse(t, Options{Version: 1}, input)

	m := rec.mentions[0]
	if total, ok := m.TotalResultsCount().Get(); !ok || total != 42 {
		t.Errorf("expected total 42, got %d (%v)", total, ok)
	}
	if q, _ := m.QueryString().Get(); q != `jane doe "mayor" elected` {
		t.Errorf("unexpected query string %q", q)
	}
}

func TestParse_MalformedHeaderDropsBlock(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\n" +
		"0\t42\tq\n" +
		"1\thttp://x\tsome text\n" +
		"\n" +
		"per:title\tJohn Roe\tsenator\tkw\tNEU\n" +
		"1\thttp://y\tother text\n"

	rec, logs := parse(t, Options{Version: 1}, input)

	if len(rec.mentions) != 1 || rec.mentions[0].EntityName() != "John Roe" {
		t.Fatalf("expected only John Roe, got %v", rec.events)
	}
	if !strings.Contains(logs, "file=input.txt line=1") {
		t.Errorf("expected diagnostic naming file and line, got %s", logs)
	}
	if strings.Count(logs, "malformed line") != 1 {
		t.Errorf("expected exactly one diagnostic, got %s", logs)
	}
}

func TestParse_BadInfoLineDropsBlock(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\tkw\tPOS\n" +
		"0\tmany\tq\n" +
		"1\thttp://x\tsome text\n" +
		"\n" +
		"per:title\tJohn Roe\tsenator\tkw\tPOS\n" +
		"1\thttp://y\tother text\n"

	rec, logs := parse(t, Options{Version: 1}, input)

	if len(rec.mentions) != 1 || rec.mentions[0].EntityName() != "John Roe" {
		t.Fatalf("expected only John Roe, got %v", rec.events)
	}
	if !strings.Contains(logs, "line=2") {
		t.Errorf("expected diagnostic for line 2, got %s", logs)
	}
}

func TestParse_BadSnippetLineSkipped(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\tkw\tPOS\n" +
		"x\thttp://x\tbad rank\n" +
		"1\tonly two\n" +
		"2\thttp://y\tgood\n"

	rec, logs := parse(t, Options{Version: 1}, input)

	if len(rec.mentions) != 1 || len(rec.mentions[0].Snippets) != 1 {
		t.Fatalf("expected one mention with one snippet, got %v", rec.events)
	}
	if strings.Count(logs, "malformed line") != 2 {
		t.Errorf("expected two diagnostics, got %s", logs)
	}
}

func TestParse_RelationBoundaryIsLocal(t *testing.T) {
	input := "per:title\tA\tf\tk\tEE\n\n" +
		"org:founded\tB\tf\tk\tEE\n\n" +
		"per:title\tC\tf\tk\tEE\n"

	rec, _ := parse(t, Options{Version: 1}, input)

	starts := 0
	for _, e := range rec.events {
		if e == "startRelation per:title" {
			starts++
		}
	}
	if starts != 2 {
		t.Errorf("expected per:title to start twice, got %d: %v", starts, rec.events)
	}
}

func TestParse_UnknownQueryTypeWarnsOnce(t *testing.T) {
	input := "per:title\tA\tf\tk\tWEIRD\n\n" +
		"per:title\tB\tf\tk\tWEIRD\n\n" +
		"per:title\tC\tf\tk\tWEIRD\n"

	rec, logs := parse(t, Options{Version: 1}, input)

	for _, m := range rec.mentions {
		if m.QueryType() != model.QueryUNK || m.QueryTypeName() != "WEIRD" {
			t.Errorf("expected UNK/WEIRD, got %s/%s", m.QueryType(), m.QueryTypeName())
		}
	}
	if n := strings.Count(logs, "unknown query type"); n != 1 {
		t.Errorf("expected one warning, got %d", n)
	}
}

func TestParse_AutoCleanToggle(t *testing.T) {
	input := "per:title\tA\tf\tk\tEE\n1\thttp://x\tA <b>big</b> &amp; bold\n"

	rec, _ := parse(t, Options{Version: 1, AutoClean: false}, input)
	if got := rec.mentions[0].Snippets[0].Text; got != "A <b>big</b> &amp; bold" {
		t.Errorf("expected raw text, got %q", got)
	}

	rec, _ = parse(t, Options{Version: 1, AutoClean: true}, input)
	if got := rec.mentions[0].Snippets[0].Text; got != "A big & bold" {
		t.Errorf("expected cleaned text, got %q", got)
	}
}

func TestParse_V0Headers(t *testing.T) {
	input := "per:title\tJane Doe\tmayor\n" +
		"Jane <b>Doe</b> is mayor\n" +
		"\n" +
		"per:title\tJohn Roe\tNEG\tsenator\tnot\t10 results\n" +
		"John Roe is not a senator\n" +
		"\n" +
		"per:title\ttoo\tfew\tfields\n" +
		"ignored\n"

	rec, logs := parse(t, Options{Version: 0, AutoClean: true}, input)

	if len(rec.mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(rec.mentions))
	}

	jane := rec.mentions[0]
	if jane.QueryTypeName() != "EE" || jane.Keyword().IsSet() {
		t.Errorf("unexpected 3-field header result: %s %v", jane.QueryTypeName(), jane.Keyword())
	}
	if jane.Snippets[0].Text != "Jane <b>Doe</b> is mayor" || jane.Snippets[0].Rank != 0 {
		t.Errorf("expected verbatim unranked text, got %+v", jane.Snippets[0])
	}

	john := rec.mentions[1]
	if john.SlotValue() != "senator" || john.QueryType() != model.QueryNEG {
		t.Errorf("unexpected 6-field header result: %s %s", john.SlotValue(), john.QueryType())
	}
	if info, _ := john.ResultsInfo().Get(); info != "10 results" {
		t.Errorf("unexpected results info %q", info)
	}
	if !strings.Contains(logs, "line=7") {
		t.Errorf("expected diagnostic for line 7, got %s", logs)
	}
}

func TestParse_DuplicateInfoLine(t *testing.T) {
	input := "per:title\tA\tf\tk\tEE\n0\t1\tfirst\n0\t2\tsecond\n"

	rec, logs := parse(t, Options{Version: 1}, input)
	if q, _ := rec.mentions[0].QueryString().Get(); q != "first" {
		t.Errorf("expected first info line to win, got %q", q)
	}
	if !strings.Contains(logs, "duplicate info line") {
		t.Errorf("expected duplicate diagnostic, got %s", logs)
	}
}

func TestParsePath_Directory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.snippets", "per:title\tB\tf\tk\tEE\n")
	write("sub/a.snippets", "per:title\tA\tf\tk\tEE\n")
	write("notes.txt", "per:title\tN\tf\tk\tEE\n")

	rec := &recorder{}
	p := New(Options{Version: 1})
	if err := p.ParsePath(dir, "*.snippets", rec); err != nil {
		t.Fatalf("parse path failed: %v", err)
	}

	var names []string
	for _, m := range rec.mentions {
		names = append(names, m.EntityName())
	}
	if !reflect.DeepEqual(names, []string{"B", "A"}) {
		t.Errorf("unexpected mentions %v", names)
	}
}

func TestExpand_InvalidPattern(t *testing.T) {
	if _, err := Expand(t.TempDir(), "[unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestParseFile_Missing(t *testing.T) {
	err := New(Options{Version: 1}).ParseFile(filepath.Join(t.TempDir(), "nope"), &recorder{})
	if err == nil {
		t.Error("expected error for missing file")
	}
}

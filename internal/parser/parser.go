// Package parser reads web-snippet record files and drives a handler chain.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/websnip/internal/clean"
	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
)

const maxLineSize = 4 * 1024 * 1024

// Options configures a Parser
type Options struct {
	Version   int  // 0 or 1
	AutoClean bool // markup-clean version 1 snippet text
	Diag      *model.Diagnostics
	Metrics   *metrics.Metrics
}

// Parser turns record files into handler events
type Parser struct {
	opts Options
}

// New creates a parser
func New(opts Options) *Parser {
	if opts.Diag == nil {
		opts.Diag = model.NewDiagnostics(nil)
	}
	return &Parser{opts: opts}
}

// ParsePath parses a file, or every matching file below a directory
func (p *Parser) ParsePath(root, pattern string, h handler.Handler) error {
	files, err := Expand(root, pattern)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := p.ParseFile(file, h); err != nil {
			return err
		}
	}
	return nil
}

// ParseFile parses one file
func (p *Parser) ParseFile(path string, h handler.Handler) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(f, path, h)
}

// Parse reads records from r; name labels diagnostics
func (p *Parser) Parse(r io.Reader, name string, h handler.Handler) error {
	s := &state{p: p, name: name, h: h}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		s.lineNo++
		if err := s.line(strings.TrimSpace(scanner.Text())); err != nil {
			return fmt.Errorf("%s:%d: %w", name, s.lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	if err := s.closeBlock(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if s.relationOpen {
		if err := h.FinishRelation(s.relation); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// state is the per-file state machine. A block is announced to the chain
// only once its first body line (or its end) is reached, so a block whose
// info line is unusable can still be dropped without emitting anything.
type state struct {
	p      *Parser
	name   string
	h      handler.Handler
	lineNo int

	mention *model.Mention
	emitted bool
	dropped bool

	relation     string
	relationOpen bool
}

func (s *state) line(line string) error {
	switch {
	case line == "":
		return s.closeBlock()
	case s.dropped:
		return nil
	case s.mention == nil:
		s.header(line)
		return nil
	case s.p.opts.Version == 0:
		return s.bodyV0(line)
	default:
		return s.bodyV1(line)
	}
}

func (s *state) header(line string) {
	fields := strings.Split(line, "\t")
	diag := s.p.opts.Diag

	var m *model.Mention
	if s.p.opts.Version == 0 {
		switch len(fields) {
		case 3:
			m = model.NewMention(fields[0], fields[1], fields[2], "EE", diag)
		case 6:
			m = model.NewMention(fields[0], fields[1], fields[3], fields[2], diag)
			_ = m.SetKeyword(fields[4])
			_ = m.SetResultsInfo(fields[5])
		}
	} else if len(fields) == 5 {
		m = model.NewMention(fields[0], fields[1], fields[2], fields[4], diag)
		_ = m.SetKeyword(fields[3])
	}

	if m == nil {
		s.malformed("header", fmt.Sprintf("header has %d fields", len(fields)))
		s.dropped = true
		return
	}
	s.mention = m
	s.emitted = false
}

func (s *state) bodyV0(line string) error {
	return s.snippet(&model.Snippet{Text: line})
}

func (s *state) bodyV1(line string) error {
	fields := strings.Split(line, "\t")

	rank, err := strconv.Atoi(fields[0])
	if err == nil && rank == 0 {
		return s.info(fields)
	}

	if len(fields) != 3 {
		s.malformed("snippet", fmt.Sprintf("snippet line has %d fields", len(fields)))
		return nil
	}
	if err != nil {
		s.malformed("snippet", fmt.Sprintf("invalid rank %q", fields[0]))
		return nil
	}

	sn := &model.Snippet{Rank: rank, Text: fields[2]}
	if fields[1] != "" {
		sn.Link = model.Some(fields[1])
	}
	if s.p.opts.AutoClean {
		sn.Text = clean.Markup(sn.Text, true)
	}
	return s.snippet(sn)
}

func (s *state) info(fields []string) error {
	if s.mention.TotalResultsCount().IsSet() {
		s.malformed("info", "duplicate info line")
		return nil
	}

	var total int64
	var err error
	if len(fields) < 2 {
		err = fmt.Errorf("missing result count")
	} else {
		total, err = strconv.ParseInt(fields[1], 10, 64)
	}
	if err != nil {
		s.malformed("info", fmt.Sprintf("invalid info line: %v", err))
		if !s.emitted {
			s.mention = nil
			s.dropped = true
		}
		return nil
	}

	query := ""
	if len(fields) > 2 {
		query = strings.Join(fields[2:], "\t")
	}
	_ = s.mention.SetQueryInfo(total, query)
	return s.emit()
}

func (s *state) snippet(sn *model.Snippet) error {
	if err := s.emit(); err != nil {
		return err
	}
	s.mention.AddSnippet(sn)
	s.p.opts.Metrics.SnippetParsed()
	return s.h.ProcessSnippet(s.mention, sn)
}

// emit announces the current block, opening a new relation when its slot
// differs from the previously announced block's slot
func (s *state) emit() error {
	if s.emitted {
		return nil
	}
	s.emitted = true

	slot := s.mention.SlotName()
	if !s.relationOpen || s.relation != slot {
		if s.relationOpen {
			if err := s.h.FinishRelation(s.relation); err != nil {
				return err
			}
		}
		if err := s.h.StartRelation(slot); err != nil {
			return err
		}
		s.relation = slot
		s.relationOpen = true
	}

	s.p.opts.Metrics.MentionParsed()
	return s.h.StartMention(s.mention)
}

func (s *state) closeBlock() error {
	defer func() {
		s.mention = nil
		s.emitted = false
		s.dropped = false
	}()

	if s.mention == nil {
		return nil
	}
	if err := s.emit(); err != nil {
		return err
	}
	return s.h.FinishMention(s.mention)
}

func (s *state) malformed(kind, reason string) {
	s.p.opts.Diag.MalformedLine(s.name, s.lineNo, reason)
	s.p.opts.Metrics.MalformedLine(kind)
}

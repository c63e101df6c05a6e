package handler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/websnip/internal/clean"
	"github.com/ppiankov/websnip/internal/model"
)

// SlotCounts is a slot x key frequency table
type SlotCounts struct {
	counts map[string]map[string]int
}

// NewSlotCounts creates an empty table
func NewSlotCounts() *SlotCounts {
	return &SlotCounts{counts: make(map[string]map[string]int)}
}

// Add increments the count of key under slot
func (c *SlotCounts) Add(slot, key string) {
	row := c.counts[slot]
	if row == nil {
		row = make(map[string]int)
		c.counts[slot] = row
	}
	row[key]++
}

// Count returns the count of key under slot
func (c *SlotCounts) Count(slot, key string) int {
	return c.counts[slot][key]
}

// Write prints slot\trank\tkey\tcount lines: slots sorted by name, keys by
// descending count with ties broken alphabetically, ranks starting at 1
func (c *SlotCounts) Write(w io.Writer) error {
	slots := make([]string, 0, len(c.counts))
	for slot := range c.counts {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		row := c.counts[slot]
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if row[keys[i]] != row[keys[j]] {
				return row[keys[i]] > row[keys[j]]
			}
			return keys[i] < keys[j]
		})
		for i, k := range keys {
			if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", slot, i+1, k, row[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// StatsCollector accumulates word and query-type statistics per slot
type StatsCollector struct {
	Base
	stdout io.Writer

	masker    clean.Masker
	queryType string // restrict word output to one raw query type

	words      *SlotCounts
	typedWords map[string]*SlotCounts
	queryTypes *SlotCounts

	wordOut, typeOut       io.Writer
	wordCloser, typeCloser io.Closer
}

// NewStatsCollector creates a collector; empty stats file names print to stdout
func NewStatsCollector(stdout io.Writer) *StatsCollector {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &StatsCollector{
		stdout:     stdout,
		words:      NewSlotCounts(),
		typedWords: make(map[string]*SlotCounts),
		queryTypes: NewSlotCounts(),
	}
}

func (s *StatsCollector) Init(cfg *model.Config) error {
	s.masker = clean.Masker{
		MarkedWords:      cfg.Mask.MarkedWords,
		MarkEntityFiller: cfg.Mask.MarkEntityFiller,
	}
	s.queryType = cfg.Stats.QueryType

	var err error
	if s.wordOut, s.wordCloser, err = openOutput(cfg.Stats.WordStatsFile, s.stdout); err != nil {
		return err
	}
	if s.typeOut, s.typeCloser, err = openOutput(cfg.Stats.QueryTypeStatsFile, s.stdout); err != nil {
		_ = s.wordCloser.Close()
		return err
	}
	return s.Base.Init(cfg)
}

func (s *StatsCollector) ProcessSnippet(m *model.Mention, sn *model.Snippet) error {
	text := s.masker.Mask(sn.Text, m.EntityName(), m.SlotValue())
	slot := m.SlotName()
	typ := m.QueryTypeName()

	typed := s.typedWords[typ]
	if typed == nil {
		typed = NewSlotCounts()
		s.typedWords[typ] = typed
	}
	for _, tok := range strings.Fields(text) {
		s.words.Add(slot, tok)
		typed.Add(slot, tok)
	}
	s.queryTypes.Add(slot, typ)
	return s.Base.ProcessSnippet(m, sn)
}

// Words returns the accumulated slot x word table
func (s *StatsCollector) Words() *SlotCounts { return s.words }

// QueryTypes returns the accumulated slot x raw query type table
func (s *StatsCollector) QueryTypes() *SlotCounts { return s.queryTypes }

func (s *StatsCollector) Finish() error {
	return finishChain(&s.Base, s.flush())
}

func (s *StatsCollector) flush() error {
	if s.wordOut == nil {
		return nil
	}
	var errs []error

	words := s.words
	if s.queryType != "" {
		words = s.typedWords[s.queryType]
		if words == nil {
			words = NewSlotCounts()
		}
	}
	errs = append(errs, writeBuffered(s.wordOut, words.Write))
	errs = append(errs, writeBuffered(s.typeOut, s.queryTypes.Write))
	errs = append(errs, s.wordCloser.Close(), s.typeCloser.Close())
	s.wordOut, s.typeOut = nil, nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

func writeBuffered(w io.Writer, write func(io.Writer) error) error {
	bw := bufio.NewWriter(w)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}

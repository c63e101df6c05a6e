package handler

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/ppiankov/websnip/internal/clean"
	"github.com/ppiankov/websnip/internal/model"
)

const (
	positiveLabel = "+"
	negativeLabel = "-"
)

var slotFileName = strings.NewReplacer("/", "_", string(os.PathSeparator), "_")

// SampleConverter writes snippets as labeled, tab separated training samples
// into gzip files. Negative samples for person slots are drawn from
// organization slots and vice versa.
type SampleConverter struct {
	Base
	logger *slog.Logger
	rand   *rand.Rand

	dir            string
	name           string
	oneFilePerSlot bool
	posOnly        bool
	allowed        map[model.QueryType]bool
	masker         *clean.Masker

	files       map[string]*sampleFile
	slotSamples map[string][]string
}

type sampleFile struct {
	f  *os.File
	gz *gzip.Writer
	w  *bufio.Writer
}

func (s *sampleFile) close() error {
	return errors.Join(s.w.Flush(), s.gz.Close(), s.f.Close())
}

// NewSampleConverter creates a converter; r seeds negative sampling and
// may be nil for a time-based seed
func NewSampleConverter(logger *slog.Logger, r *rand.Rand) *SampleConverter {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		seed := uint64(time.Now().UnixNano())
		r = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &SampleConverter{
		logger: logger,
		rand:   r,
		files:  make(map[string]*sampleFile),
	}
}

func (c *SampleConverter) Init(cfg *model.Config) error {
	sc := cfg.Samples
	if sc.Dir == "" {
		return fmt.Errorf("samples.dir is required")
	}
	c.dir = sc.Dir
	c.name = sc.Name
	c.oneFilePerSlot = sc.OneFilePerSlot
	c.posOnly = sc.PosSamplesOnly

	types, err := model.ParseQueryTypeList(sc.QueryTypes)
	if err != nil {
		return fmt.Errorf("samples.queryTypes: %w", err)
	}
	if len(types) > 0 {
		c.allowed = make(map[model.QueryType]bool, len(types))
		for _, q := range types {
			c.allowed[q] = true
		}
	}

	if cfg.Mask.MarkedWords {
		c.masker = &clean.Masker{MarkedWords: true, MarkEntityFiller: cfg.Mask.MarkEntityFiller}
	}
	if !c.posOnly {
		c.slotSamples = make(map[string][]string)
	}

	if info, err := os.Stat(c.dir); err == nil && !info.IsDir() {
		return fmt.Errorf("samples dir %s is not a directory", c.dir)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create samples dir: %w", err)
	}
	return c.Base.Init(cfg)
}

func (c *SampleConverter) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	if c.allowed == nil || c.allowed[m.QueryType()] {
		sample := c.sampleString(m, s)
		if err := c.output(m.SlotName(), sample, positiveLabel); err != nil {
			return err
		}
		if !c.posOnly {
			c.slotSamples[m.SlotName()] = append(c.slotSamples[m.SlotName()], sample)
		}
	}
	return c.Base.ProcessSnippet(m, s)
}

func (c *SampleConverter) sampleString(m *model.Mention, s *model.Snippet) string {
	fields := []string{m.QueryType().String(), m.SlotName(), m.EntityName(), m.SlotValue(), s.Text}
	if c.masker != nil {
		fields = append(fields, c.masker.Mask(s.Text, m.EntityName(), m.SlotValue()))
	}
	return strings.Join(fields, "\t")
}

func (c *SampleConverter) output(slot, sample, label string) error {
	name := c.name
	if c.oneFilePerSlot {
		name = slotFileName.Replace(slot)
	}
	sf, err := c.file(name)
	if err != nil {
		return err
	}

	line := label + "\t"
	if !c.oneFilePerSlot {
		line += slot + "\t"
	}
	if _, err := sf.w.WriteString(line + sample + "\n"); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	return nil
}

func (c *SampleConverter) file(name string) (*sampleFile, error) {
	if sf, ok := c.files[name]; ok {
		return sf, nil
	}
	path := filepath.Join(c.dir, name+".samples.gz")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create samples file: %w", err)
	}
	gz := gzip.NewWriter(f)
	sf := &sampleFile{f: f, gz: gz, w: bufio.NewWriter(gz)}
	c.files[name] = sf
	return sf, nil
}

func (c *SampleConverter) Finish() error {
	var errs []error
	if !c.posOnly && c.slotSamples != nil {
		errs = append(errs, c.addNegativeSamples())
	}
	names := make([]string, 0, len(c.files))
	for name := range c.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.files[name].close(); err != nil {
			errs = append(errs, fmt.Errorf("close samples %s: %w", name, err))
		}
	}
	c.files = make(map[string]*sampleFile)
	return finishChain(&c.Base, errors.Join(errs...))
}

func (c *SampleConverter) addNegativeSamples() error {
	var perSlots, orgSlots []string
	for slot := range c.slotSamples {
		switch {
		case strings.HasPrefix(slot, "per:"):
			perSlots = append(perSlots, slot)
		case strings.HasPrefix(slot, "org:"):
			orgSlots = append(orgSlots, slot)
		default:
			c.logger.Warn("skipping unknown slot type", "slot", slot)
		}
	}
	sort.Strings(perSlots)
	sort.Strings(orgSlots)

	for _, slot := range perSlots {
		if err := c.negativesFor(slot, orgSlots); err != nil {
			return err
		}
	}
	for _, slot := range orgSlots {
		if err := c.negativesFor(slot, perSlots); err != nil {
			return err
		}
	}
	return nil
}

func (c *SampleConverter) negativesFor(slot string, others []string) error {
	quota := len(c.slotSamples[slot])
	for _, sample := range c.reservoir(others, quota) {
		if err := c.output(slot, sample, negativeLabel); err != nil {
			return err
		}
	}
	return nil
}

// reservoir draws up to n samples uniformly from the pooled slots; the
// selection never grows past n regardless of pool size
func (c *SampleConverter) reservoir(slots []string, n int) []string {
	if n <= 0 {
		return nil
	}
	selected := make([]string, 0, n)
	seen := 0
	for _, slot := range slots {
		for _, sample := range c.slotSamples[slot] {
			seen++
			if len(selected) < n {
				selected = append(selected, sample)
				continue
			}
			if c.rand.Float64() < float64(n)/float64(seen) {
				selected[c.rand.IntN(n)] = sample
			}
		}
	}
	return selected
}

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/websnip/internal/annotate"
	"github.com/ppiankov/websnip/internal/kb"
	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
)

// CacheMode selects which Mentions the Cacher keeps
type CacheMode int

const (
	// CacheTest keeps neutral queries
	CacheTest CacheMode = iota
	// CacheTrain keeps positive queries
	CacheTrain
)

func (m CacheMode) queryType() model.QueryType {
	if m == CacheTest {
		return model.QueryNEU
	}
	return model.QueryPOS
}

func (m CacheMode) String() string {
	if m == CacheTest {
		return "test"
	}
	return "train"
}

// DocumentWriter persists one annotated document for an entity and
// returns where it was written
type DocumentWriter interface {
	Save(entity, entityType string, payload []byte) (string, error)
}

// LinkFilter reports whether a snippet link may be used
type LinkFilter interface {
	Allows(link string) bool
}

var (
	leadingDate     = regexp.MustCompile(`^[A-Z][a-z][a-z]\s+\d\d?\s*,\s*[12]\d\d\d`)
	leadingEllipsis = regexp.MustCompile(`^\s*\.\.\.+`)
)

// CacherDeps are the ports a Cacher talks to
type CacherDeps struct {
	Resolver kb.Resolver
	Splitter annotate.SentenceSplitter
	Provider annotate.Provider
	Store    DocumentWriter
	Links    LinkFilter // optional
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Cacher annotates the sentences of selected Mentions and persists them
// per entity. Unknown or incompatible entities are logged and skipped.
type Cacher struct {
	Base
	ctx  context.Context
	mode CacheMode
	deps CacherDeps

	minSentenceLength int
	disallowed        []string

	snippets []*model.Snippet

	docCount       int
	queriesSkipped int
	queriesValid   int
}

// NewCacher creates a cacher; ctx bounds every annotation call
func NewCacher(ctx context.Context, mode CacheMode, deps CacherDeps) *Cacher {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Splitter == nil {
		deps.Splitter = annotate.RuleSplitter{}
	}
	return &Cacher{ctx: ctx, mode: mode, deps: deps}
}

func (c *Cacher) Init(cfg *model.Config) error {
	if c.deps.Resolver == nil || c.deps.Provider == nil || c.deps.Store == nil {
		return fmt.Errorf("cacher needs a resolver, a provider and a store")
	}
	c.minSentenceLength = cfg.Cache.MinSentenceLength
	c.disallowed = c.disallowed[:0]
	for _, src := range cfg.Cache.DisallowedSources {
		if src = strings.ToLower(strings.TrimSpace(src)); src != "" {
			c.disallowed = append(c.disallowed, src)
		}
	}
	return c.Base.Init(cfg)
}

func (c *Cacher) StartMention(m *model.Mention) error {
	c.snippets = c.snippets[:0]
	return c.Base.StartMention(m)
}

func (c *Cacher) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	c.snippets = append(c.snippets, s)
	return c.Base.ProcessSnippet(m, s)
}

func (c *Cacher) FinishMention(m *model.Mention) error {
	if err := c.cache(m); err != nil {
		return err
	}
	return c.Base.FinishMention(m)
}

// cache runs the per-Mention work. Only IO failures are returned.
func (c *Cacher) cache(m *model.Mention) error {
	if m.QueryType() != c.mode.queryType() {
		return nil
	}
	log := c.deps.Logger.With("entity", m.EntityName(), "slot", m.SlotName())

	name := html.UnescapeString(m.EntityName())
	typ, ok, err := c.deps.Resolver.Resolve(name)
	if err != nil {
		return fmt.Errorf("resolve entity type for %q: %w", name, err)
	}
	if !ok {
		c.queriesSkipped++
		c.deps.Metrics.MentionSkipped("unknown_entity_type")
		log.Warn("unknown entity type")
		return nil
	}
	c.queriesValid++

	if !kb.Compatible(m.SlotName(), typ) {
		c.deps.Metrics.MentionSkipped("incompatible_slot")
		log.Warn("discarding relation incompatible with entity type", "type", string(typ))
		return nil
	}

	text, sentences := c.sentences(log)
	if len(sentences) == 0 {
		return nil
	}

	doc, err := c.deps.Provider.Annotate(c.ctx, annotate.Request{Text: text, Sentences: sentences})
	if err != nil {
		c.deps.Metrics.AnnotationFailed()
		log.Error("annotation failed, skipping mention", "error", err, "sentences", sentenceTexts(sentences))
		return nil
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document for %q: %w", m.EntityName(), err)
	}
	path, err := c.deps.Store.Save(m.EntityName(), string(typ), payload)
	if err != nil {
		return fmt.Errorf("save document for %q: %w", m.EntityName(), err)
	}
	c.docCount++
	c.deps.Metrics.DocumentWritten()
	log.Debug("cached document", "path", path, "sentences", len(doc.Sentences))
	return nil
}

// sentences normalizes the usable snippets, joins them one per line and
// returns the sentences long enough to keep, with offsets into the joined text
func (c *Cacher) sentences(log *slog.Logger) (string, []annotate.Sentence) {
	var b strings.Builder
	var kept []annotate.Sentence

	for _, s := range c.snippets {
		if !c.usable(s, log) {
			continue
		}
		normed := leadingDate.ReplaceAllString(s.Text, "")
		normed = leadingEllipsis.ReplaceAllString(normed, "")

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		base := b.Len()
		b.WriteString(normed)

		for _, sent := range c.deps.Splitter.Split(normed) {
			if len(sent.Tokens) < c.minSentenceLength {
				continue
			}
			kept = append(kept, annotate.NewSentence(sent.Text, base+sent.Begin))
		}
	}
	return b.String(), kept
}

func (c *Cacher) usable(s *model.Snippet, log *slog.Logger) bool {
	lower := strings.ToLower(s.Text)
	for _, src := range c.disallowed {
		if strings.Contains(lower, src) {
			log.Info("skipping snippet from disallowed source", "source", src)
			return false
		}
	}
	if c.deps.Links != nil {
		if link, ok := s.Link.Get(); ok && !c.deps.Links.Allows(link) {
			log.Info("skipping snippet with disallowed link", "link", link)
			return false
		}
	}
	return true
}

// Summary returns documents written, skipped queries and valid queries
func (c *Cacher) Summary() (docs, skipped, valid int) {
	return c.docCount, c.queriesSkipped, c.queriesValid
}

func (c *Cacher) Finish() error {
	c.deps.Logger.Info(fmt.Sprintf("found %d documents, skipped %d/%d queries",
		c.docCount, c.queriesSkipped, c.queriesValid), "mode", c.mode.String())
	return c.Base.Finish()
}

func sentenceTexts(sentences []annotate.Sentence) []string {
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	return texts
}

// Package pipeline wires the parser and handler stages into the runnable
// operations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ppiankov/websnip/internal/annotate"
	"github.com/ppiankov/websnip/internal/cache"
	"github.com/ppiankov/websnip/internal/clean"
	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/kb"
	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
	"github.com/ppiankov/websnip/internal/parser"
	"github.com/ppiankov/websnip/internal/util"
	"github.com/ppiankov/websnip/internal/worker"
)

// Pipeline runs operations against one configuration. The Diagnostics
// context lives as long as the Pipeline, so unknown query types are
// reported once per run.
type Pipeline struct {
	config  *model.Config
	diag    *model.Diagnostics
	metrics *metrics.Metrics
	logger  *slog.Logger
	stdout  io.Writer
}

// New creates a pipeline; logger and m may be nil
func New(cfg *model.Config, logger *slog.Logger, m *metrics.Metrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		config:  cfg,
		diag:    model.NewDiagnostics(logger),
		metrics: m,
		logger:  logger,
		stdout:  os.Stdout,
	}
}

// SetOutput redirects what operations print to stdout
func (p *Pipeline) SetOutput(w io.Writer) {
	p.stdout = w
}

func (p *Pipeline) newParser(autoClean bool) *parser.Parser {
	return parser.New(parser.Options{
		Version:   p.config.Format.Version,
		AutoClean: autoClean,
		Diag:      p.diag,
		Metrics:   p.metrics,
	})
}

// run initializes head, parses path through it and always finishes it
func (p *Pipeline) run(path string, autoClean bool, head handler.Handler) (err error) {
	if path == "" {
		return fmt.Errorf("no input path")
	}
	if err := head.Init(p.config); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if ferr := head.Finish(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("finish: %w", ferr))
		}
	}()

	return p.newParser(autoClean).ParsePath(path, p.config.Input.Pattern, head)
}

// PrintStats prints per-slot word and query-type rankings
func (p *Pipeline) PrintStats(path string) error {
	opts := clean.FromConfig(p.config.Clean)
	opts.KeepBold = true
	opts.KeepEm = true
	opts.KeepEllipsis = false
	opts.Normalize = true
	opts.UnescapeHTML = true
	opts.DiscardPunctuation = true
	opts.LowerCase = true

	head := handler.Chain(
		handler.NewFilterer(),
		handler.NewCleaner(opts),
		handler.NewStatsCollector(p.stdout),
	)
	return p.run(path, false, head)
}

// CleanSnippets prints the filtered Mentions with cleaned snippet text
func (p *Pipeline) CleanSnippets(path string) error {
	head := handler.Chain(
		handler.NewFilterer(),
		handler.NewCleaner(clean.FromConfig(p.config.Clean)),
		handler.NewWriter(p.stdout),
	)
	return p.run(path, p.config.Format.AutoClean, head)
}

// PrintSnippets prints the filtered Mentions
func (p *Pipeline) PrintSnippets(path string) error {
	head := handler.Chain(
		handler.NewFilterer(),
		handler.NewWriter(p.stdout),
	)
	return p.run(path, p.config.Format.AutoClean, head)
}

// PrintSamples writes gzip training samples under samples.dir
func (p *Pipeline) PrintSamples(path string) error {
	opts := clean.FromConfig(p.config.Clean)
	opts.DiscardPunctuation = true
	opts.LowerCase = true

	head := handler.Chain(
		handler.NewCleaner(opts),
		handler.NewSampleConverter(p.logger, nil),
	)
	return p.run(path, false, head)
}

// Provider builds the configured annotation provider, rate limited when
// it talks to a remote endpoint
func (p *Pipeline) Provider() (annotate.Provider, error) {
	ac := p.config.Annotation
	cfg := annotate.ConfigFromModel(ac)
	provider, err := annotate.NewProvider(cfg, annotate.RuleSplitter{})
	if err != nil {
		return nil, err
	}
	limiter := worker.NewLimiter(ac.RequestsPerSecond, ac.Burst)
	return annotate.WithRateLimit(provider, limiter, annotate.Endpoint(cfg)), nil
}

// SaveAnnotations annotates every snippet into annotation.file, reusing
// matching records from annotation.savedFile when set
func (p *Pipeline) SaveAnnotations(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("no input path")
	}
	ac := p.config.Annotation
	if ac.File == "" {
		return fmt.Errorf("annotation.file is required")
	}

	provider, err := p.Provider()
	if err != nil {
		return fmt.Errorf("annotation provider: %w", err)
	}

	var prior handler.RecordSource
	if ac.SavedFile != "" {
		r, err := annotate.OpenStream(ac.SavedFile)
		if err != nil {
			return err
		}
		p.logger.Info("using saved annotations", "file", ac.SavedFile)
		prior = r
	}

	out, err := annotate.CreateStream(ac.File)
	if err != nil {
		if prior != nil {
			_ = prior.Close()
		}
		return err
	}

	head := handler.NewAnnotator(ctx, provider, out, prior, p.logger, p.metrics)
	return p.run(path, p.config.Format.AutoClean, head)
}

// PrintAnnotations prints every record of an annotation stream
func (p *Pipeline) PrintAnnotations(path string) error {
	if path == "" {
		path = p.config.Annotation.File
	}
	if path == "" {
		return fmt.Errorf("no annotation stream given")
	}

	r, err := annotate.OpenStream(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	return PrintRecords(p.stdout, r)
}

// ToCache annotates the usable sentences of test (NEU) or train (POS)
// Mentions and stores them per entity under cache.dir
func (p *Pipeline) ToCache(ctx context.Context, path string, mode handler.CacheMode) error {
	cc := p.config.Cache
	if cc.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}

	resolver, err := kb.Open(p.config.KB.Path, p.config.KB.CacheTTL)
	if err != nil {
		return fmt.Errorf("open knowledge base: %w", err)
	}
	if c, ok := resolver.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	provider, err := p.Provider()
	if err != nil {
		return fmt.Errorf("annotation provider: %w", err)
	}

	deps := handler.CacherDeps{
		Resolver: resolver,
		Splitter: annotate.RuleSplitter{},
		Provider: provider,
		Store:    cache.NewDocumentStore(cc.Dir),
		Logger:   p.logger,
		Metrics:  p.metrics,
	}
	if cc.LinkPolicy != "" {
		policy, err := util.LoadLinkPolicy(cc.LinkPolicy, cc.UserAgent)
		if err != nil {
			return err
		}
		deps.Links = policy
	}

	return p.run(path, p.config.Format.AutoClean, handler.NewCacher(ctx, mode, deps))
}

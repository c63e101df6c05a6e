package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ppiankov/websnip/internal/annotate"
	"github.com/ppiankov/websnip/internal/metrics"
	"github.com/ppiankov/websnip/internal/model"
)

// RecordSink receives annotation records
type RecordSink interface {
	Write(rec annotate.Record) error
	Close() error
}

// RecordSource yields previously written annotation records, io.EOF at the end
type RecordSource interface {
	Next() (*annotate.Record, error)
	Close() error
}

// Annotator annotates every snippet of each Mention and appends one
// (header, documents) record per Mention to the output stream. Records
// from a prior stream are reused when they match in order.
type Annotator struct {
	Base
	ctx      context.Context
	provider annotate.Provider
	out      RecordSink
	prior    RecordSource
	logger   *slog.Logger
	metrics  *metrics.Metrics

	snippets   []*model.Snippet
	priorReads int
}

// NewAnnotator creates an annotator writing to out; prior may be nil
func NewAnnotator(ctx context.Context, provider annotate.Provider, out RecordSink, prior RecordSource, logger *slog.Logger, m *metrics.Metrics) *Annotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{
		ctx:      ctx,
		provider: provider,
		out:      out,
		prior:    prior,
		logger:   logger,
		metrics:  m,
	}
}

func (a *Annotator) Init(cfg *model.Config) error {
	if a.provider == nil || a.out == nil {
		return fmt.Errorf("annotator needs a provider and an output stream")
	}
	return a.Base.Init(cfg)
}

func (a *Annotator) StartMention(m *model.Mention) error {
	a.snippets = a.snippets[:0]
	return a.Base.StartMention(m)
}

func (a *Annotator) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	a.snippets = append(a.snippets, s)
	return a.Base.ProcessSnippet(m, s)
}

func (a *Annotator) FinishMention(m *model.Mention) error {
	header := AnnotationHeader(m)

	docs := a.fromPrior(header)
	if docs == nil {
		var err error
		docs, err = a.annotate()
		if err != nil {
			a.metrics.AnnotationFailed()
			a.logger.Error("annotation failed, skipping mention", "header", header, "error", err)
			return a.Base.FinishMention(m)
		}
	}

	if err := a.out.Write(annotate.Record{Header: header, Documents: docs}); err != nil {
		return err
	}
	a.metrics.DocumentWritten()
	return a.Base.FinishMention(m)
}

// fromPrior reads the next prior record and returns its documents if it
// matches header and the snippet count. Reading stops for good at the
// first error.
func (a *Annotator) fromPrior(header string) []*annotate.Document {
	if a.prior == nil {
		return nil
	}
	rec, err := a.prior.Next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			a.logger.Warn("aborting prior annotation reads", "read", a.priorReads, "error", err)
		}
		a.closePrior()
		return nil
	}
	a.priorReads++

	if rec.Header != header || len(rec.Documents) != len(a.snippets) {
		a.logger.Warn("prior annotation does not match",
			"expected", header, "expected_documents", len(a.snippets),
			"got", rec.Header, "got_documents", len(rec.Documents))
		return nil
	}
	return rec.Documents
}

func (a *Annotator) annotate() ([]*annotate.Document, error) {
	docs := make([]*annotate.Document, 0, len(a.snippets))
	for _, s := range a.snippets {
		text, marked := annotate.MarkEmphasis(s.Text)
		doc, err := a.provider.Annotate(a.ctx, annotate.Request{
			Text:      text,
			Sentences: []annotate.Sentence{annotate.NewSentence(text, 0)},
			Marked:    marked,
		})
		if err != nil {
			return nil, fmt.Errorf("snippet %d: %w", s.Rank, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (a *Annotator) closePrior() {
	if a.prior == nil {
		return
	}
	if err := a.prior.Close(); err != nil {
		a.logger.Warn("close prior annotations", "error", err)
	}
	a.prior = nil
}

func (a *Annotator) Finish() error {
	a.closePrior()
	var err error
	if a.out != nil {
		err = a.out.Close()
	}
	return finishChain(&a.Base, err)
}

// AnnotationHeader identifies a Mention in an annotation stream:
// slot, entity, then query type, keyword, filler and results info when a
// keyword is present, or just the filler otherwise
func AnnotationHeader(m *model.Mention) string {
	parts := []string{m.SlotName(), m.EntityName()}
	if keyword, ok := m.Keyword().Get(); ok {
		parts = append(parts, m.QueryTypeName(), keyword, m.SlotValue())
		if info, ok := m.ResultsInfo().Get(); ok {
			parts = append(parts, info)
		}
	} else {
		parts = append(parts, m.SlotValue())
	}
	return strings.Join(parts, "\t")
}

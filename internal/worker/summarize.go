package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/model"
	"github.com/ppiankov/websnip/internal/parser"
)

// SummarizeJob counts the records of one file
type SummarizeJob struct {
	Path   string
	Parser *parser.Parser
	Config *model.Config
}

// Execute parses the file through its own Counter chain
func (j *SummarizeJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &FileSummary{Path: j.Path, Error: err}
	}

	counter := handler.NewCounter()
	if err := counter.Init(j.Config); err != nil {
		return &FileSummary{Path: j.Path, Error: err}
	}
	err := j.Parser.ParseFile(j.Path, counter)
	if ferr := counter.Finish(); err == nil {
		err = ferr
	}
	return &FileSummary{Path: j.Path, Counts: counter.Counts(), Error: err}
}

// FileSummary is the outcome of one SummarizeJob
type FileSummary struct {
	Path   string         `json:"path"`
	Counts handler.Counts `json:"counts"`
	Error  error          `json:"-"`
}

// GetError returns the error from the summary
func (r *FileSummary) GetError() error {
	return r.Error
}

// Summarizer counts many files concurrently. All jobs share one parser,
// and so one Diagnostics context.
type Summarizer struct {
	parser      *parser.Parser
	config      *model.Config
	concurrency int
}

// NewSummarizer creates a summarizer running concurrency files at a time
func NewSummarizer(p *parser.Parser, cfg *model.Config, concurrency int) *Summarizer {
	return &Summarizer{
		parser:      p,
		config:      cfg,
		concurrency: concurrency,
	}
}

// SummarizeFiles counts every file and returns the summaries sorted by path
func (s *Summarizer) SummarizeFiles(ctx context.Context, files []string) ([]*FileSummary, error) {
	if len(files) == 0 {
		return []*FileSummary{}, nil
	}

	pool := NewPool(ctx, s.concurrency)
	pool.Start()

	for _, file := range files {
		if !pool.Submit(&SummarizeJob{Path: file, Parser: s.parser, Config: s.config}) {
			break
		}
	}

	results := pool.Wait()
	summaries := make([]*FileSummary, 0, len(results))
	for _, r := range results {
		if fs, ok := r.(*FileSummary); ok {
			summaries = append(summaries, fs)
		}
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Path < summaries[j].Path
	})

	if err := ctx.Err(); err != nil {
		return summaries, fmt.Errorf("summarize interrupted: %w", err)
	}
	return summaries, nil
}

// Total adds up the counts of every successful summary
func Total(summaries []*FileSummary) handler.Counts {
	total := handler.Counts{ByType: make(map[string]int)}
	for _, s := range summaries {
		if s.Error != nil {
			continue
		}
		total.Relations += s.Counts.Relations
		total.Mentions += s.Counts.Mentions
		total.Snippets += s.Counts.Snippets
		for k, v := range s.Counts.ByType {
			total.ByType[k] += v
		}
	}
	return total
}

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/ppiankov/websnip/internal/parser"
	"github.com/ppiankov/websnip/internal/worker"
)

// Summarize counts relations, Mentions and snippets of every input file
// concurrently and prints one row per file plus totals
func (p *Pipeline) Summarize(ctx context.Context, path string) error {
	files, err := parser.Expand(path, p.config.Input.Pattern)
	if err != nil {
		return err
	}

	s := worker.NewSummarizer(p.newParser(p.config.Format.AutoClean), p.config, p.config.Summarize.Workers)
	summaries, err := s.SummarizeFiles(ctx, files)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(p.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tRELATIONS\tMENTIONS\tSNIPPETS")
	failed := 0
	for _, fs := range summaries {
		if fs.Error != nil {
			failed++
			p.logger.Error("summarize failed", "file", fs.Path, "error", fs.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", fs.Path, fs.Counts.Relations, fs.Counts.Mentions, fs.Counts.Snippets)
	}

	total := worker.Total(summaries)
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%d\n", total.Relations, total.Mentions, total.Snippets)

	types := make([]string, 0, len(total.ByType))
	for t := range total.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(tw, "  %s\t\t%d\t\n", t, total.ByType[t])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(summaries))
	}
	return nil
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ppiankov/websnip/internal/handler"
	"github.com/ppiankov/websnip/internal/pipeline"
)

// operation is one snippet-file command
type operation struct {
	name    string
	alias   string
	short   string
	long    string
	run     func(ctx context.Context, p *pipeline.Pipeline, path string) error
	noInput bool // reads an annotation stream instead of snippet files
}

var operations = []operation{
	{
		name:  "printStats",
		alias: "print-stats",
		short: "Print per-slot word and query type rankings",
		long: `Filters by filter.queryTypes, cleans with punctuation removed and
lower-casing on, masks entity and filler (mask.*) and prints, per slot,
"slot<TAB>rank<TAB>word<TAB>count" lines followed by the query type
distribution. stats.wordStatsFile and stats.queryTypeStatsFile redirect
the two tables to files.`,
		run: func(_ context.Context, p *pipeline.Pipeline, path string) error { return p.PrintStats(path) },
	},
	{
		name:  "cleanSnippets",
		alias: "clean-snippets",
		short: "Print filtered Mentions with cleaned snippet text",
		run:   func(_ context.Context, p *pipeline.Pipeline, path string) error { return p.CleanSnippets(path) },
	},
	{
		name:  "printSnippets",
		alias: "print-snippets",
		short: "Print filtered Mentions in the version 1 format",
		run:   func(_ context.Context, p *pipeline.Pipeline, path string) error { return p.PrintSnippets(path) },
	},
	{
		name:  "printSamples",
		alias: "print-samples",
		short: "Write gzip training samples into samples.dir",
		long: `Writes "+" samples for snippets of samples.queryTypes and, unless
samples.posSamplesOnly, "-" samples drawn from the opposite entity kind
(per: slots from org: slots and the reverse).`,
		run: func(_ context.Context, p *pipeline.Pipeline, path string) error { return p.PrintSamples(path) },
	},
	{
		name:  "saveAnnotations",
		alias: "save-annotations",
		short: "Annotate every snippet into annotation.file",
		long: `Annotates each snippet with the configured provider (annotation.provider)
and appends one record per Mention to annotation.file. Records in
annotation.savedFile are reused when they match in order.`,
		run: func(ctx context.Context, p *pipeline.Pipeline, path string) error { return p.SaveAnnotations(ctx, path) },
	},
	{
		name:    "printAnnotations",
		alias:   "print-annotations",
		short:   "Print the records of an annotation stream",
		run:     func(_ context.Context, p *pipeline.Pipeline, path string) error { return p.PrintAnnotations(path) },
		noInput: true,
	},
	{
		name:  "toCacheTest",
		alias: "to-cache-test",
		short: "Cache annotated sentences of neutral queries (test entities)",
		run: func(ctx context.Context, p *pipeline.Pipeline, path string) error {
			return p.ToCache(ctx, path, handler.CacheTest)
		},
	},
	{
		name:  "toCacheTrain",
		alias: "to-cache-train",
		short: "Cache annotated sentences of positive queries (train entities)",
		run: func(ctx context.Context, p *pipeline.Pipeline, path string) error {
			return p.ToCache(ctx, path, handler.CacheTrain)
		},
	},
}

func (op operation) command() *cobra.Command {
	use := op.name + " [path]"
	if op.noInput {
		use = op.name + " [annotation-file]"
	}
	return &cobra.Command{
		Use:     use,
		Aliases: []string{op.alias},
		Short:   op.short,
		Long:    op.long,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}

			var path string
			if op.noInput {
				if len(args) > 0 {
					path = args[0]
				}
			} else if path, err = s.inputPath(args); err != nil {
				return err
			}

			return s.close(op.run(cmd.Context(), s.pipeline, path))
		},
	}
}

func init() {
	for _, op := range operations {
		rootCmd.AddCommand(op.command())
	}
}

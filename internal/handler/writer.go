package handler

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/websnip/internal/model"
)

// Writer serializes each finished Mention in the version 1 record format
type Writer struct {
	Base
	out          *bufio.Writer
	snippetsOnly bool
	retained     []*model.Snippet
}

// NewWriter creates a writer over out (stdout when nil)
func NewWriter(out io.Writer) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{out: bufio.NewWriter(out)}
}

func (w *Writer) Init(cfg *model.Config) error {
	w.snippetsOnly = cfg.Output.MentionsWithSnippetsOnly
	return w.Base.Init(cfg)
}

func (w *Writer) StartMention(m *model.Mention) error {
	w.retained = w.retained[:0]
	return w.Base.StartMention(m)
}

func (w *Writer) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	w.retained = append(w.retained, s)
	return w.Base.ProcessSnippet(m, s)
}

func (w *Writer) FinishMention(m *model.Mention) error {
	if w.snippetsOnly && len(w.retained) == 0 {
		return w.Base.FinishMention(m)
	}
	if err := WriteMention(w.out, m, w.retained); err != nil {
		return fmt.Errorf("write mention: %w", err)
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("write mention: %w", err)
	}
	return w.Base.FinishMention(m)
}

func (w *Writer) Finish() error {
	return finishChain(&w.Base, w.out.Flush())
}

// WriteMention prints the header line, the info line and one line per
// snippet, followed by a blank line
func WriteMention(w io.Writer, m *model.Mention, snippets []*model.Snippet) error {
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		m.SlotName(), m.EntityName(), m.SlotValue(), m.Keyword().OrElse(""), m.QueryTypeName()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "0\t%d\t%s\n",
		m.TotalResultsCount().OrElse(0), m.QueryString().OrElse("")); err != nil {
		return err
	}
	for _, s := range snippets {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", s.Rank, s.Link.OrElse(""), s.Text); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

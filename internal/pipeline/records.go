package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/websnip/internal/annotate"
	"github.com/ppiankov/websnip/internal/handler"
)

// PrintRecords writes a readable dump of every record in src: the header,
// document and sentence counts, marked spans and labeled tokens
func PrintRecords(w io.Writer, src handler.RecordSource) error {
	out := bufio.NewWriter(w)

	for i := 1; ; i++ {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = out.Flush()
			return err
		}

		fmt.Fprintf(out, "Record #%d\n", i)
		fmt.Fprintf(out, "   for %s\n", rec.Header)
		fmt.Fprintf(out, "   got %d documents\n", len(rec.Documents))
		for j, doc := range rec.Documents {
			fmt.Fprintf(out, "Document #%d-%d has %d sentences", i, j+1, len(doc.Sentences))
			if len(doc.Marked) > 0 {
				fmt.Fprintf(out, " and %d marked mentions", len(doc.Marked))
			}
			fmt.Fprintln(out)
			for _, span := range doc.Marked {
				fmt.Fprintf(out, "  marked [%d,%d)\n", span.Begin, span.End)
			}
			for _, s := range doc.Sentences {
				fmt.Fprintf(out, "  %s\n", formatTokens(s.Tokens))
			}
		}
	}
	return out.Flush()
}

// formatTokens renders word/POS/NER for labeled tokens and the bare word otherwise
func formatTokens(tokens []annotate.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		switch {
		case t.POS != "" || t.NER != "":
			parts[i] = t.Word + "/" + t.POS + "/" + t.NER
		default:
			parts[i] = t.Word
		}
	}
	return strings.Join(parts, " ")
}

// Package clean normalizes snippet text: markup removal, Unicode
// normalization, punctuation stripping and emphasis masking.
package clean

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/websnip/internal/model"
)

var (
	markupPattern      = regexp.MustCompile(`<.*?>`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	boldEllipsis       = regexp.MustCompile(`<b>\.\.\.+</b>`)
	punctuationPattern = regexp.MustCompile(`[^A-Za-z0-9]+`)
	protectedTags      = regexp.MustCompile(`<.*?>.*?</.*?>`)
	protectedEllipsis  = regexp.MustCompile(`<.*?>.*?</.*?>|\.\.\.`)
	translatePattern   = regexp.MustCompile(`(?i)\s*\[\s*Translate\s*this\s*page\s*\]`)
)

// Options selects the cleaning steps
type Options struct {
	DiscardPunctuation bool
	Normalize          bool
	KeepEm             bool
	UnescapeHTML       bool
	KeepBold           bool
	KeepEllipsis       bool
	LowerCase          bool
}

// DefaultOptions mirrors the clean.* configuration defaults
func DefaultOptions() Options {
	return Options{
		Normalize:    true,
		KeepEm:       true,
		UnescapeHTML: true,
		KeepBold:     true,
		KeepEllipsis: true,
	}
}

// FromConfig converts the clean.* configuration section
func FromConfig(c model.CleanConfig) Options {
	return Options{
		DiscardPunctuation: c.DiscardPunctuation,
		Normalize:          c.Normalize,
		KeepEm:             c.KeepEm,
		UnescapeHTML:       c.UnescapeHTML,
		KeepBold:           c.KeepBold,
		KeepEllipsis:       c.KeepEllipsis,
		LowerCase:          c.LowerCase,
	}
}

// Override returns a copy with the named flags replaced.
// Keys are the clean.* configuration names without prefix; unknown keys are ignored.
func (o Options) Override(values map[string]bool) Options {
	for key, v := range values {
		switch key {
		case "discardPunctuation":
			o.DiscardPunctuation = v
		case "normalize":
			o.Normalize = v
		case "keepEm":
			o.KeepEm = v
		case "unescapeHtml":
			o.UnescapeHTML = v
		case "keepBold":
			o.KeepBold = v
		case "keepEllipsis":
			o.KeepEllipsis = v
		case "lowerCase":
			o.LowerCase = v
		}
	}
	return o
}

// Text runs the full cleaning pipeline over text.
// Step order matters: tag retention feeds the punctuation pass, which
// leaves retained tag pairs and (optionally) ellipses untouched.
func Text(text string, opts Options) string {
	if opts.UnescapeHTML {
		text = html.UnescapeString(text)
	}

	if opts.Normalize {
		if opts.DiscardPunctuation {
			text = norm.NFKD.String(text)
		} else {
			text = norm.NFKC.String(text)
		}
	}

	text = boldEllipsis.ReplaceAllString(text, "...")
	text = stripTags(text, opts.KeepEm, opts.KeepBold)

	// character references left behind by double escaping
	text = html.UnescapeString(text)

	if opts.DiscardPunctuation {
		skip := protectedTags
		if opts.KeepEllipsis {
			skip = protectedEllipsis
		}
		text = replaceOutside(text, skip, punctuationPattern, " ")
	}

	text = translatePattern.ReplaceAllString(text, " ")
	text = collapse(text)

	if opts.LowerCase {
		text = strings.ToLower(text)
	}
	return text
}

// Markup replaces every tag with a space, collapses whitespace and
// optionally unescapes HTML entities. It is the one-pass clean applied
// to version 1 snippet text while parsing.
func Markup(text string, unescape bool) string {
	text = markupPattern.ReplaceAllString(text, " ")
	text = collapse(text)
	if unescape {
		text = html.UnescapeString(text)
	}
	return text
}

func stripTags(text string, keepEm, keepBold bool) string {
	return markupPattern.ReplaceAllStringFunc(text, func(tag string) string {
		switch tag {
		case "<em>", "</em>":
			if keepEm {
				return tag
			}
		case "<b>", "</b>":
			if keepBold {
				return tag
			}
		}
		return " "
	})
}

// replaceOutside applies pattern->repl only to the spans of text not matched by skip
func replaceOutside(text string, skip, pattern *regexp.Regexp, repl string) string {
	var b strings.Builder
	last := 0
	for _, loc := range skip.FindAllStringIndex(text, -1) {
		b.WriteString(pattern.ReplaceAllString(text[last:loc[0]], repl))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(pattern.ReplaceAllString(text[last:], repl))
	return b.String()
}

func collapse(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

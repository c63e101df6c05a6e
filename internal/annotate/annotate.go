// Package annotate holds the ports to external NLP annotation: sentence
// splitting, token annotation providers and the annotation stream format.
package annotate

import (
	"context"
	"regexp"
)

// Span is a [Begin, End) byte range in a text
type Span struct {
	Begin int `yaml:"begin" json:"begin"`
	End   int `yaml:"end" json:"end"`
}

// Token is one annotated token
type Token struct {
	Word  string `yaml:"word" json:"word"`
	Begin int    `yaml:"begin" json:"begin"`
	End   int    `yaml:"end" json:"end"`
	POS   string `yaml:"pos,omitempty" json:"pos,omitempty"`
	NER   string `yaml:"ner,omitempty" json:"ner,omitempty"`
	Lemma string `yaml:"lemma,omitempty" json:"lemma,omitempty"`
}

// Sentence is a sentence span with its tokens
type Sentence struct {
	Text   string  `yaml:"text" json:"text"`
	Begin  int     `yaml:"begin" json:"begin"`
	End    int     `yaml:"end" json:"end"`
	Tokens []Token `yaml:"tokens" json:"tokens"`
}

// Document is the annotation result for one text
type Document struct {
	Text      string     `yaml:"text" json:"text"`
	Sentences []Sentence `yaml:"sentences" json:"sentences"`
	Marked    []Span     `yaml:"marked,omitempty" json:"marked,omitempty"`
	Provider  string     `yaml:"provider" json:"provider"`
	Model     string     `yaml:"model,omitempty" json:"model,omitempty"`
}

// Request is the input to a Provider. Sentences may be left empty, in
// which case the provider splits Text itself.
type Request struct {
	Text      string
	Sentences []Sentence
	Marked    []Span
}

// Provider annotates sentences with part of speech, entity and lemma labels
type Provider interface {
	// Name returns the provider name
	Name() string

	// Annotate labels the request's tokens
	Annotate(ctx context.Context, req Request) (*Document, error)
}

// SentenceSplitter breaks text into tokenized sentences
type SentenceSplitter interface {
	Split(text string) []Sentence
}

var emphasisPattern = regexp.MustCompile(`<em>(.*?)</em>`)

// MarkEmphasis replaces <em> tags with spaces of the same width and returns
// the spans the tags enclosed, so offsets into the result still line up
// with the marked words
func MarkEmphasis(text string) (string, []Span) {
	var marked []Span
	for _, loc := range emphasisPattern.FindAllStringIndex(text, -1) {
		marked = append(marked, Span{Begin: loc[0], End: loc[1]})
	}
	return emphasisPattern.ReplaceAllString(text, "    ${1}     "), marked
}

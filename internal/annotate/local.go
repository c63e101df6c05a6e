package annotate

import "context"

// LocalProvider tokenizes and splits without calling any service.
// Tokens carry no labels.
type LocalProvider struct {
	splitter SentenceSplitter
}

// NewLocalProvider creates a provider backed by splitter (RuleSplitter when nil)
func NewLocalProvider(splitter SentenceSplitter) *LocalProvider {
	if splitter == nil {
		splitter = RuleSplitter{}
	}
	return &LocalProvider{splitter: splitter}
}

// Name returns the provider name
func (p *LocalProvider) Name() string {
	return "local"
}

// Annotate returns the request's sentences, splitting Text if none were given
func (p *LocalProvider) Annotate(ctx context.Context, req Request) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Document{
		Text:      req.Text,
		Sentences: prepare(p.splitter, req),
		Marked:    req.Marked,
		Provider:  p.Name(),
	}, nil
}

// prepare returns the request sentences, split and tokenized if needed
func prepare(splitter SentenceSplitter, req Request) []Sentence {
	if len(req.Sentences) == 0 {
		return splitter.Split(req.Text)
	}
	sentences := make([]Sentence, len(req.Sentences))
	for i, s := range req.Sentences {
		if len(s.Tokens) == 0 {
			s = NewSentence(s.Text, s.Begin)
		} else {
			s.Tokens = append([]Token(nil), s.Tokens...)
		}
		sentences[i] = s
	}
	return sentences
}

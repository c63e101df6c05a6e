package handler

import "github.com/ppiankov/websnip/internal/model"

// Counts summarizes what a chain saw
type Counts struct {
	Relations int            `json:"relations"`
	Mentions  int            `json:"mentions"`
	Snippets  int            `json:"snippets"`
	ByType    map[string]int `json:"by_type"` // mentions per query type
}

// Counter tallies events and forwards them
type Counter struct {
	Base
	counts Counts
}

// NewCounter creates a zeroed counter
func NewCounter() *Counter {
	return &Counter{counts: Counts{ByType: make(map[string]int)}}
}

func (c *Counter) StartRelation(name string) error {
	c.counts.Relations++
	return c.Base.StartRelation(name)
}

func (c *Counter) StartMention(m *model.Mention) error {
	c.counts.Mentions++
	c.counts.ByType[m.QueryType().String()]++
	return c.Base.StartMention(m)
}

func (c *Counter) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	c.counts.Snippets++
	return c.Base.ProcessSnippet(m, s)
}

// Counts returns the tallies so far
func (c *Counter) Counts() Counts {
	return c.counts
}

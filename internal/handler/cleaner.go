package handler

import (
	"github.com/ppiankov/websnip/internal/clean"
	"github.com/ppiankov/websnip/internal/model"
)

// Cleaner rewrites snippet text in place before forwarding it
type Cleaner struct {
	Base
	opts clean.Options
}

// NewCleaner creates a cleaner starting from opts; explicitly configured
// clean.* keys replace them at Init
func NewCleaner(opts clean.Options) *Cleaner {
	return &Cleaner{opts: opts}
}

func (c *Cleaner) Init(cfg *model.Config) error {
	c.opts = c.opts.Override(cfg.CleanOverrides)
	return c.Base.Init(cfg)
}

// Options returns the effective options
func (c *Cleaner) Options() clean.Options {
	return c.opts
}

func (c *Cleaner) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	s.Text = clean.Text(s.Text, c.opts)
	return c.Base.ProcessSnippet(m, s)
}

package handler

import (
	"github.com/ppiankov/websnip/internal/model"
)

// Filterer forwards only Mentions whose query type is allowed.
// Rejected Mentions produce no downstream events at all.
type Filterer struct {
	Base
	allowed map[model.QueryType]bool // nil allows everything
	preset  bool
	pass    bool
}

// NewFilterer creates a filterer for the given types. Without types the
// allow-set is read from filter.queryTypes at Init.
func NewFilterer(types ...model.QueryType) *Filterer {
	f := &Filterer{}
	if len(types) > 0 {
		f.setAllowed(types)
		f.preset = true
	}
	return f
}

func (f *Filterer) setAllowed(types []model.QueryType) {
	if len(types) == 0 {
		f.allowed = nil
		return
	}
	f.allowed = make(map[model.QueryType]bool, len(types))
	for _, q := range types {
		f.allowed[q] = true
	}
}

func (f *Filterer) Init(cfg *model.Config) error {
	if !f.preset {
		types, err := model.ParseQueryTypeList(cfg.Filter.QueryTypes)
		if err != nil {
			return err
		}
		f.setAllowed(types)
	}
	return f.Base.Init(cfg)
}

// Allows reports whether m passes the gate
func (f *Filterer) Allows(m *model.Mention) bool {
	return f.allowed == nil || f.allowed[m.QueryType()]
}

func (f *Filterer) StartMention(m *model.Mention) error {
	f.pass = f.Allows(m)
	if !f.pass {
		return nil
	}
	return f.Base.StartMention(m)
}

func (f *Filterer) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	if !f.pass {
		return nil
	}
	return f.Base.ProcessSnippet(m, s)
}

func (f *Filterer) FinishMention(m *model.Mention) error {
	if !f.pass {
		return nil
	}
	f.pass = false
	return f.Base.FinishMention(m)
}

// Package handler defines the snippet event interface and the stages that
// can be chained behind the parser.
package handler

import (
	"errors"

	"github.com/ppiankov/websnip/internal/model"
)

// Handler receives parser events. A returned error is fatal for the run;
// recoverable problems are logged by the stage itself.
type Handler interface {
	Init(cfg *model.Config) error
	StartRelation(name string) error
	FinishRelation(name string) error
	StartMention(m *model.Mention) error
	FinishMention(m *model.Mention) error
	ProcessSnippet(m *model.Mention, s *model.Snippet) error
	Finish() error
}

// Stage is a Handler that can forward to a successor
type Stage interface {
	Handler
	SetNext(next Handler)
}

// Base forwards every event to the next stage, if any. Stages embed it
// and override the events they act on.
type Base struct {
	next Handler
}

// SetNext links the successor
func (b *Base) SetNext(next Handler) { b.next = next }

// Next returns the successor or nil
func (b *Base) Next() Handler { return b.next }

func (b *Base) Init(cfg *model.Config) error {
	if b.next == nil {
		return nil
	}
	return b.next.Init(cfg)
}

func (b *Base) StartRelation(name string) error {
	if b.next == nil {
		return nil
	}
	return b.next.StartRelation(name)
}

func (b *Base) FinishRelation(name string) error {
	if b.next == nil {
		return nil
	}
	return b.next.FinishRelation(name)
}

func (b *Base) StartMention(m *model.Mention) error {
	if b.next == nil {
		return nil
	}
	return b.next.StartMention(m)
}

func (b *Base) FinishMention(m *model.Mention) error {
	if b.next == nil {
		return nil
	}
	return b.next.FinishMention(m)
}

func (b *Base) ProcessSnippet(m *model.Mention, s *model.Snippet) error {
	if b.next == nil {
		return nil
	}
	return b.next.ProcessSnippet(m, s)
}

func (b *Base) Finish() error {
	if b.next == nil {
		return nil
	}
	return b.next.Finish()
}

// Chain links stages in order and returns the head
func Chain(stages ...Stage) Handler {
	if len(stages) == 0 {
		return &Base{}
	}
	for i := 0; i < len(stages)-1; i++ {
		stages[i].SetNext(stages[i+1])
	}
	return stages[0]
}

// finishChain closes a stage's own resources and then forwards Finish,
// so every stage down the chain is finished even if this one failed.
func finishChain(b *Base, own error) error {
	return errors.Join(own, b.Finish())
}

package model

import "errors"

// ErrAlreadySet is returned when a set-once Mention field is assigned twice
var ErrAlreadySet = errors.New("field already set")

// Snippet is one search result attached to a Mention
type Snippet struct {
	Rank int // 0 means unranked
	Link Optional[string]
	Text string
}

// Mention is one (entity, slot, filler) query together with its snippets.
// Header fields are fixed at construction; optional fields may be set once.
type Mention struct {
	entityName string
	slotName   string
	slotValue  string

	queryType     QueryType
	queryTypeName string

	keyword           Optional[string]
	queryString       Optional[string]
	totalResultsCount Optional[int64]
	resultsInfo       Optional[string]

	Snippets []*Snippet
}

// NewMention creates a Mention; rawQueryType is kept verbatim next to its parsed form
func NewMention(slot, entity, filler, rawQueryType string, diag *Diagnostics) *Mention {
	return &Mention{
		entityName:    entity,
		slotName:      slot,
		slotValue:     filler,
		queryType:     ParseQueryType(rawQueryType, diag),
		queryTypeName: rawQueryType,
	}
}

func (m *Mention) EntityName() string            { return m.entityName }
func (m *Mention) SlotName() string              { return m.slotName }
func (m *Mention) SlotValue() string             { return m.slotValue }
func (m *Mention) QueryType() QueryType          { return m.queryType }
func (m *Mention) QueryTypeName() string         { return m.queryTypeName }
func (m *Mention) Keyword() Optional[string]     { return m.keyword }
func (m *Mention) QueryString() Optional[string] { return m.queryString }
func (m *Mention) ResultsInfo() Optional[string] { return m.resultsInfo }

func (m *Mention) TotalResultsCount() Optional[int64] { return m.totalResultsCount }

// SetKeyword assigns the query keyword
func (m *Mention) SetKeyword(keyword string) error {
	if m.keyword.IsSet() {
		return ErrAlreadySet
	}
	m.keyword = Some(keyword)
	return nil
}

// SetResultsInfo assigns the free-form results info of a version 0 header
func (m *Mention) SetResultsInfo(info string) error {
	if m.resultsInfo.IsSet() {
		return ErrAlreadySet
	}
	m.resultsInfo = Some(info)
	return nil
}

// SetQueryInfo assigns the info-line fields together
func (m *Mention) SetQueryInfo(total int64, query string) error {
	if m.totalResultsCount.IsSet() || m.queryString.IsSet() {
		return ErrAlreadySet
	}
	m.totalResultsCount = Some(total)
	m.queryString = Some(query)
	return nil
}

// AddSnippet appends s in file order
func (m *Mention) AddSnippet(s *Snippet) {
	m.Snippets = append(m.Snippets, s)
}

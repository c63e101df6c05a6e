package model

// QueryType classifies how a mention's search query was built
type QueryType int

const (
	QueryEE  QueryType = iota // entity + filler
	QueryPOS                  // positive keyword
	QueryNEU                  // neutral keyword
	QueryNEG                  // negative keyword
	QueryNGA                  // negated keyword
	QueryUNK                  // unrecognized
)

var queryTypeNames = [...]string{"EE", "POS", "NEU", "NEG", "NGA", "UNK"}

// String returns the canonical name of the query type
func (q QueryType) String() string {
	if q < 0 || int(q) >= len(queryTypeNames) {
		return "UNK"
	}
	return queryTypeNames[q]
}

// LookupQueryType returns the query type with the exact given name
func LookupQueryType(name string) (QueryType, bool) {
	for i, n := range queryTypeNames {
		if n == name {
			return QueryType(i), true
		}
	}
	return QueryUNK, false
}

// ParseQueryType maps a raw header string to a QueryType.
// Unrecognized strings map to QueryUNK and are reported once per run through diag.
func ParseQueryType(raw string, diag *Diagnostics) QueryType {
	if q, ok := LookupQueryType(raw); ok {
		return q
	}
	if diag != nil {
		diag.WarnUnknownQueryType(raw)
	}
	return QueryUNK
}

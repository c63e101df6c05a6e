// Package kb resolves entity names to coarse entity types.
package kb

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// EntityType is the coarse type of an entity
type EntityType string

const (
	Person       EntityType = "PER"
	Organization EntityType = "ORG"
)

// ParseEntityType accepts PER/PERSON and ORG/ORGANIZATION, case-insensitively
func ParseEntityType(s string) (EntityType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PER", "PERSON":
		return Person, true
	case "ORG", "ORGANIZATION":
		return Organization, true
	}
	return "", false
}

// Resolver looks up the type of an entity by name
type Resolver interface {
	Resolve(name string) (EntityType, bool, error)
}

// Open returns a resolver for path: .db/.sqlite files are SQLite, anything
// else is a tab separated name/type file. Lookups are memoized for ttl.
func Open(path string, ttl time.Duration) (Resolver, error) {
	if path == "" {
		return nil, fmt.Errorf("kb.path is required")
	}

	var base Resolver
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		base, err = OpenSQLite(path)
	default:
		base, err = LoadTSV(path)
	}
	if err != nil {
		return nil, err
	}
	return NewCachedResolver(base, ttl), nil
}

// Compatible reports whether a slot may be filled for an entity of type t.
// per: slots need a person and org: slots an organization; other slots
// accept both.
func Compatible(slot string, t EntityType) bool {
	switch {
	case strings.HasPrefix(slot, "per:"):
		return t == Person
	case strings.HasPrefix(slot, "org:"):
		return t == Organization
	}
	return true
}

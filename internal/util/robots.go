// Package util holds small helpers shared by the stages.
package util

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// LinkPolicy decides which snippet links may be cached, using rules
// written in robots.txt format. Groups are matched by user agent and the
// rules apply to links on every host.
type LinkPolicy struct {
	data      *robotstxt.RobotsData
	userAgent string

	mu    sync.RWMutex
	cache map[string]bool
}

// LoadLinkPolicy reads a robots.txt formatted policy file
func LoadLinkPolicy(path, userAgent string) (*LinkPolicy, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read link policy: %w", err)
	}
	return ParseLinkPolicy(body, userAgent)
}

// ParseLinkPolicy parses policy rules from body
func ParseLinkPolicy(body []byte, userAgent string) (*LinkPolicy, error) {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse link policy: %w", err)
	}
	return &LinkPolicy{
		data:      data,
		userAgent: NormalizeUserAgent(userAgent),
		cache:     make(map[string]bool),
	}, nil
}

// Allows reports whether link passes the policy. Links that do not parse
// as URLs are tested as bare paths; an empty link is always allowed.
func (p *LinkPolicy) Allows(link string) bool {
	if p == nil || link == "" {
		return true
	}

	p.mu.RLock()
	allowed, ok := p.cache[link]
	p.mu.RUnlock()
	if ok {
		return allowed
	}

	path := link
	if parsed, err := url.Parse(link); err == nil && parsed.Host != "" {
		path = parsed.EscapedPath()
		if parsed.RawQuery != "" {
			path += "?" + parsed.RawQuery
		}
	}
	if path == "" {
		path = "/"
	}
	allowed = p.data.TestAgent(path, p.userAgent)

	p.mu.Lock()
	p.cache[link] = allowed
	p.mu.Unlock()
	return allowed
}

// NormalizeUserAgent normalizes the user agent string for robots.txt matching
func NormalizeUserAgent(ua string) string {
	// Extract the product name (first token)
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		// Remove version if present
		product := strings.Split(parts[0], "/")[0]
		return product
	}
	return ua
}

package model

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config holds every setting a run can read
type Config struct {
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Format     FormatConfig     `yaml:"format" mapstructure:"format"`
	Mask       MaskConfig       `yaml:"mask" mapstructure:"mask"`
	Clean      CleanConfig      `yaml:"clean" mapstructure:"clean"`
	Filter     FilterConfig     `yaml:"filter" mapstructure:"filter"`
	Samples    SamplesConfig    `yaml:"samples" mapstructure:"samples"`
	Stats      StatsConfig      `yaml:"stats" mapstructure:"stats"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	KB         KBConfig         `yaml:"kb" mapstructure:"kb"`
	Annotation AnnotationConfig `yaml:"annotation" mapstructure:"annotation"`
	Summarize  SummarizeConfig  `yaml:"summarize" mapstructure:"summarize"`

	// CleanOverrides lists clean.* keys set explicitly by the user, by key
	// name without the prefix. They win over operation presets.
	CleanOverrides map[string]bool `yaml:"-" mapstructure:"-"`
}

// InputConfig selects the files to read
type InputConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"` // doublestar glob
}

// FormatConfig selects the record format
type FormatConfig struct {
	Version   int  `yaml:"version" mapstructure:"version"`
	AutoClean bool `yaml:"autoClean" mapstructure:"autoClean"`
}

// MaskConfig controls emphasis masking
type MaskConfig struct {
	MarkedWords      bool `yaml:"markedWords" mapstructure:"markedWords"`
	MarkEntityFiller bool `yaml:"markEntityFiller" mapstructure:"markEntityFiller"`
}

// CleanConfig controls the snippet cleaner
type CleanConfig struct {
	DiscardPunctuation bool `yaml:"discardPunctuation" mapstructure:"discardPunctuation"`
	Normalize          bool `yaml:"normalize" mapstructure:"normalize"`
	KeepEm             bool `yaml:"keepEm" mapstructure:"keepEm"`
	UnescapeHTML       bool `yaml:"unescapeHtml" mapstructure:"unescapeHtml"`
	KeepBold           bool `yaml:"keepBold" mapstructure:"keepBold"`
	KeepEllipsis       bool `yaml:"keepEllipsis" mapstructure:"keepEllipsis"`
	LowerCase          bool `yaml:"lowerCase" mapstructure:"lowerCase"`
}

// CleanKeys are the clean.* key names, without prefix
var CleanKeys = []string{
	"discardPunctuation", "normalize", "keepEm", "unescapeHtml",
	"keepBold", "keepEllipsis", "lowerCase",
}

// FilterConfig restricts the query types passed downstream
type FilterConfig struct {
	QueryTypes string `yaml:"queryTypes" mapstructure:"queryTypes"` // comma separated, empty = all
}

// SamplesConfig controls training-sample output
type SamplesConfig struct {
	Dir            string `yaml:"dir" mapstructure:"dir"`
	Name           string `yaml:"name" mapstructure:"name"`
	PosSamplesOnly bool   `yaml:"posSamplesOnly" mapstructure:"posSamplesOnly"`
	OneFilePerSlot bool   `yaml:"oneFilePerSlot" mapstructure:"oneFilePerSlot"`
	QueryTypes     string `yaml:"queryTypes" mapstructure:"queryTypes"`
}

// StatsConfig controls statistics output; empty file names mean stdout
type StatsConfig struct {
	WordStatsFile      string `yaml:"wordStatsFile" mapstructure:"wordStatsFile"`
	QueryTypeStatsFile string `yaml:"queryTypeStatsFile" mapstructure:"queryTypeStatsFile"`
	QueryType          string `yaml:"queryType" mapstructure:"queryType"` // restrict word stats
}

// OutputConfig controls the record writer
type OutputConfig struct {
	MentionsWithSnippetsOnly bool `yaml:"mentionsWithSnippetsOnly" mapstructure:"mentionsWithSnippetsOnly"`
}

// CacheConfig controls the annotation cache builder
type CacheConfig struct {
	Dir               string   `yaml:"dir" mapstructure:"dir"`
	MinSentenceLength int      `yaml:"minSentenceLength" mapstructure:"minSentenceLength"`
	DisallowedSources []string `yaml:"disallowedSources" mapstructure:"disallowedSources"`
	LinkPolicy        string   `yaml:"linkPolicy" mapstructure:"linkPolicy"` // robots.txt formatted file
	UserAgent         string   `yaml:"userAgent" mapstructure:"userAgent"`
}

// KBConfig locates the entity-type knowledge base
type KBConfig struct {
	Path     string        `yaml:"path" mapstructure:"path"` // .tsv or sqlite file
	CacheTTL time.Duration `yaml:"cacheTTL" mapstructure:"cacheTTL"`
}

// AnnotationConfig configures the annotation provider and streams
type AnnotationConfig struct {
	File              string  `yaml:"file" mapstructure:"file"`
	SavedFile         string  `yaml:"savedFile" mapstructure:"savedFile"`
	Provider          string  `yaml:"provider" mapstructure:"provider"` // local, openai, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	BaseURL           string  `yaml:"baseURL" mapstructure:"baseURL"`
	APIKey            string  `yaml:"apiKey,omitempty" mapstructure:"apiKey"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"maxTokens" mapstructure:"maxTokens"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond" mapstructure:"requestsPerSecond"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// SummarizeConfig controls the concurrent summarizer
type SummarizeConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Format: FormatConfig{Version: 1, AutoClean: true},
		Mask:   MaskConfig{MarkedWords: true, MarkEntityFiller: true},
		Clean: CleanConfig{
			Normalize:    true,
			KeepEm:       true,
			UnescapeHTML: true,
			KeepBold:     true,
			KeepEllipsis: true,
		},
		Samples: SamplesConfig{
			Name:           "snippets",
			PosSamplesOnly: true,
			OneFilePerSlot: true,
			QueryTypes:     "EE",
		},
		Cache: CacheConfig{
			MinSentenceLength: 15,
			DisallowedSources: []string{"infobox"},
			UserAgent:         "websnip",
		},
		KB: KBConfig{CacheTTL: 10 * time.Minute},
		Annotation: AnnotationConfig{
			Provider:          "local",
			Timeout:           60,
			MaxTokens:         2000,
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Summarize: SummarizeConfig{Workers: runtime.NumCPU()},
	}
}

// Validate checks values that cannot be fixed up silently
func (c Config) Validate() error {
	if c.Format.Version != 0 && c.Format.Version != 1 {
		return fmt.Errorf("format.version must be 0 or 1, got %d", c.Format.Version)
	}
	if c.Cache.MinSentenceLength < 0 {
		return fmt.Errorf("cache.minSentenceLength must not be negative")
	}
	if _, err := ParseQueryTypeList(c.Filter.QueryTypes); err != nil {
		return fmt.Errorf("filter.queryTypes: %w", err)
	}
	if _, err := ParseQueryTypeList(c.Samples.QueryTypes); err != nil {
		return fmt.Errorf("samples.queryTypes: %w", err)
	}
	return nil
}

// ParseQueryTypeList parses a comma separated list of query type names.
// An empty list yields nil, meaning every type.
func ParseQueryTypeList(s string) ([]QueryType, error) {
	var types []QueryType
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		q, ok := LookupQueryType(name)
		if !ok {
			return nil, fmt.Errorf("unknown query type %q", name)
		}
		types = append(types, q)
	}
	return types, nil
}

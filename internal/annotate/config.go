package annotate

import "github.com/ppiankov/websnip/internal/model"

// Config holds provider settings
type Config struct {
	// Provider name: "local", "openai", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout per annotation call, in seconds
	Timeout int

	// MaxTokens caps the reply length
	MaxTokens int
}

// ConfigFromModel converts the annotation section of the run config
func ConfigFromModel(c model.AnnotationConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

package annotate

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider labels tokens through an OpenAI-compatible chat API
type OpenAIProvider struct {
	client   *openai.Client
	config   Config
	splitter SentenceSplitter
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config, splitter SentenceSplitter) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if splitter == nil {
		splitter = RuleSplitter{}
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(clientConfig),
		config:   config,
		splitter: splitter,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Annotate asks the model for per-token labels
func (p *OpenAIProvider) Annotate(ctx context.Context, req Request) (*Document, error) {
	sentences := prepare(p.splitter, req)
	doc := &Document{Text: req.Text, Sentences: sentences, Marked: req.Marked, Provider: p.Name()}
	if len(sentences) == 0 {
		return doc, nil
	}

	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	doc.Model = model

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(sentences)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	if err := applyLabels(doc.Sentences, resp.Choices[0].Message.Content); err != nil {
		return nil, err
	}
	return doc, nil
}

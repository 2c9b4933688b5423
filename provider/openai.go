package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aman1195/risk-scan-pro/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI speaks the chat completions API. Grok reuses it because the xAI
// API is wire compatible.
type OpenAI struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAI creates the OpenAI backend
func NewOpenAI(cfg config.BackendConfig) *OpenAI {
	return newChatBackend(OpenAIName, cfg, 0.3)
}

// NewGrok creates the Grok backend against the xAI endpoint in cfg.BaseURL
func NewGrok(cfg config.BackendConfig) *OpenAI {
	return newChatBackend(GrokName, cfg, 0.3)
}

func newChatBackend(name string, cfg config.BackendConfig, temperature float32) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAI{
		name:        name,
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: temperature,
	}
}

func (o *OpenAI) Name() string {
	return o.name
}

// Complete sends one system+user exchange and returns the first choice
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUpstream, o.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w (%s)", ErrEmptyCompletion, o.name)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w (%s)", ErrEmptyCompletion, o.name)
	}
	return content, nil
}

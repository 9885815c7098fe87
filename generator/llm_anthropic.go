package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicLLM implements LLMClient with the Anthropic Messages API.
type AnthropicLLM struct {
	Model       string
	Temperature *float64
	client      anthropic.Client
}

func NewAnthropicLLMFromConfig(cfg *LLMSettings) (*AnthropicLLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicLLM{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		client:      anthropic.NewClient(opts...),
	}, nil
}

func (a *AnthropicLLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	msgs := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
	}

	system := prompt.System
	if prompt.JSON {
		system += " Respond with the JSON object only."
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: anthropicMaxTokens,
		Messages:  msgs,
		System:    []anthropic.TextBlockParam{{Text: system}},
	}
	if t := temperature(prompt, a.Temperature); t != nil {
		params.Temperature = anthropic.Float(*t)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: no text content")
	}
	return sb.String(), nil
}

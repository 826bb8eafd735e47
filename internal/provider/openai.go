package provider

import (
	"context"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
)

const openAISystemPrompt = "You are an expert video script writer specializing in engaging, viral content."

// OpenAI generates scripts through the chat completions API.
type OpenAI struct {
	client  *openaigo.Client
	model   string
	timeout time.Duration
}

// NewOpenAI builds the adapter. An empty baseURL keeps the public endpoint.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4"
	}
	return &OpenAI{
		client:  openaigo.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Name implements Generator.
func (o *OpenAI) Name() string { return "openai" }

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (out string, err error) {
	start := time.Now()
	defer func() { observe(o.Name(), start, err) }()

	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: o.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", wrap(o.Name(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", wrap(o.Name(), ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

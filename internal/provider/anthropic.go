package provider

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic generates scripts through the Messages API.
type Anthropic struct {
	client  anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

// NewAnthropic builds the adapter. SDK retries are disabled; falling through
// to the next backend is the retry policy.
func NewAnthropic(apiKey, model, baseURL string, timeout time.Duration) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "claude-3-sonnet-20240229"
	}
	return &Anthropic{
		client:  anthropic.NewClient(opts...),
		model:   anthropic.Model(model),
		timeout: timeout,
	}
}

// Name implements Generator.
func (a *Anthropic) Name() string { return "anthropic" }

// Generate implements Generator.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (out string, err error) {
	start := time.Now()
	defer func() { observe(a.Name(), start, err) }()

	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", wrap(a.Name(), err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", wrap(a.Name(), ErrEmptyResponse)
	}
	return resp.Content[0].Text, nil
}

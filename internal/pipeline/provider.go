package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadforge-cli/pkg/anthropic"
	"github.com/sells-group/leadforge-cli/pkg/gemini"
	"github.com/sells-group/leadforge-cli/pkg/perplexity"
)

// Provider is the generative-text collaborator: one prompt in, opaque text out.
type Provider interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicProvider adapts an Anthropic client.
type AnthropicProvider struct {
	Client      anthropic.Client
	Model       string
	MaxTokens   int64
	Temperature *float64
}

// Complete sends a single user turn with a cached system block.
func (p *AnthropicProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	resp, err := p.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       p.Model,
		MaxTokens:   maxTokens,
		System:      anthropic.CachedSystem(system),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogUsage(p.Model, "generate")
	if resp.StopReason == "max_tokens" {
		return "", eris.Errorf("pipeline: response truncated at %d tokens", maxTokens)
	}
	return resp.Text(), nil
}

// GeminiProvider adapts a Gemini client, asking for a JSON response.
type GeminiProvider struct {
	Client      gemini.Client
	Model       string
	Temperature *float32
}

// Complete sends a single-turn request.
func (p *GeminiProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	return p.Client.GenerateText(ctx, gemini.TextRequest{
		Model:       p.Model,
		System:      system,
		Prompt:      prompt,
		Temperature: p.Temperature,
		JSON:        true,
	})
}

// PerplexityProvider adapts a Perplexity client. Its sonar models search the
// web while answering, which suits lead research.
type PerplexityProvider struct {
	Client      perplexity.Client
	Model       string
	Temperature *float64
}

// Complete sends a system and a user message.
func (p *PerplexityProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := p.Client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model: p.Model,
		Messages: []perplexity.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

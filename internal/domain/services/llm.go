package services

import "context"

// Message is one chat turn sent to a text generator.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// GenerateRequest is a single non-streaming completion request.
type GenerateRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64
}

// GenerateResponse is the text returned by the provider.
type GenerateResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}

// TextGenerator produces text from a conversation.
type TextGenerator interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
}

// GeneratorResolver picks the generator for a model string ("openai/gpt-4o",
// "openrouter/anthropic/claude-haiku-4-5", "lorem-fast"). The returned model is
// the provider-local model id.
type GeneratorResolver interface {
	Resolve(ctx context.Context, ownerID, model string) (TextGenerator, string, error)
}

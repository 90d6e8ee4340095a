package adapters

import (
	"context"
	"strings"

	llmprovider "github.com/haowjy/meridian-llm-go"

	"contentpilot/internal/domain/services"
)

// LibraryAdapter wraps a meridian-llm-go provider and implements services.TextGenerator.
// Requests carry plain text; the library works in content blocks.
type LibraryAdapter struct {
	provider llmprovider.Provider
}

var _ services.TextGenerator = (*LibraryAdapter)(nil)

// NewLibraryAdapter creates an adapter from an existing provider.
func NewLibraryAdapter(provider llmprovider.Provider) *LibraryAdapter {
	return &LibraryAdapter{provider: provider}
}

// Name returns the provider name.
func (a *LibraryAdapter) Name() string {
	return a.provider.Name().String()
}

// SupportsModel returns true if the wrapped provider supports the given model.
func (a *LibraryAdapter) SupportsModel(model string) bool {
	return a.provider.SupportsModel(model)
}

// Generate sends the conversation and returns the concatenated text blocks.
// Sampling parameters are left to provider defaults.
func (a *LibraryAdapter) Generate(ctx context.Context, req *services.GenerateRequest) (*services.GenerateResponse, error) {
	libResp, err := a.provider.GenerateResponse(ctx, ToLibraryRequest(req))
	if err != nil {
		return nil, err
	}

	return &services.GenerateResponse{
		Text:         TextFromBlocks(libResp.Blocks),
		Model:        libResp.Model,
		InputTokens:  libResp.InputTokens,
		OutputTokens: libResp.OutputTokens,
		StopReason:   libResp.StopReason,
	}, nil
}

// ToLibraryRequest converts a text conversation into library messages, one text block each.
func ToLibraryRequest(req *services.GenerateRequest) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, len(req.Messages))
	for i, msg := range req.Messages {
		text := msg.Content
		messages[i] = llmprovider.Message{
			Role: msg.Role,
			Blocks: []*llmprovider.Block{{
				BlockType:   "text",
				Sequence:    0,
				TextContent: &text,
			}},
		}
	}

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    req.Model,
	}
}

// TextFromBlocks joins the text of all text blocks in order. Thinking and tool blocks are dropped.
func TextFromBlocks(blocks []*llmprovider.Block) string {
	var b strings.Builder
	for _, block := range blocks {
		if block == nil || block.BlockType != "text" || block.TextContent == nil {
			continue
		}
		b.WriteString(*block.TextContent)
	}
	return b.String()
}

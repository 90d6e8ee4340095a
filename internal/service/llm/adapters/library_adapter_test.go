package adapters

import (
	"testing"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/internal/domain/services"
)

func TestToLibraryRequest(t *testing.T) {
	req := &services.GenerateRequest{
		Model: "anthropic/claude-haiku-4-5",
		Messages: []services.Message{
			{Role: "user", Content: "analyse"},
			{Role: "assistant", Content: "analysis"},
			{Role: "user", Content: "write"},
		},
	}

	libReq := ToLibraryRequest(req)

	assert.Equal(t, req.Model, libReq.Model)
	require.Len(t, libReq.Messages, 3)
	for i, msg := range libReq.Messages {
		assert.Equal(t, req.Messages[i].Role, msg.Role)
		require.Len(t, msg.Blocks, 1)
		assert.Equal(t, "text", msg.Blocks[0].BlockType)
		require.NotNil(t, msg.Blocks[0].TextContent)
		assert.Equal(t, req.Messages[i].Content, *msg.Blocks[0].TextContent)
	}
}

func TestTextFromBlocks(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		blocks []*llmprovider.Block
		want   string
	}{
		{name: "empty", blocks: nil, want: ""},
		{
			name: "joins text blocks",
			blocks: []*llmprovider.Block{
				{BlockType: "text", Sequence: 0, TextContent: str("Hello ")},
				{BlockType: "text", Sequence: 1, TextContent: str("world")},
			},
			want: "Hello world",
		},
		{
			name: "skips non-text and nil",
			blocks: []*llmprovider.Block{
				{BlockType: "thinking", Sequence: 0, TextContent: str("hmm")},
				nil,
				{BlockType: "text", Sequence: 1},
				{BlockType: "text", Sequence: 2, TextContent: str("done")},
			},
			want: "done",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TextFromBlocks(tt.blocks))
		})
	}
}

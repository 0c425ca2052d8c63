package anthropic

import (
	"testing"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/pkg/jsonx"
	"github.com/casualjim/chatloop/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesToParams(t *testing.T) {
	t.Run("lifts system messages out of the turn list", func(t *testing.T) {
		system, params, err := messagesToParams([]messages.Message{
			messages.System("be brief"),
			messages.User("hi"),
			messages.System("always answer in English"),
		})
		require.NoError(t, err)
		assert.Equal(t, "be brief\n\nalways answer in English", system)
		require.Len(t, params, 1)
		assert.Equal(t, "user", params[0].Role)
		assert.Equal(t, "hi", params[0].Content)
	})

	t.Run("tool results become user tool_result blocks", func(t *testing.T) {
		_, params, err := messagesToParams([]messages.Message{
			messages.ToolResult("call_a", "24C, sunny"),
		})
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, "user", params[0].Role)

		blocks, ok := params[0].Content.([]messages.ContentBlock)
		require.True(t, ok)
		require.Len(t, blocks, 1)
		assert.Equal(t, messages.BlockToolResult, blocks[0].Type)
		assert.Equal(t, "call_a", blocks[0].ToolUseID)
		assert.Equal(t, "24C, sunny", blocks[0].Content)
	})

	t.Run("assistant tool calls become tool_use blocks with parsed input", func(t *testing.T) {
		_, params, err := messagesToParams([]messages.Message{
			{
				Role:    messages.RoleAssistant,
				Content: "Checking.",
				ToolCalls: []messages.ToolCallParam{{
					ID:   "call_a",
					Type: "function",
					Function: messages.FunctionCall{
						Name:      "get_weather",
						Arguments: `{"city":"SF"}`,
					},
				}},
			},
		})
		require.NoError(t, err)
		require.Len(t, params, 1)

		blocks, ok := params[0].Content.([]messages.ContentBlock)
		require.True(t, ok)
		require.Len(t, blocks, 2)
		assert.Equal(t, messages.BlockText, blocks[0].Type)
		assert.Equal(t, "Checking.", blocks[0].Text)
		assert.Equal(t, messages.BlockToolUse, blocks[1].Type)
		assert.Equal(t, map[string]any{"city": "SF"}, blocks[1].Input)
	})

	t.Run("malformed tool call arguments fail the conversion", func(t *testing.T) {
		_, _, err := messagesToParams([]messages.Message{
			{
				Role: messages.RoleAssistant,
				ToolCalls: []messages.ToolCallParam{{
					ID:       "call_a",
					Type:     "function",
					Function: messages.FunctionCall{Name: "x", Arguments: "not json"},
				}},
			},
		})
		require.ErrorIs(t, err, jsonx.ErrMalformedArguments)
	})

	t.Run("block-shaped messages pass through untouched", func(t *testing.T) {
		blocks := []messages.ContentBlock{
			messages.ThinkingBlock("hmm"),
			messages.TextBlock("done"),
		}
		_, params, err := messagesToParams([]messages.Message{
			messages.AssistantBlocks(blocks...),
		})
		require.NoError(t, err)
		require.Len(t, params, 1)
		assert.Equal(t, blocks, params[0].Content)
	})
}

func TestToolsToParams(t *testing.T) {
	defs := []tool.Definition{
		tool.Must("get_weather",
			tool.Description("current weather"),
			tool.Parameters(tool.ObjectSchema(
				tool.Property{Name: "city", Type: "string", Required: true},
			)),
		),
		tool.Must("noop"),
	}

	params, err := toolsToParams(defs)
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "get_weather", params[0].Name)
	assert.Equal(t, "current weather", params[0].Description)
	assert.Equal(t, "object", params[0].InputSchema["type"])
	props, ok := params[0].InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")

	assert.Equal(t, map[string]any{"type": "object"}, params[1].InputSchema)
}

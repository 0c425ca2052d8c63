package anthropic

import (
	"fmt"
	"strings"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/pkg/jsonx"
	"github.com/casualjim/chatloop/tool"
)

// messagesToParams converts the conversation history to Messages API turns.
// System messages are lifted out of the turn list into the request-level
// system text. Block-shaped messages pass through untouched so block-replay
// histories round-trip exactly.
func messagesToParams(history []messages.Message) (string, []messageParam, error) {
	var systemParts []string
	out := make([]messageParam, 0, len(history))

	for i, msg := range history {
		switch {
		case msg.Role == messages.RoleSystem:
			if msg.Content != "" {
				systemParts = append(systemParts, msg.Content)
			}
		case msg.Blocks != nil:
			out = append(out, messageParam{Role: msg.Role, Content: msg.Blocks})
		case msg.Role == messages.RoleTool:
			out = append(out, messageParam{
				Role: messages.RoleUser,
				Content: []messages.ContentBlock{
					messages.ToolResultBlock(msg.ToolCallID, msg.Content),
				},
			})
		case msg.Role == messages.RoleAssistant && len(msg.ToolCalls) > 0:
			blocks := make([]messages.ContentBlock, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, messages.TextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				input, err := jsonx.ParseToolArguments(tc.Function.Arguments)
				if err != nil {
					return "", nil, fmt.Errorf("message %d: tool call %s: %w", i, tc.ID, err)
				}
				blocks = append(blocks, messages.ToolUseBlock(tc.ID, tc.Function.Name, input))
			}
			out = append(out, messageParam{Role: messages.RoleAssistant, Content: blocks})
		default:
			out = append(out, messageParam{Role: msg.Role, Content: msg.Content})
		}
	}

	return strings.Join(systemParts, "\n\n"), out, nil
}

func toolsToParams(defs []tool.Definition) ([]toolParam, error) {
	tools := make([]toolParam, len(defs))
	for i, def := range defs {
		tp := toolParam{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: map[string]any{"type": "object"},
		}
		if def.Parameters != nil {
			jv, err := jsonx.ToDynamicJSON(def.Parameters)
			if err != nil {
				return nil, fmt.Errorf("failed to convert schema for tool %s: %w", def.Name, err)
			}
			tp.InputSchema = jv
		}
		tools[i] = tp
	}
	return tools, nil
}

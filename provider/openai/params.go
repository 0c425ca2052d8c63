package openai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/pkg/jsonx"
	"github.com/casualjim/chatloop/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// messagesToParams converts the conversation history into the typed request
// union. The returned options patch in the fields the typed params cannot
// express, keyed by the message's position in the array.
func messagesToParams(history []messages.Message) ([]openai.ChatCompletionMessageParamUnion, []option.RequestOption, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	var patches []option.RequestOption

	for i, msg := range history {
		switch msg.Role {
		case messages.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case messages.RoleUser:
			if msg.Blocks != nil {
				return nil, nil, fmt.Errorf("message %d: block-shaped user content is not valid for this API", i)
			}
			result = append(result, openai.UserMessage(msg.Content))
		case messages.RoleTool:
			result = append(result, openai.ToolMessage(msg.ToolCallID, msg.Content))
		case messages.RoleAssistant:
			if msg.Blocks != nil {
				return nil, nil, fmt.Errorf("message %d: block-shaped assistant content is not valid for this API", i)
			}
			if len(msg.ToolCalls) > 0 {
				tcd := make([]openai.ChatCompletionMessageToolCallParam, len(msg.ToolCalls))
				for j, tc := range msg.ToolCalls {
					tcd[j] = openai.ChatCompletionMessageToolCallParam{
						ID:   openai.String(tc.ID),
						Type: openai.F(openai.ChatCompletionMessageToolCallTypeFunction),
						Function: openai.F(openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      openai.String(tc.Function.Name),
							Arguments: openai.String(tc.Function.Arguments),
						}),
					}
				}
				result = append(result, openai.ChatCompletionMessageParam{
					Role:      openai.F(openai.ChatCompletionMessageParamRoleAssistant),
					Content:   openai.F[any](msg.Content),
					ToolCalls: openai.F[any](tcd),
				})
			} else {
				result = append(result, openai.AssistantMessage(msg.Content))
			}
			if msg.Reasoning != nil {
				patches = append(patches, option.WithJSONSet(
					fmt.Sprintf("messages.%d.reasoning_content", i), *msg.Reasoning))
			}
		default:
			return nil, nil, fmt.Errorf("message %d: unknown role %q", i, msg.Role)
		}
	}

	return result, patches, nil
}

func toolsToParams(defs []tool.Definition) ([]openai.ChatCompletionToolParam, error) {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		fd := openai.FunctionDefinitionParam{
			Name: openai.String(def.Name),
		}
		if strings.TrimSpace(def.Description) != "" {
			fd.Description = openai.String(def.Description)
		}
		if def.Parameters != nil {
			jv, err := jsonx.ToDynamicJSON(def.Parameters)
			if err != nil {
				return nil, fmt.Errorf("failed to convert schema for tool %s: %w", def.Name, err)
			}
			fd.Parameters = openai.F(shared.FunctionParameters(jv))
		}

		tools[i] = openai.ChatCompletionToolParam{
			Type:     openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(fd),
		}
	}
	return tools, nil
}

// extraOptions turns free-form request overrides into body patches, in
// sorted key order so request bodies are deterministic.
func extraOptions(extra map[string]any) []option.RequestOption {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]option.RequestOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, option.WithJSONSet(k, extra[k]))
	}
	return opts
}

package messages

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Roles accepted by the conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// FunctionCall carries a tool invocation's name and its raw argument text.
// Arguments stays a string because providers stream it as partial JSON and
// expect it echoed back verbatim.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallParam is one entry of an assistant message's tool_calls array.
type ToolCallParam struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// Message is one role-tagged entry of a conversation. Content and Blocks are
// mutually exclusive: Blocks non-nil means the message is block-shaped
// (Minimax-style assistant replay or aggregated tool results).
//
// Reasoning is a pointer because presence matters: DeepSeek-style providers
// reject assistant tool-call turns without a reasoning_content field, even an
// empty one, while every other shape must omit it.
type Message struct {
	Role       string
	Content    string
	Blocks     []ContentBlock
	Reasoning  *string
	ToolCalls  []ToolCallParam
	ToolCallID string
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a plain user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant builds a plain assistant answer.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// AssistantBlocks builds a block-shaped assistant message preserving the
// given block order.
func AssistantBlocks(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Blocks: blocks}
}

// ToolResult builds a role=tool result message keyed by the originating call.
func ToolResult(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}

// UserToolResults builds the aggregated tool-result message used by
// block-replay providers: a single user turn carrying tool_result blocks in
// call order.
func UserToolResults(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Blocks: blocks}
}

// MarshalJSON produces the provider-facing wire shape: string or block-array
// content, tool_calls and tool_call_id only when set, and reasoning_content
// whenever the pointer is non-nil, empty string included.
func (m Message) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes([]byte(`{}`), "role", m.Role)
	if err != nil {
		return nil, err
	}

	if m.Blocks != nil {
		bj, err := json.Marshal(m.Blocks)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal content blocks: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "content", bj)
		if err != nil {
			return nil, err
		}
	} else {
		result, err = sjson.SetBytes(result, "content", m.Content)
		if err != nil {
			return nil, err
		}
	}

	if m.Reasoning != nil {
		result, err = sjson.SetBytes(result, "reasoning_content", *m.Reasoning)
		if err != nil {
			return nil, err
		}
	}

	if len(m.ToolCalls) > 0 {
		tj, err := json.Marshal(m.ToolCalls)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool_calls: %w", err)
		}
		result, err = sjson.SetRawBytes(result, "tool_calls", tj)
		if err != nil {
			return nil, err
		}
	}

	if m.ToolCallID != "" {
		result, err = sjson.SetBytes(result, "tool_call_id", m.ToolCallID)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON restores a message from either content shape.
func (m *Message) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	role := gjson.GetBytes(data, "role")
	if !role.Exists() {
		return fmt.Errorf("missing required field 'role'")
	}
	m.Role = role.String()

	if content := gjson.GetBytes(data, "content"); content.Exists() {
		if content.IsArray() {
			if err := json.Unmarshal([]byte(content.Raw), &m.Blocks); err != nil {
				return fmt.Errorf("invalid content blocks: %w", err)
			}
		} else {
			m.Content = content.String()
		}
	}

	if reasoning := gjson.GetBytes(data, "reasoning_content"); reasoning.Exists() {
		rc := reasoning.String()
		m.Reasoning = &rc
	}

	if toolCalls := gjson.GetBytes(data, "tool_calls"); toolCalls.Exists() {
		if err := json.Unmarshal([]byte(toolCalls.Raw), &m.ToolCalls); err != nil {
			return fmt.Errorf("invalid tool_calls: %w", err)
		}
	}

	m.ToolCallID = gjson.GetBytes(data, "tool_call_id").String()

	return nil
}

package messages

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Content block types used by block-shaped messages.
const (
	BlockThinking   = "thinking"
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// ContentBlock is the union of the block kinds a block-shaped message can
// carry. Type selects which of the remaining fields are meaningful.
type ContentBlock struct {
	Type string

	// BlockThinking
	Thinking string

	// BlockText
	Text string

	// BlockToolUse
	ID    string
	Name  string
	Input map[string]any

	// BlockToolResult
	ToolUseID string
	Content   string
}

// ThinkingBlock builds a thinking content block.
func ThinkingBlock(thinking string) ContentBlock {
	return ContentBlock{Type: BlockThinking, Thinking: thinking}
}

// TextBlock builds a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolUseBlock builds a tool_use content block. A nil input serializes as an
// empty object, which is what the providers require.
func ToolUseBlock(id, name string, input map[string]any) ContentBlock {
	if input == nil {
		input = map[string]any{}
	}
	return ContentBlock{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

// ToolResultBlock builds a tool_result content block.
func ToolResultBlock(toolUseID, content string) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content}
}

// MarshalJSON emits only the fields that belong to the block's type.
func (c ContentBlock) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes([]byte(`{}`), "type", c.Type)
	if err != nil {
		return nil, err
	}

	switch c.Type {
	case BlockThinking:
		return sjson.SetBytes(result, "thinking", c.Thinking)
	case BlockText:
		return sjson.SetBytes(result, "text", c.Text)
	case BlockToolUse:
		result, err = sjson.SetBytes(result, "id", c.ID)
		if err != nil {
			return nil, err
		}
		result, err = sjson.SetBytes(result, "name", c.Name)
		if err != nil {
			return nil, err
		}
		input := c.Input
		if input == nil {
			input = map[string]any{}
		}
		ij, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tool_use input: %w", err)
		}
		return sjson.SetRawBytes(result, "input", ij)
	case BlockToolResult:
		result, err = sjson.SetBytes(result, "tool_use_id", c.ToolUseID)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(result, "content", c.Content)
	default:
		return nil, fmt.Errorf("unknown content block type %q", c.Type)
	}
}

// UnmarshalJSON restores a block from its wire shape.
func (c *ContentBlock) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	blockType := gjson.GetBytes(data, "type")
	if !blockType.Exists() {
		return fmt.Errorf("missing required field 'type'")
	}
	c.Type = blockType.String()

	switch c.Type {
	case BlockThinking:
		c.Thinking = gjson.GetBytes(data, "thinking").String()
	case BlockText:
		c.Text = gjson.GetBytes(data, "text").String()
	case BlockToolUse:
		c.ID = gjson.GetBytes(data, "id").String()
		c.Name = gjson.GetBytes(data, "name").String()
		if input := gjson.GetBytes(data, "input"); input.Exists() {
			if err := json.Unmarshal([]byte(input.Raw), &c.Input); err != nil {
				return fmt.Errorf("invalid tool_use input: %w", err)
			}
		}
	case BlockToolResult:
		c.ToolUseID = gjson.GetBytes(data, "tool_use_id").String()
		c.Content = gjson.GetBytes(data, "content").String()
	default:
		return fmt.Errorf("unknown content block type %q", c.Type)
	}

	return nil
}

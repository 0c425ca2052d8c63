package chatloop

import (
	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/pkg/jsonx"
	"github.com/casualjim/chatloop/provider"
)

// roundTurn is everything one model round accumulated before tool execution.
type roundTurn struct {
	reasoning string
	answer    string
	calls     []provider.ToolCallRecord
}

// toolOutcome pairs a tool call with its stringified result or error text.
type toolOutcome struct {
	call   provider.ToolCallRecord
	result string
}

// historyPolicy is the per-router strategy for persisting a round into the
// conversation history. Each provider family rejects the others' shapes, so
// the policy is fixed at construction alongside the adapter.
type historyPolicy interface {
	// appendTurn persists the assistant message of a round that requested
	// tools, before any of them runs.
	appendTurn(h *messages.History, turn roundTurn)
	// appendResult persists one tool's result, invoked per call in order.
	appendResult(h *messages.History, outcome toolOutcome)
	// finishResults runs once after every call of the round completed.
	finishResults(h *messages.History, outcomes []toolOutcome)
	// appendFinal persists the terminal assistant answer.
	appendFinal(h *messages.History, answer string)
}

func toolCallParams(calls []provider.ToolCallRecord) []messages.ToolCallParam {
	params := make([]messages.ToolCallParam, len(calls))
	for i, call := range calls {
		params[i] = messages.ToolCallParam{
			ID:   call.ID,
			Type: "function",
			Function: messages.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}
	}
	return params
}

// standardPolicy is the OpenAI wire shape: the tool-call turn is an
// assistant message with empty content and a tool_calls array, results are
// per-call role=tool messages.
type standardPolicy struct{}

func (standardPolicy) appendTurn(h *messages.History, turn roundTurn) {
	h.Add(messages.Message{
		Role:      messages.RoleAssistant,
		ToolCalls: toolCallParams(turn.calls),
	})
}

func (standardPolicy) appendResult(h *messages.History, outcome toolOutcome) {
	h.Add(messages.ToolResult(outcome.call.ID, outcome.result))
}

func (standardPolicy) finishResults(*messages.History, []toolOutcome) {}

func (standardPolicy) appendFinal(h *messages.History, answer string) {
	h.Add(messages.Assistant(answer))
}

// reasoningExclusionPolicy is the DeepSeek shape. The tool-call turn keeps
// the answer text and must carry reasoning_content, empty string included,
// or the API rejects the request. The terminal answer drops the reasoning
// for the same reason.
type reasoningExclusionPolicy struct{}

func (reasoningExclusionPolicy) appendTurn(h *messages.History, turn roundTurn) {
	reasoning := turn.reasoning
	h.Add(messages.Message{
		Role:      messages.RoleAssistant,
		Content:   turn.answer,
		Reasoning: &reasoning,
		ToolCalls: toolCallParams(turn.calls),
	})
}

func (reasoningExclusionPolicy) appendResult(h *messages.History, outcome toolOutcome) {
	h.Add(messages.ToolResult(outcome.call.ID, outcome.result))
}

func (reasoningExclusionPolicy) finishResults(*messages.History, []toolOutcome) {}

func (reasoningExclusionPolicy) appendFinal(h *messages.History, answer string) {
	h.Add(messages.Assistant(answer))
}

// blockReplayPolicy is the Minimax shape: the tool-call turn replays the
// assistant's whole content-block array (thinking, text, then tool_use),
// and tool results go back as one user message holding every tool_result
// block of the round.
type blockReplayPolicy struct{}

func (blockReplayPolicy) appendTurn(h *messages.History, turn roundTurn) {
	blocks := make([]messages.ContentBlock, 0, 2+len(turn.calls))
	if turn.reasoning != "" {
		blocks = append(blocks, messages.ThinkingBlock(turn.reasoning))
	}
	if turn.answer != "" {
		blocks = append(blocks, messages.TextBlock(turn.answer))
	}
	for _, call := range turn.calls {
		// A malformed argument payload still has to occupy its block slot;
		// the matching tool_result will carry the parse error.
		input, err := jsonx.ParseToolArguments(call.Arguments)
		if err != nil {
			input = map[string]any{}
		}
		blocks = append(blocks, messages.ToolUseBlock(call.ID, call.Name, input))
	}
	h.Add(messages.AssistantBlocks(blocks...))
}

func (blockReplayPolicy) appendResult(*messages.History, toolOutcome) {}

func (blockReplayPolicy) finishResults(h *messages.History, outcomes []toolOutcome) {
	blocks := make([]messages.ContentBlock, len(outcomes))
	for i, outcome := range outcomes {
		blocks[i] = messages.ToolResultBlock(outcome.call.ID, outcome.result)
	}
	h.Add(messages.UserToolResults(blocks...))
}

func (blockReplayPolicy) appendFinal(h *messages.History, answer string) {
	h.Add(messages.Assistant(answer))
}

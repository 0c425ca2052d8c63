package provider

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Event is the closed union of normalized model-output events. A single
// model invocation yields zero or more Think/Answer/ToolCall events followed
// by exactly one End, or terminates early with exactly one Error.
type Event interface {
	modelEvent()
}

// Think carries one fragment of reasoning text. Streaming adapters emit one
// per delta; non-streaming adapters emit one per thinking block.
type Think struct {
	Content string
	// Meta holds adapter-specific extras as an opaque payload.
	Meta gjson.Result
	// Raw is the untouched provider object this fragment came from. It is a
	// debugging escape hatch, never required for correctness.
	Raw any
}

func (Think) modelEvent() {}

// Answer carries one fragment of the model's answer text.
type Answer struct {
	Content string
	Meta    gjson.Result
	Raw     any
}

func (Answer) modelEvent() {}

// ToolCall carries one finalized tool invocation request. Emitted only after
// the call's fragments are fully reassembled, so Call.ID is always non-empty.
type ToolCall struct {
	Call ToolCallRecord
	Meta gjson.Result
	Raw  any
}

func (ToolCall) modelEvent() {}

// End closes a model invocation's event sequence. It repeats the turn's
// accumulated payload so consumers that want whole-turn values do not have to
// re-assemble the fragments themselves.
type End struct {
	Reasoning string
	Content   string
	Calls     []ToolCallRecord
	Raw       any
}

func (End) modelEvent() {}

// Error terminates the sequence after a transport or provider failure. No
// End follows it.
type Error struct {
	Err error
	Raw any
}

func (Error) modelEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("model invocation failed: %v", e.Err)
}

func (e Error) Unwrap() error { return e.Err }

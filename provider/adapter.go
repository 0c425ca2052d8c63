package provider

import (
	"context"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/tool"
)

// Adapter converts one vendor's chat-completion responses, streamed or
// whole, into the normalized Event sequence.
//
// Implementations must not mutate the history they receive, and must honor
// the sequence invariants documented on Event: incremental emission for
// streaming transports, exactly one terminal End, exactly one Error on
// failure with nothing after it. The returned error covers request
// construction only; anything that goes wrong after the request is issued
// surfaces as an Error event so the consumer sees a single failure path.
type Adapter interface {
	ChatStream(ctx context.Context, history []messages.Message) (<-chan Event, error)
}

// ToolUser is implemented by adapters that accept a tool registry to build
// their provider-specific tool declaration payload.
type ToolUser interface {
	UseTools(defs []tool.Definition)
}

// Emit sends ev on out unless ctx is already done, so an abandoned consumer
// never wedges an adapter goroutine.
func Emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

package chatloop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casualjim/chatloop/events"
	"github.com/casualjim/chatloop/executor"
	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/pkg/jsonx"
	"github.com/casualjim/chatloop/pkg/slogx"
	"github.com/casualjim/chatloop/pkg/uuidx"
	"github.com/casualjim/chatloop/provider"
	"github.com/fogfish/opts"
	"github.com/go-openapi/strfmt"
)

const interruptedMessage = "conversation interrupted by user"

// LoopSettings holds the per-invocation knobs of Loop.
type LoopSettings struct {
	// Interrupt is polled before every inbound model event, after each
	// completed round, and before every tool execution. Returning true stops
	// the conversation cooperatively with a single interrupted event.
	Interrupt func() bool
}

// LoopOption configures a single Loop invocation.
type LoopOption = opts.Option[LoopSettings]

// WithInterrupt installs the cooperative interrupt predicate.
var WithInterrupt = opts.ForName[LoopSettings, func() bool]("Interrupt")

// Loop drives the conversation from the current history until the model
// answers without requesting tools. Events stream on the returned channel,
// which closes after a terminal end, error, or interrupted event. The
// history is mutated in place: the full turn is appended in the shape the
// router's provider requires, so the caller can add the next user message
// and call Loop again.
//
// The channel carries a small buffer so the terminal event stays deliverable
// after ctx is canceled. A caller that cancels and also stops draining may
// lose that terminal event once the buffer fills; drain the channel to
// completion to observe it.
func (m *Model) Loop(ctx context.Context, history *messages.History, exec executor.ToolExecutor, options ...LoopOption) (<-chan events.Event, error) {
	var settings LoopSettings
	if err := opts.Apply(&settings, options); err != nil {
		return nil, err
	}

	interrupted := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return settings.Interrupt != nil && settings.Interrupt()
	}

	out := make(chan events.Event, 10)
	go m.run(ctx, history, exec, interrupted, out)
	return out, nil
}

func (m *Model) run(ctx context.Context, history *messages.History, exec executor.ToolExecutor, interrupted func() bool, out chan<- events.Event) {
	defer close(out)

	log := slog.With(
		slog.String("run_id", uuidx.NewString()),
		slog.String("router", m.router),
		slog.String("model", m.name),
	)
	log.DebugContext(ctx, "starting conversation loop", slog.Int("history", history.Len()))

	send := func(ev events.Event) {
		// The buffer keeps terminal events deliverable even after the
		// consumer's context is gone.
		select {
		case out <- ev:
		case <-ctx.Done():
			select {
			case out <- ev:
			default:
			}
		}
	}

	for {
		turn, status := m.round(ctx, history, interrupted, send, log)
		switch status {
		case roundFailed:
			return
		case roundInterrupted:
			send(events.Interrupted{Message: interruptedMessage, Timestamp: now()})
			return
		}

		// The predicate may have flipped after the round's last inbound
		// event. Nothing is appended to history past that point.
		if interrupted() {
			log.DebugContext(ctx, "interrupted after model round")
			send(events.Interrupted{Message: interruptedMessage, Timestamp: now()})
			return
		}

		if len(turn.calls) == 0 {
			if turn.answer != "" && !history.LastIsAssistantAnswer(turn.answer) {
				m.policy.appendFinal(history, turn.answer)
			}
			log.DebugContext(ctx, "conversation loop done")
			send(events.End{Timestamp: now()})
			return
		}

		m.policy.appendTurn(history, turn)

		refs := make([]events.ToolCallRef, len(turn.calls))
		for i, call := range turn.calls {
			refs[i] = events.ToolCallRef{
				ID:       call.ID,
				Function: events.FunctionRef{Name: call.Name, Arguments: call.Arguments},
			}
		}
		send(events.ToolCalls{Calls: refs, Timestamp: now()})

		outcomes := make([]toolOutcome, 0, len(turn.calls))
		for _, call := range turn.calls {
			if interrupted() {
				log.DebugContext(ctx, "interrupted before tool execution", slog.String("tool", call.Name))
				send(events.Interrupted{Message: interruptedMessage, Timestamp: now()})
				return
			}

			outcome := m.runTool(ctx, exec, call, send, log)
			outcomes = append(outcomes, outcome)
			m.policy.appendResult(history, outcome)
		}
		m.policy.finishResults(history, outcomes)
	}
}

type roundStatus int

const (
	roundCompleted roundStatus = iota
	roundFailed
	roundInterrupted
)

// round performs one model invocation and folds its event stream into the
// turn's accumulated reasoning, answer, and tool calls.
func (m *Model) round(ctx context.Context, history *messages.History, interrupted func() bool, send func(events.Event), log *slog.Logger) (roundTurn, roundStatus) {
	// The round owns a cancelable context so an abandoned adapter goroutine
	// always unblocks.
	roundCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := m.adapter.ChatStream(roundCtx, history.Messages())
	if err != nil {
		log.ErrorContext(ctx, "model invocation failed", slogx.Error(err))
		send(events.Error{Err: err, Timestamp: now()})
		return roundTurn{}, roundFailed
	}

	var reasoning, answer strings.Builder
	var calls []provider.ToolCallRecord

	for ev := range stream {
		if interrupted() {
			return roundTurn{}, roundInterrupted
		}

		switch ev := ev.(type) {
		case provider.Think:
			reasoning.WriteString(ev.Content)
			send(events.Thinking{Content: ev.Content, Timestamp: now()})
		case provider.Answer:
			answer.WriteString(ev.Content)
			send(events.Answer{Content: ev.Content, Timestamp: now()})
		case provider.ToolCall:
			calls = append(calls, ev.Call)
		case provider.End:
		case provider.Error:
			log.ErrorContext(ctx, "model stream failed", slogx.Error(ev.Err))
			send(events.Error{Err: ev.Err, Timestamp: now()})
			return roundTurn{}, roundFailed
		}
	}

	return roundTurn{
		reasoning: reasoning.String(),
		answer:    answer.String(),
		calls:     calls,
	}, roundCompleted
}

// runTool parses one call's arguments and executes it. Every failure mode
// folds into the result text so the model can react to it on the next round.
func (m *Model) runTool(ctx context.Context, exec executor.ToolExecutor, call provider.ToolCallRecord, send func(events.Event), log *slog.Logger) toolOutcome {
	args, err := jsonx.ParseToolArguments(call.Arguments)
	if err != nil {
		result := fmt.Sprintf("tool arguments are not valid JSON: %s", call.Arguments)
		log.WarnContext(ctx, "tool argument parsing failed", slog.String("tool", call.Name), slogx.Error(err))
		send(events.ToolResult{ToolName: call.Name, ToolCallID: call.ID, Result: result, Timestamp: now()})
		return toolOutcome{call: call, result: result}
	}

	send(events.ToolExecution{ToolName: call.Name, ToolCallID: call.ID, Args: args, Timestamp: now()})

	result, err := exec.Execute(ctx, call.Name, args)
	if err != nil {
		result = fmt.Sprintf("tool execution error: %v", err)
		log.WarnContext(ctx, "tool execution failed", slog.String("tool", call.Name), slogx.Error(err))
	}
	send(events.ToolResult{ToolName: call.Name, ToolCallID: call.ID, Result: result, Timestamp: now()})
	return toolOutcome{call: call, result: result}
}

func now() strfmt.DateTime {
	return strfmt.DateTime(time.Now())
}

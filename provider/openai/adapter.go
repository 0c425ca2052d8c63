package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/provider"
	"github.com/casualjim/chatloop/tool"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

// Config carries everything the adapter needs to talk to one
// OpenAI-compatible endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Stream selects SSE delivery; when false a single completion request is
	// made and its message replayed as events.
	Stream bool
	// ExtraOptions are merged into the request body as top-level fields,
	// after the typed params are serialized.
	ExtraOptions map[string]any
}

// Adapter talks to one OpenAI-compatible chat completion endpoint.
type Adapter struct {
	transport Transport
	cfg       Config
	tools     []tool.Definition
}

var (
	_ provider.Adapter  = (*Adapter)(nil)
	_ provider.ToolUser = (*Adapter)(nil)
)

// New builds an adapter backed by a real openai-go client.
func New(cfg Config, options ...option.RequestOption) *Adapter {
	reqOpts := make([]option.RequestOption, 0, len(options)+2)
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	reqOpts = append(reqOpts, options...)

	return &Adapter{
		transport: clientTransport{client: openai.NewClient(reqOpts...)},
		cfg:       cfg,
	}
}

// NewWithTransport builds an adapter over a caller-supplied transport.
func NewWithTransport(cfg Config, t Transport) *Adapter {
	return &Adapter{transport: t, cfg: cfg}
}

// UseTools sets the tool definitions advertised on every request.
func (a *Adapter) UseTools(defs []tool.Definition) {
	a.tools = defs
}

func (a *Adapter) buildRequest(history []messages.Message) (openai.ChatCompletionNewParams, []option.RequestOption, error) {
	msgs, patches, err := messagesToParams(history)
	if err != nil {
		return openai.ChatCompletionNewParams{}, nil, err
	}

	params := openai.ChatCompletionNewParams{
		Messages: openai.F(msgs),
		Model:    openai.F(a.cfg.Model),
	}
	if len(a.tools) > 0 {
		tools, err := toolsToParams(a.tools)
		if err != nil {
			return openai.ChatCompletionNewParams{}, nil, err
		}
		params.Tools = openai.F(tools)
	}

	reqOpts := append(patches, extraOptions(a.cfg.ExtraOptions)...)
	return params, reqOpts, nil
}

// ChatStream issues one model invocation over the current history. The
// returned channel carries the normalized event sequence and closes when the
// invocation is over.
func (a *Adapter) ChatStream(ctx context.Context, history []messages.Message) (<-chan provider.Event, error) {
	params, reqOpts, err := a.buildRequest(history)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	out := make(chan provider.Event, 10)
	go func() {
		defer close(out)
		if a.cfg.Stream {
			a.runStream(ctx, params, reqOpts, out)
		} else {
			a.runOnce(ctx, params, reqOpts, out)
		}
	}()
	return out, nil
}

func (a *Adapter) runStream(ctx context.Context, params openai.ChatCompletionNewParams, reqOpts []option.RequestOption, out chan<- provider.Event) {
	stream := a.transport.NewStreaming(ctx, params, reqOpts...)
	defer stream.Close()

	var acc provider.ToolCallAccumulator
	var reasoning, content strings.Builder

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta
		raw := delta.JSON.RawJSON()

		if rc := gjson.Get(raw, "reasoning_content"); rc.Exists() && rc.String() != "" {
			reasoning.WriteString(rc.String())
			if !provider.Emit(ctx, out, provider.Think{Content: rc.String(), Raw: chunk}) {
				return
			}
		}
		if delta.Content != "" {
			content.WriteString(delta.Content)
			if !provider.Emit(ctx, out, provider.Answer{Content: delta.Content, Raw: chunk}) {
				return
			}
		}
		for _, tc := range delta.ToolCalls {
			acc.Add(int(tc.Index), tc.ID, tc.Function.Name, tc.Function.Arguments)
		}
	}

	if err := stream.Err(); err != nil {
		provider.Emit(ctx, out, provider.Error{Err: err})
		return
	}

	calls := acc.Calls()
	for _, call := range calls {
		if !provider.Emit(ctx, out, provider.ToolCall{Call: call}) {
			return
		}
	}
	provider.Emit(ctx, out, provider.End{
		Reasoning: reasoning.String(),
		Content:   content.String(),
		Calls:     calls,
	})
}

func (a *Adapter) runOnce(ctx context.Context, params openai.ChatCompletionNewParams, reqOpts []option.RequestOption, out chan<- provider.Event) {
	chat, err := a.transport.New(ctx, params, reqOpts...)
	if err != nil {
		provider.Emit(ctx, out, provider.Error{Err: err})
		return
	}
	if len(chat.Choices) == 0 {
		provider.Emit(ctx, out, provider.End{Raw: chat})
		return
	}

	msg := chat.Choices[0].Message
	raw := msg.JSON.RawJSON()

	reasoning := gjson.Get(raw, "reasoning_content").String()
	if reasoning != "" {
		if !provider.Emit(ctx, out, provider.Think{Content: reasoning, Raw: chat}) {
			return
		}
	}
	if msg.Content != "" {
		if !provider.Emit(ctx, out, provider.Answer{Content: msg.Content, Raw: chat}) {
			return
		}
	}

	calls := make([]provider.ToolCallRecord, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		call := provider.ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
		calls = append(calls, call)
		if !provider.Emit(ctx, out, provider.ToolCall{Call: call, Raw: chat}) {
			return
		}
	}

	provider.Emit(ctx, out, provider.End{
		Reasoning: reasoning,
		Content:   msg.Content,
		Calls:     calls,
		Raw:       chat,
	})
}

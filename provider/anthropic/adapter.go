package anthropic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/provider"
	"github.com/casualjim/chatloop/tool"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Doer issues a single HTTP request. *http.Client satisfies it; tests
// substitute canned responses.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config carries everything the adapter needs to talk to one Anthropic-style
// Messages endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Stream  bool
	// ExtraOptions are merged into the request body as top-level fields and
	// may override defaults such as max_tokens.
	ExtraOptions map[string]any
	// HTTPClient overrides the default client, timeouts included.
	HTTPClient Doer
}

// Adapter talks to one Anthropic-style Messages endpoint.
type Adapter struct {
	client  Doer
	baseURL string
	cfg     Config
	tools   []tool.Definition
}

var (
	_ provider.Adapter  = (*Adapter)(nil)
	_ provider.ToolUser = (*Adapter)(nil)
)

// New builds an adapter for the configured endpoint.
func New(cfg Config) *Adapter {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Adapter{client: client, baseURL: baseURL, cfg: cfg}
}

// UseTools sets the tool definitions advertised on every request.
func (a *Adapter) UseTools(defs []tool.Definition) {
	a.tools = defs
}

func (a *Adapter) buildBody(history []messages.Message) ([]byte, error) {
	system, msgs, err := messagesToParams(history)
	if err != nil {
		return nil, err
	}

	req := messageRequest{
		Model:     a.cfg.Model,
		System:    system,
		Messages:  msgs,
		MaxTokens: defaultMaxTokens,
		Stream:    a.cfg.Stream,
	}
	if len(a.tools) > 0 {
		tools, err := toolsToParams(a.tools)
		if err != nil {
			return nil, err
		}
		req.Tools = tools
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	keys := make([]string, 0, len(a.cfg.ExtraOptions))
	for k := range a.cfg.ExtraOptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		body, err = sjson.SetBytes(body, k, a.cfg.ExtraOptions[k])
		if err != nil {
			return nil, fmt.Errorf("failed to apply extra option %q: %w", k, err)
		}
	}

	return body, nil
}

// ChatStream issues one model invocation over the current history. The
// returned channel carries the normalized event sequence and closes when the
// invocation is over.
func (a *Adapter) ChatStream(ctx context.Context, history []messages.Message) (<-chan provider.Event, error) {
	body, err := a.buildBody(history)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	out := make(chan provider.Event, 10)
	go func() {
		defer close(out)

		resp, err := a.doRequest(ctx, body)
		if err != nil {
			provider.Emit(ctx, out, provider.Error{Err: err})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			provider.Emit(ctx, out, provider.Error{Err: readAPIError(resp)})
			return
		}

		if a.cfg.Stream {
			a.runStream(ctx, resp.Body, out)
		} else {
			a.runOnce(ctx, resp.Body, out)
		}
	}()
	return out, nil
}

func (a *Adapter) doRequest(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Anthropic-Version", anthropicVersion)
	if a.cfg.APIKey != "" {
		// Anthropic proper wants x-api-key, Minimax wants a bearer token.
		// Sending both keeps one code path for either endpoint.
		req.Header.Set("X-API-Key", a.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	if a.cfg.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	return a.client.Do(req)
}

func (a *Adapter) runStream(ctx context.Context, body io.Reader, out chan<- provider.Event) {
	var acc provider.ToolCallAccumulator
	var reasoning, content strings.Builder
	// Type of the content block currently open at each index. The delta
	// grammar only names the fragment kind, so text routing depends on what
	// content_block_start announced.
	blockTypes := map[int]string{}

	err := consumeSSE(ctx, body, func(_, data string) error {
		payload := gjson.Parse(data)

		switch payload.Get("type").String() {
		case "content_block_start":
			index := int(payload.Get("index").Int())
			block := payload.Get("content_block")
			blockTypes[index] = block.Get("type").String()
			if blockTypes[index] == "tool_use" {
				acc.Add(index, block.Get("id").String(), block.Get("name").String(), "")
			}
		case "content_block_delta":
			index := int(payload.Get("index").Int())
			delta := payload.Get("delta")

			switch delta.Get("type").String() {
			case "text_delta":
				text := delta.Get("text").String()
				if text == "" {
					return nil
				}
				if blockTypes[index] == "thinking" {
					reasoning.WriteString(text)
					if !provider.Emit(ctx, out, provider.Think{Content: text, Raw: data}) {
						return ctx.Err()
					}
					return nil
				}
				content.WriteString(text)
				if !provider.Emit(ctx, out, provider.Answer{Content: text, Raw: data}) {
					return ctx.Err()
				}
			case "thinking_delta":
				text := delta.Get("thinking").String()
				if text == "" {
					return nil
				}
				reasoning.WriteString(text)
				if !provider.Emit(ctx, out, provider.Think{Content: text, Raw: data}) {
					return ctx.Err()
				}
			case "input_json_delta":
				acc.Add(index, "", "", delta.Get("partial_json").String())
			}
		case "content_block_stop":
			delete(blockTypes, int(payload.Get("index").Int()))
		case "error":
			return APIError{
				Type:    payload.Get("error.type").String(),
				Message: payload.Get("error.message").String(),
			}
		}
		return nil
	})
	if err != nil {
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

func (a *Adapter) runOnce(ctx context.Context, body io.Reader, out chan<- provider.Event) {
	raw, err := io.ReadAll(body)
	if err != nil {
		provider.Emit(ctx, out, provider.Error{Err: fmt.Errorf("failed to read response: %w", err)})
		return
	}

	var reasoning, content strings.Builder
	var calls []provider.ToolCallRecord

	for _, block := range gjson.GetBytes(raw, "content").Array() {
		switch block.Get("type").String() {
		case "text":
			content.WriteString(block.Get("text").String())
		case "thinking":
			reasoning.WriteString(block.Get("thinking").String())
		case "tool_use":
			input := block.Get("input").Raw
			if input == "" {
				input = "{}"
			}
			calls = append(calls, provider.ToolCallRecord{
				ID:        block.Get("id").String(),
				Name:      block.Get("name").String(),
				Arguments: input,
			})
		}
	}

	if reasoning.Len() > 0 {
		if !provider.Emit(ctx, out, provider.Think{Content: reasoning.String(), Raw: raw}) {
			return
		}
	}
	if content.Len() > 0 {
		if !provider.Emit(ctx, out, provider.Answer{Content: content.String(), Raw: raw}) {
			return
		}
	}
	for _, call := range calls {
		if !provider.Emit(ctx, out, provider.ToolCall{Call: call, Raw: raw}) {
			return
		}
	}
	provider.Emit(ctx, out, provider.End{
		Reasoning: reasoning.String(),
		Content:   content.String(),
		Calls:     calls,
		Raw:       raw,
	})
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("messages api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return APIError{
			StatusCode: resp.StatusCode,
			Type:       gjson.GetBytes(body, "error.type").String(),
			Message:    msg.String(),
		}
	}
	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}

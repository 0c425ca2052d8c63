package openai

import (
	"context"
	"fmt"
	"testing"

	"github.com/casualjim/chatloop/messages"
	"github.com/casualjim/chatloop/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	chunks []openai.ChatCompletionChunk
	pos    int
	err    error
}

func (s *fakeStream) Next() bool {
	if s.pos < len(s.chunks) {
		s.pos++
		return true
	}
	return false
}

func (s *fakeStream) Current() openai.ChatCompletionChunk { return s.chunks[s.pos-1] }
func (s *fakeStream) Err() error                          { return s.err }
func (s *fakeStream) Close() error                        { return nil }

type fakeTransport struct {
	stream     *fakeStream
	completion *openai.ChatCompletion
	err        error

	gotParams openai.ChatCompletionNewParams
	gotOpts   []option.RequestOption
}

func (t *fakeTransport) NewStreaming(_ context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) ChunkStream {
	t.gotParams = params
	t.gotOpts = opts
	return t.stream
}

func (t *fakeTransport) New(_ context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	t.gotParams = params
	t.gotOpts = opts
	return t.completion, t.err
}

func chunkOf(t *testing.T, deltaJSON string) openai.ChatCompletionChunk {
	t.Helper()
	raw := fmt.Sprintf(
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"test","choices":[{"index":0,"delta":%s,"finish_reason":null}]}`,
		deltaJSON)
	var c openai.ChatCompletionChunk
	require.NoError(t, c.UnmarshalJSON([]byte(raw)))
	return c
}

func collect(t *testing.T, ch <-chan provider.Event) []provider.Event {
	t.Helper()
	var out []provider.Event
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestStreamingRun(t *testing.T) {
	tr := &fakeTransport{stream: &fakeStream{chunks: []openai.ChatCompletionChunk{
		chunkOf(t, `{"role":"assistant","reasoning_content":"weigh "}`),
		chunkOf(t, `{"reasoning_content":"options"}`),
		chunkOf(t, `{"content":"Sure, "}`),
		chunkOf(t, `{"content":"calling tools."}`),
		chunkOf(t, `{"tool_calls":[{"index":1,"id":"call_b","function":{"name":"get_weather","arguments":"{\"ci"}}]}`),
		chunkOf(t, `{"tool_calls":[{"index":0,"id":"call_a","function":{"name":"add","arguments":"{\"a\":1"}}]}`),
		chunkOf(t, `{"tool_calls":[{"index":1,"function":{"arguments":"ty\":\"SF\"}"}}]}`),
		chunkOf(t, `{"tool_calls":[{"index":0,"function":{"arguments":",\"b\":2}"}}]}`),
	}}}
	a := NewWithTransport(Config{Model: "test", Stream: true}, tr)

	ch, err := a.ChatStream(context.Background(), []messages.Message{messages.User("hi")})
	require.NoError(t, err)
	evs := collect(t, ch)

	require.Len(t, evs, 7)
	assert.Equal(t, "weigh ", evs[0].(provider.Think).Content)
	assert.Equal(t, "options", evs[1].(provider.Think).Content)
	assert.Equal(t, "Sure, ", evs[2].(provider.Answer).Content)
	assert.Equal(t, "calling tools.", evs[3].(provider.Answer).Content)

	first := evs[4].(provider.ToolCall).Call
	second := evs[5].(provider.ToolCall).Call
	assert.Equal(t, provider.ToolCallRecord{ID: "call_a", Name: "add", Arguments: `{"a":1,"b":2}`}, first)
	assert.Equal(t, provider.ToolCallRecord{ID: "call_b", Name: "get_weather", Arguments: `{"city":"SF"}`}, second)

	end := evs[6].(provider.End)
	assert.Equal(t, "weigh options", end.Reasoning)
	assert.Equal(t, "Sure, calling tools.", end.Content)
	assert.Equal(t, []provider.ToolCallRecord{first, second}, end.Calls)
}

func TestStreamingRunError(t *testing.T) {
	tr := &fakeTransport{stream: &fakeStream{
		chunks: []openai.ChatCompletionChunk{chunkOf(t, `{"content":"partial"}`)},
		err:    fmt.Errorf("connection reset"),
	}}
	a := NewWithTransport(Config{Model: "test", Stream: true}, tr)

	ch, err := a.ChatStream(context.Background(), []messages.Message{messages.User("hi")})
	require.NoError(t, err)
	evs := collect(t, ch)

	require.Len(t, evs, 2)
	assert.Equal(t, "partial", evs[0].(provider.Answer).Content)

	failure, ok := evs[1].(provider.Error)
	require.True(t, ok, "stream failure must end the sequence with an error event")
	assert.ErrorContains(t, failure.Err, "connection reset")
}

func TestNonStreamingRun(t *testing.T) {
	raw := `{
		"id":"cmpl-1","object":"chat.completion","created":1,"model":"test",
		"choices":[{"index":0,"finish_reason":"tool_calls","message":{
			"role":"assistant",
			"reasoning_content":"needs the calculator",
			"content":"One moment.",
			"tool_calls":[{"id":"call_a","type":"function","function":{"name":"add","arguments":"{\"a\":1,\"b\":2}"}}]
		}}]
	}`
	var completion openai.ChatCompletion
	require.NoError(t, completion.UnmarshalJSON([]byte(raw)))

	tr := &fakeTransport{completion: &completion}
	a := NewWithTransport(Config{Model: "test"}, tr)

	ch, err := a.ChatStream(context.Background(), []messages.Message{messages.User("hi")})
	require.NoError(t, err)
	evs := collect(t, ch)

	require.Len(t, evs, 4)
	assert.Equal(t, "needs the calculator", evs[0].(provider.Think).Content)
	assert.Equal(t, "One moment.", evs[1].(provider.Answer).Content)
	assert.Equal(t, "add", evs[2].(provider.ToolCall).Call.Name)

	end := evs[3].(provider.End)
	assert.Equal(t, "needs the calculator", end.Reasoning)
	assert.Equal(t, "One moment.", end.Content)
	require.Len(t, end.Calls, 1)
}

func TestNonStreamingRunRequestFailure(t *testing.T) {
	tr := &fakeTransport{err: fmt.Errorf("401 unauthorized")}
	a := NewWithTransport(Config{Model: "test"}, tr)

	ch, err := a.ChatStream(context.Background(), []messages.Message{messages.User("hi")})
	require.NoError(t, err)
	evs := collect(t, ch)

	require.Len(t, evs, 1)
	failure, ok := evs[0].(provider.Error)
	require.True(t, ok)
	assert.ErrorContains(t, failure.Err, "unauthorized")
}

func TestBuildRequestRejectsBlockContent(t *testing.T) {
	a := NewWithTransport(Config{Model: "test"}, &fakeTransport{})

	history := []messages.Message{
		messages.UserToolResults(messages.ToolResultBlock("call_a", "3")),
	}
	_, err := a.ChatStream(context.Background(), history)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block-shaped")
}

func TestToolAdvertisement(t *testing.T) {
	tr := &fakeTransport{stream: &fakeStream{}}
	a := NewWithTransport(Config{Model: "test", Stream: true}, tr)
	a.UseTools(nil)

	ch, err := a.ChatStream(context.Background(), []messages.Message{
		messages.System("be brief"),
		messages.User("hi"),
	})
	require.NoError(t, err)
	collect(t, ch)

	require.Len(t, tr.gotParams.Messages.Value, 2)
	assert.False(t, tr.gotParams.Tools.Present)
}

package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChunkStream is the streaming response surface the adapter consumes. The
// openai-go SSE stream satisfies it directly.
type ChunkStream interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// Transport issues chat completion requests. It exists so tests can feed the
// adapter canned chunks without a network.
type Transport interface {
	NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) ChunkStream
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type clientTransport struct {
	client *openai.Client
}

func (t clientTransport) NewStreaming(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) ChunkStream {
	return t.client.Chat.Completions.NewStreaming(ctx, params, opts...)
}

func (t clientTransport) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	return t.client.Chat.Completions.New(ctx, params, opts...)
}

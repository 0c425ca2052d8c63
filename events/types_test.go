package events

import (
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestThinkingJSON(t *testing.T) {
	ev := Thinking{Content: "let me work this out"}

	t.Run("marshal", func(t *testing.T) {
		data, err := ev.MarshalJSON()
		require.NoError(t, err)

		result := gjson.ParseBytes(data)
		assert.Equal(t, "thinking", result.Get("type").String())
		assert.Equal(t, "let me work this out", result.Get("content").String())
		assert.False(t, result.Get("timestamp").Exists())
	})

	t.Run("marshal with timestamp", func(t *testing.T) {
		stamped := Thinking{Content: "x", Timestamp: strfmt.DateTime(time.Now())}
		data, err := stamped.MarshalJSON()
		require.NoError(t, err)
		assert.True(t, gjson.GetBytes(data, "timestamp").Exists())
	})

	t.Run("unmarshal", func(t *testing.T) {
		var got Thinking
		require.NoError(t, got.UnmarshalJSON([]byte(`{"type":"thinking","content":"let me work this out"}`)))
		assert.Equal(t, ev, got)
	})

	t.Run("unmarshal wrong type", func(t *testing.T) {
		var got Thinking
		assert.Error(t, got.UnmarshalJSON([]byte(`{"type":"answer","content":"x"}`)))
	})
}

func TestAnswerJSON(t *testing.T) {
	ev := Answer{Content: "3"}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "answer", gjson.GetBytes(data, "type").String())
	assert.Equal(t, "3", gjson.GetBytes(data, "content").String())

	var got Answer
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev, got)
}

func TestToolCallsJSON(t *testing.T) {
	ev := ToolCalls{
		Calls: []ToolCallRef{
			{ID: "call_1", Function: FunctionRef{Name: "add", Arguments: `{"a":1,"b":2}`}},
			{ID: "call_2", Function: FunctionRef{Name: "get_weather", Arguments: `{"city":"SF"}`}},
		},
	}

	t.Run("marshal", func(t *testing.T) {
		data, err := ev.MarshalJSON()
		require.NoError(t, err)

		result := gjson.ParseBytes(data)
		assert.Equal(t, "tool_calls", result.Get("type").String())
		require.Equal(t, int64(2), result.Get("tool_calls.#").Int())
		assert.Equal(t, "call_1", result.Get("tool_calls.0.id").String())
		assert.Equal(t, "add", result.Get("tool_calls.0.function.name").String())
		assert.Equal(t, `{"a":1,"b":2}`, result.Get("tool_calls.0.function.arguments").String())
	})

	t.Run("marshal empty list stays an array", func(t *testing.T) {
		data, err := ToolCalls{}.MarshalJSON()
		require.NoError(t, err)
		assert.True(t, gjson.GetBytes(data, "tool_calls").IsArray())
	})

	t.Run("unmarshal", func(t *testing.T) {
		data, err := ev.MarshalJSON()
		require.NoError(t, err)

		var got ToolCalls
		require.NoError(t, got.UnmarshalJSON(data))
		assert.Equal(t, ev, got)
	})

	t.Run("unmarshal missing list", func(t *testing.T) {
		var got ToolCalls
		assert.Error(t, got.UnmarshalJSON([]byte(`{"type":"tool_calls"}`)))
	})
}

func TestToolExecutionJSON(t *testing.T) {
	ev := ToolExecution{
		ToolName:   "add",
		ToolCallID: "call_1",
		Args:       map[string]any{"a": float64(1), "b": float64(2)},
	}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)

	result := gjson.ParseBytes(data)
	assert.Equal(t, "tool_execution", result.Get("type").String())
	assert.Equal(t, "add", result.Get("tool_name").String())
	assert.Equal(t, "call_1", result.Get("tool_call_id").String())
	assert.Equal(t, float64(2), result.Get("args.b").Float())

	var got ToolExecution
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev, got)
}

func TestToolResultJSON(t *testing.T) {
	ev := ToolResult{ToolName: "add", ToolCallID: "call_1", Result: "3"}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)

	result := gjson.ParseBytes(data)
	assert.Equal(t, "tool_result", result.Get("type").String())
	assert.Equal(t, "3", result.Get("result").String())

	var got ToolResult
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev, got)
}

func TestErrorJSON(t *testing.T) {
	ev := Error{Err: errors.New("upstream exploded")}

	t.Run("marshal", func(t *testing.T) {
		data, err := ev.MarshalJSON()
		require.NoError(t, err)

		result := gjson.ParseBytes(data)
		assert.Equal(t, "error", result.Get("type").String())
		assert.Equal(t, "upstream exploded", result.Get("message").String())
	})

	t.Run("unmarshal", func(t *testing.T) {
		var got Error
		require.NoError(t, got.UnmarshalJSON([]byte(`{"type":"error","message":"upstream exploded"}`)))
		assert.EqualError(t, got.Err, "upstream exploded")
	})

	t.Run("unmarshal missing message", func(t *testing.T) {
		var got Error
		assert.Error(t, got.UnmarshalJSON([]byte(`{"type":"error"}`)))
	})
}

func TestInterruptedJSON(t *testing.T) {
	ev := Interrupted{Message: "conversation interrupted by user"}

	data, err := ev.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "interrupted", gjson.GetBytes(data, "type").String())

	var got Interrupted
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, ev, got)
}

func TestEndJSON(t *testing.T) {
	data, err := End{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"end"}`, string(data))

	var got End
	require.NoError(t, got.UnmarshalJSON(data))
	assert.Equal(t, End{}, got)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Event
	}{
		{"thinking", `{"type":"thinking","content":"hm"}`, Thinking{Content: "hm"}},
		{"answer", `{"type":"answer","content":"3"}`, Answer{Content: "3"}},
		{
			"tool_calls",
			`{"type":"tool_calls","tool_calls":[{"id":"c1","function":{"name":"add","arguments":"{}"}}]}`,
			ToolCalls{Calls: []ToolCallRef{{ID: "c1", Function: FunctionRef{Name: "add", Arguments: "{}"}}}},
		},
		{"interrupted", `{"type":"interrupted","message":"stop"}`, Interrupted{Message: "stop"}},
		{"end", `{"type":"end"}`, End{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		_, err := Decode([]byte(`{"type":"mystery"}`))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Decode([]byte(`nope`))
		assert.Error(t, err)
	})
}

func TestEventsMarshalThroughInterface(t *testing.T) {
	// json.Marshal must pick up the custom marshalers when events travel as
	// the interface type.
	evs := []Event{Thinking{Content: "a"}, Answer{Content: "b"}, End{}}
	for _, ev := range evs {
		data, err := json.Marshal(ev)
		require.NoError(t, err)
		assert.True(t, gjson.GetBytes(data, "type").Exists())
	}
}

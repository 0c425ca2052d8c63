package events

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	thinkingJSON      = []byte(`{"type":"thinking"}`)
	answerJSON        = []byte(`{"type":"answer"}`)
	toolCallsJSON     = []byte(`{"type":"tool_calls"}`)
	toolExecutionJSON = []byte(`{"type":"tool_execution"}`)
	toolResultJSON    = []byte(`{"type":"tool_result"}`)
	errorJSON         = []byte(`{"type":"error"}`)
	interruptedJSON   = []byte(`{"type":"interrupted"}`)
	endJSON           = []byte(`{"type":"end"}`)
)

// Event is the closed union of outward stream events.
type Event interface {
	event()
}

// Thinking carries one fragment of the model's reasoning text.
type Thinking struct {
	Content   string          `json:"content"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Thinking) event() {}

// Answer carries one fragment of the model's answer text.
type Answer struct {
	Content   string          `json:"content"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Answer) event() {}

// FunctionRef names a tool and echoes its raw argument text.
type FunctionRef struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallRef identifies one pending tool call in a tool_calls notification.
type ToolCallRef struct {
	ID       string      `json:"id"`
	Function FunctionRef `json:"function"`
}

// ToolCalls announces every tool call of the round, in execution order,
// before any of them runs.
type ToolCalls struct {
	Calls     []ToolCallRef   `json:"tool_calls"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (ToolCalls) event() {}

// ToolExecution announces that one tool is about to run with parsed
// arguments.
type ToolExecution struct {
	ToolName   string          `json:"tool_name"`
	ToolCallID string          `json:"tool_call_id"`
	Args       map[string]any  `json:"args"`
	Timestamp  strfmt.DateTime `json:"timestamp,omitempty"`
}

func (ToolExecution) event() {}

// ToolResult carries a tool's outcome: its stringified result on success, or
// a descriptive error string when parsing or execution failed.
type ToolResult struct {
	ToolName   string          `json:"tool_name"`
	ToolCallID string          `json:"tool_call_id"`
	Result     string          `json:"result"`
	Timestamp  strfmt.DateTime `json:"timestamp,omitempty"`
}

func (ToolResult) event() {}

// Error terminates the stream after a model or transport failure.
type Error struct {
	Err       error           `json:"-"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) event() {}

func (e Error) Error() string {
	if e.Err == nil {
		return "chat loop error"
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }

// Interrupted terminates the stream after a cooperative interrupt.
type Interrupted struct {
	Message   string          `json:"message"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Interrupted) event() {}

// End terminates the stream after a completed conversation turn.
type End struct {
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (End) event() {}

func setTimestamp(data []byte, ts strfmt.DateTime) ([]byte, error) {
	if ts.IsZero() {
		return data, nil
	}
	return sjson.SetBytes(data, "timestamp", ts.String())
}

func requireType(data []byte, want string) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}
	msgType := gjson.GetBytes(data, "type")
	if !msgType.Exists() || msgType.String() != want {
		return fmt.Errorf("missing or invalid type, expected %q", want)
	}
	return nil
}

func parseTimestamp(data []byte, into *strfmt.DateTime) error {
	ts := gjson.GetBytes(data, "timestamp")
	if !ts.Exists() {
		return nil
	}
	if err := into.UnmarshalText([]byte(ts.String())); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	return nil
}

// MarshalJSON implements custom JSON marshaling for Thinking.
func (t Thinking) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(thinkingJSON, "content", t.Content)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, t.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Thinking.
func (t *Thinking) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "thinking"); err != nil {
		return err
	}
	t.Content = gjson.GetBytes(data, "content").String()
	return parseTimestamp(data, &t.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Answer.
func (a Answer) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(answerJSON, "content", a.Content)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, a.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Answer.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "answer"); err != nil {
		return err
	}
	a.Content = gjson.GetBytes(data, "content").String()
	return parseTimestamp(data, &a.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for ToolCalls.
func (tc ToolCalls) MarshalJSON() ([]byte, error) {
	calls := tc.Calls
	if calls == nil {
		calls = []ToolCallRef{}
	}
	cj, err := json.Marshal(calls)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool_calls: %w", err)
	}
	result, err := sjson.SetRawBytes(toolCallsJSON, "tool_calls", cj)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, tc.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolCalls.
func (tc *ToolCalls) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "tool_calls"); err != nil {
		return err
	}
	calls := gjson.GetBytes(data, "tool_calls")
	if !calls.Exists() {
		return fmt.Errorf("missing required field 'tool_calls'")
	}
	if err := json.Unmarshal([]byte(calls.Raw), &tc.Calls); err != nil {
		return fmt.Errorf("invalid tool_calls: %w", err)
	}
	return parseTimestamp(data, &tc.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for ToolExecution.
func (te ToolExecution) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolExecutionJSON, "tool_name", te.ToolName)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "tool_call_id", te.ToolCallID)
	if err != nil {
		return nil, err
	}
	args := te.Args
	if args == nil {
		args = map[string]any{}
	}
	aj, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "args", aj)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, te.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolExecution.
func (te *ToolExecution) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "tool_execution"); err != nil {
		return err
	}
	te.ToolName = gjson.GetBytes(data, "tool_name").String()
	te.ToolCallID = gjson.GetBytes(data, "tool_call_id").String()
	if args := gjson.GetBytes(data, "args"); args.Exists() {
		if err := json.Unmarshal([]byte(args.Raw), &te.Args); err != nil {
			return fmt.Errorf("invalid args: %w", err)
		}
	}
	return parseTimestamp(data, &te.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for ToolResult.
func (tr ToolResult) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolResultJSON, "tool_name", tr.ToolName)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "tool_call_id", tr.ToolCallID)
	if err != nil {
		return nil, err
	}
	result, err = sjson.SetBytes(result, "result", tr.Result)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, tr.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolResult.
func (tr *ToolResult) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "tool_result"); err != nil {
		return err
	}
	tr.ToolName = gjson.GetBytes(data, "tool_name").String()
	tr.ToolCallID = gjson.GetBytes(data, "tool_call_id").String()
	tr.Result = gjson.GetBytes(data, "result").String()
	return parseTimestamp(data, &tr.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Error.
func (e Error) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(errorJSON, "message", e.Error())
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, e.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Error.
func (e *Error) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "error"); err != nil {
		return err
	}
	msg := gjson.GetBytes(data, "message")
	if !msg.Exists() {
		return fmt.Errorf("missing required field 'message'")
	}
	e.Err = fmt.Errorf("%s", msg.String())
	return parseTimestamp(data, &e.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for Interrupted.
func (i Interrupted) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(interruptedJSON, "message", i.Message)
	if err != nil {
		return nil, err
	}
	return setTimestamp(result, i.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for Interrupted.
func (i *Interrupted) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "interrupted"); err != nil {
		return err
	}
	i.Message = gjson.GetBytes(data, "message").String()
	return parseTimestamp(data, &i.Timestamp)
}

// MarshalJSON implements custom JSON marshaling for End.
func (e End) MarshalJSON() ([]byte, error) {
	return setTimestamp(endJSON, e.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for End.
func (e *End) UnmarshalJSON(data []byte) error {
	if err := requireType(data, "end"); err != nil {
		return err
	}
	return parseTimestamp(data, &e.Timestamp)
}

// Decode parses one outward event from its JSON form, dispatching on the
// "type" discriminator.
func Decode(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	var ev Event
	var err error
	switch msgType := gjson.GetBytes(data, "type").String(); msgType {
	case "thinking":
		var e Thinking
		err = e.UnmarshalJSON(data)
		ev = e
	case "answer":
		var e Answer
		err = e.UnmarshalJSON(data)
		ev = e
	case "tool_calls":
		var e ToolCalls
		err = e.UnmarshalJSON(data)
		ev = e
	case "tool_execution":
		var e ToolExecution
		err = e.UnmarshalJSON(data)
		ev = e
	case "tool_result":
		var e ToolResult
		err = e.UnmarshalJSON(data)
		ev = e
	case "error":
		var e Error
		err = e.UnmarshalJSON(data)
		ev = e
	case "interrupted":
		var e Interrupted
		err = e.UnmarshalJSON(data)
		ev = e
	case "end":
		var e End
		err = e.UnmarshalJSON(data)
		ev = e
	default:
		return nil, fmt.Errorf("unknown event type %q", msgType)
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

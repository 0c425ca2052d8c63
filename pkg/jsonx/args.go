package jsonx

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrMalformedArguments signals that a tool's argument text could not be
// parsed, even after the repair pass. Callers treat it as routable data (a
// failed tool result), never as a fatal fault.
var ErrMalformedArguments = errors.New("tool arguments are not valid JSON")

// ParseToolArguments parses the raw argument text a model attached to a tool
// call. Models occasionally emit malformed JSON, most commonly single-quoted
// strings, so the parse is fault tolerant:
//
//   - empty or whitespace-only input yields an empty argument map
//   - otherwise a strict parse is attempted
//   - on failure, exactly one repair pass substitutes double quotes for
//     single quotes and re-parses
//
// If the repair pass also fails, the returned error wraps
// ErrMalformedArguments.
func ParseToolArguments(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return map[string]any{}, nil
	}

	args := make(map[string]any)
	if err := json.Unmarshal([]byte(text), &args); err == nil {
		return args, nil
	}

	repaired := strings.ReplaceAll(text, "'", `"`)
	args = make(map[string]any)
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedArguments, text)
	}
	return args, nil
}

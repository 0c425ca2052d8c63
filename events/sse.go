package events

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// WriteSSE frames one event as a Server-Sent-Events message,
// "data: <json>\n\n", and writes it to w. Callers that stream over HTTP
// should flush after each call.
func WriteSSE(w io.Writer, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

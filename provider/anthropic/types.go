package anthropic

import "fmt"

const (
	defaultBaseURL   = "https://api.anthropic.com"
	messagesPath     = "/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
)

// messageRequest is the Messages API request body. Content entries are
// either a plain string or a block array; any is the honest type for that
// union.
type messageRequest struct {
	Model     string         `json:"model"`
	System    string         `json:"system,omitempty"`
	Messages  []messageParam `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
	Stream    bool           `json:"stream,omitempty"`
	Tools     []toolParam    `json:"tools,omitempty"`
}

type messageParam struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type toolParam struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// APIError is a non-2xx response from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("messages api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("messages api error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
}

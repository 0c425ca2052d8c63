package executor

import (
	"context"
	"fmt"
	"log/slog"
)

// ToolExecutor runs a named tool with already-parsed arguments and returns
// its result as text. Implementations decide how names map to code; the loop
// never inspects results beyond passing them back to the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (string, error)
}

// Func is a single tool implementation.
type Func func(ctx context.Context, args map[string]any) (string, error)

// Funcs is a map-backed ToolExecutor. Execution of an unregistered name
// fails; there is no fallback.
type Funcs map[string]Func

var _ ToolExecutor = Funcs{}

// Execute dispatches to the function registered under name.
func (f Funcs) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	fn, ok := f[name]
	if !ok {
		return "", fmt.Errorf("no tool registered with name %q", name)
	}

	slog.DebugContext(ctx, "executing tool", slog.String("tool", name))
	result, err := fn(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", name, err)
	}
	return result, nil
}

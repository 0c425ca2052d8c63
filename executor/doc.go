// Package executor binds tool names to implementations. The orchestration
// loop hands every model-requested tool call to a ToolExecutor and feeds the
// string result back into the conversation.
package executor

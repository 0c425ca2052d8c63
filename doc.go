/*
Package chatloop normalizes vendor chat-completion APIs behind one event
taxonomy and drives autonomous tool-calling conversations over them.

A Model is constructed once for a provider endpoint and selects a router: a
pairing of wire adapter and history-append policy. Loop runs the
conversation state machine: it invokes the model over the caller's history,
surfaces thinking, answer, and tool activity as typed events, executes
requested tools through a ToolExecutor, feeds results back, and repeats
until the model answers without tools.

	model, err := chatloop.New(chatloop.RouterOpenAIChat,
		"https://api.example.com/v1", apiKey, "gpt-4o")
	if err != nil {
		return err
	}
	model.ToolInit(weatherTool)

	history := messages.NewHistory(messages.User("How's the weather in SF?"))
	stream, err := model.Loop(ctx, history, exec)
	if err != nil {
		return err
	}
	for ev := range stream {
		// render ev, or events.WriteSSE(w, ev)
	}

The history is owned by the caller. The loop appends the full turn,
assistant tool-call messages and tool results included, in the exact shape
the selected provider requires on the next call, so the same History can be
resumed round after round.
*/
package chatloop

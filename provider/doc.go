// Package provider defines the normalized event model and the adapter
// contract that reconcile divergent vendor chat-completion APIs into one
// internal representation.
//
// Each vendor streams its response in a different grammar: OpenAI-style APIs
// interleave content and reasoning deltas with index-keyed tool-call
// fragments, while Anthropic-style APIs emit explicit block-start/delta/stop
// sequences. An Adapter absorbs those differences and yields a flat sequence
// of Event values: Think and Answer fragments as they arrive, one ToolCall
// per finalized call, then exactly one terminal End. Any transport or
// provider failure yields exactly one Error instead, and nothing after it.
//
// ToolCallAccumulator is the shared reassembly buffer for fragmented
// tool-call deltas. Fragments are keyed by a provider-supplied index; the
// finalized list is ordered by first-seen index, and records whose id never
// arrived are discarded rather than guessed at.
//
// The package does not perform network I/O itself; adapters consume
// already-parsed provider objects from a transport owned by their subpackage.
package provider

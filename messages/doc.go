// Package messages defines the conversation history model shared by the
// chat loop and the provider adapters.
//
// A conversation is an ordered sequence of role-tagged messages owned by the
// caller. The loop appends to it through History, which is the sole mutation
// path: messages are never replaced or reordered once added. This keeps the
// history valid for resubmission to a provider on the next round, and lets
// callers resume a conversation later with full context.
//
// Message content comes in two shapes. Most providers accept a plain string,
// but block-replay providers (Minimax-style) require the assistant's full
// ordered content-block array and aggregate tool results into a single user
// message. Both shapes round-trip through the custom JSON codecs in this
// package.
package messages

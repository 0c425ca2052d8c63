// Package events defines the outward event stream emitted by the chat loop.
//
// Every event is a discrete JSON object with a "type" discriminator, one of:
// thinking, answer, tool_calls, tool_execution, tool_result, error,
// interrupted, end. In-process consumers receive them as typed values over a
// channel; textual transports frame each one as a Server-Sent-Events message
// via WriteSSE.
//
// The set is closed: Event carries an unexported marker method so only the
// types in this package can flow through the stream. Marshaling is built with
// sjson over a seed object and unmarshaling with gjson, keeping the
// discriminator handling in one obvious place per type.
package events

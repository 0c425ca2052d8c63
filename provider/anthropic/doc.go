/*
Package anthropic adapts Anthropic-style Messages APIs, including Minimax's
Anthropic-compatible endpoint, to the normalized provider event sequence.

The adapter speaks the wire protocol directly over HTTP. Streaming responses
arrive as server-sent events carrying a content-block grammar: blocks open
with content_block_start, grow through content_block_delta (text_delta,
thinking_delta, or input_json_delta fragments), and close with
content_block_stop. Tool-use blocks are reassembled per block index before
they are surfaced as events.
*/
package anthropic

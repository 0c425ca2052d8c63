/*
Package openai adapts OpenAI-compatible chat completion APIs, including
DeepSeek and other vendors that speak the same wire format, to the normalized
provider event sequence.

Reasoning text is not part of the openai-go object model, so the adapter
reads the reasoning_content field straight from each delta's raw JSON and
writes it back onto persisted assistant messages through request-body
patching. Vendors that never send the field simply yield no Think events.
*/
package openai

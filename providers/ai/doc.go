// Package ai defines the provider-agnostic request and response types used to
// talk to generative-AI backends, together with the [Provider] and
// [StreamProvider] interfaces that concrete providers (see package gemini)
// implement.
//
// Model output that stops early is the normal case here, not an edge case:
// a response cut by the token limit reports [ChatResponse.Truncated], and a
// stream that fails mid-way still yields its partial content from
// [ChatStream.Collect]. Package parse turns that text into typed values.
package ai

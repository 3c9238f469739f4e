// Package utils holds the HTTP helpers shared by the generative-AI providers:
// [DoPostSync] for JSON round-trips, [DoPostStream] with [SSEScanner] for
// Server-Sent Events, and [CloseWithLog] for response bodies.
package utils

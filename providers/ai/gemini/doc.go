// Package gemini implements ai.Provider and ai.StreamProvider for Google's
// Gemini generateContent API over plain HTTP.
//
// Authentication uses the x-goog-api-key header. A per-call key attached
// with ai.ContextWithAPIKey overrides the provider's default, which lets the
// client rotate across several keys without rebuilding the provider.
package gemini

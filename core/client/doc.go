// Package client sits between a raw ai.Provider and the code that needs typed
// answers from it. A [Client] carries the system prompt, default model,
// observer and middleware chain; [GenerateStructured] streams a response,
// keeps whatever arrived if the stream is cut, and decodes it with
// parse.ParseWithFallbackContext.
package client

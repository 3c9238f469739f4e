// Package parse recovers structured values from raw generative-AI output.
//
// Model responses are frequently cut off mid-object by a token limit or a
// dropped stream. The recovery pipeline in this package is deliberately
// narrow: decode strictly, and if that fails run a single repair pass that
// closes an unterminated string and appends the missing closing brackets
// ([RepairTruncated]), then decode again. The repair pass only ever appends
// characters; it never removes or reorders what the model produced.
//
// [ParseWithFallback] is the entry point used by request handlers: it never
// fails and returns a caller-supplied fallback when the text is beyond
// repair. [Recover] exposes the same state machine with its outcome and
// error for callers that want to inspect what happened, and [ParseStringAs]
// is a lenient, error-returning variant that additionally runs a full
// JSON repair library over malformed (not just truncated) output.
package parse

// Package completion provides the CompletionService backends that turn a
// system prompt, a transcript and a tool catalog into exactly one
// proposed tool invocation.
//
// One backend implementation is live at a time, selected by name through
// New: "openai" (the reference backend), "anthropic", or "gollm". Every
// backend shares the same catalog serialization rules (one JSON-schema
// property per declared argument, with datetime encoded as a fixed-format
// string and list as an array of numbers) and the same coercion table
// for decoding the model's chosen arguments back into native Go values.
// Backends request a single tool invocation per call and use
// deterministic decoding so behavior is reproducible under test doubles.
package completion

// Package memory holds the conversation model for a single agent run.
//
// Model:
//   - a run's history is an append-only []Message, owned by the runner and
//     dropped when the run returns.
//   - Message mirrors the chat-completions wire object; ToWire emits only
//     the fields that are set.
//   - WriteTranscript dumps one run for inspection. Nothing reads it back.
package memory

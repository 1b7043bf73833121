// Package runner drives the ReAct loop: ask the model, run the tools it
// requests, feed the results back, repeat.
//
// Invariants:
//   - every tool call in an assistant turn is answered by exactly one tool
//     message, appended in the order the calls were requested, before the
//     next completion request;
//   - history is append-only and owned by a single run.
//
// Flow:
//
//	system, user -> assistant(tool_calls) -> tool... -> assistant(text)
//
// When the turn budget runs out the loop makes one last request with tool
// use disabled and returns whatever the model says, or NoAnswer.
package runner

// Package runner drives the conversation between a Model and the tool registry.
//
// Each turn sends the transcript to the model. Tool calls are executed in
// order and their observations appended as tool messages; plain text ends the
// run; an empty reply earns a nudge. The run stops after MaxTurns requests.
//
// Invariant:
//   - an assistant message with tool calls is immediately followed by one tool
//     message per call, in call order, each carrying the call's id.
//
// Flow:
//
//	system, user(task) -> assistant(tool_calls) -> tool(observation)... -> assistant(text)
package runner

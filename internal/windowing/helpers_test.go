package windowing_test

import "github.com/petasbytes/fsagent/memory"

func Sys(text string) memory.Message  { return memory.SystemMessage(text) }
func User(text string) memory.Message { return memory.UserMessage(text) }
func Text(text string) memory.Message { return memory.AssistantMessage(text) }

// Call builds an assistant message issuing tool calls with the given ids and no arguments.
func Call(ids ...string) memory.Message {
	calls := make([]memory.ToolCall, len(ids))
	for i, id := range ids {
		calls[i] = memory.ToolCall{ID: id}
	}
	return memory.AssistantMessage("", calls...)
}

// Result builds a tool observation for id.
func Result(id, s string) memory.Message { return memory.ToolMessage(id, "", s) }

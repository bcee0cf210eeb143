package provider_test

import (
	"testing"

	"github.com/petasbytes/fsagent/internal/fsops"
	"github.com/petasbytes/fsagent/internal/safety"
	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

func toolDefs(t *testing.T) []tools.ToolDefinition {
	t.Helper()
	sb, err := safety.NewSandbox(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return tools.Default(fsops.New(sb)).Definitions()
}

// sampleTranscript covers every role, a malformed tool call, and a nudge
// directly after a tool observation.
func sampleTranscript() []memory.Message {
	return []memory.Message{
		memory.SystemMessage("be careful"),
		memory.UserMessage("summarize a.txt"),
		memory.AssistantMessage("", memory.ToolCall{ID: "c1", Name: "read_file", Arguments: `{bad`}),
		memory.ToolMessage("c1", "read_file", "observation"),
		memory.UserMessage("Please provide a clear answer or call a tool."),
	}
}

package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/fsagent/internal/provider"
	"github.com/petasbytes/fsagent/internal/windowing"
	"github.com/petasbytes/fsagent/memory"
)

func newAnthropic(rt http.RoundTripper) *provider.Anthropic {
	client := provider.NewAnthropicClient(
		option.WithHTTPClient(&http.Client{Transport: rt}),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	)
	return provider.NewAnthropic(client, "", 256)
}

const anthropicToolUseResponse = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-7-sonnet-latest",
	"content": [
		{"type": "text", "text": "Reading it now."},
		{"type": "tool_use", "id": "tu1", "name": "read_file", "input": {"file_path": "a.txt"}}
	],
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestAnthropic_ParsesTextAndToolUse(t *testing.T) {
	fake := &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUseResponse)}
	m := newAnthropic(fake)

	reply, err := m.Next(context.Background(), sampleTranscript(), toolDefs(t))
	require.NoError(t, err)
	require.Equal(t, memory.RoleAssistant, reply.Role)
	require.Equal(t, "Reading it now.", reply.Content)
	require.Len(t, reply.ToolCalls, 1)
	require.Equal(t, "tu1", reply.ToolCalls[0].ID)
	require.Equal(t, "read_file", reply.ToolCalls[0].Name)
	require.JSONEq(t, `{"file_path":"a.txt"}`, reply.ToolCalls[0].Arguments)
}

func TestAnthropic_RequestShape(t *testing.T) {
	fake := &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUseResponse)}
	m := newAnthropic(fake)

	_, err := m.Next(context.Background(), sampleTranscript(), toolDefs(t))
	require.NoError(t, err)

	type block struct {
		Type      string          `json:"type"`
		Text      string          `json:"text"`
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Input     json.RawMessage `json:"input"`
		ToolUseID string          `json:"tool_use_id"`
	}
	var body struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		System    []block
		Messages  []struct {
			Role    string  `json:"role"`
			Content []block `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema struct {
				Type       string         `json:"type"`
				Properties map[string]any `json:"properties"`
				Required   []string       `json:"required"`
				Additional *bool          `json:"additionalProperties"`
			} `json:"input_schema"`
		} `json:"tools"`
		ToolChoice struct {
			Type string `json:"type"`
		} `json:"tool_choice"`
	}
	require.NoError(t, json.Unmarshal(fake.lastBody(), &body), string(fake.lastBody()))

	require.Equal(t, string(provider.DefaultModel), body.Model)
	require.Equal(t, 256, body.MaxTokens)
	require.Len(t, body.System, 1)
	require.Equal(t, "be careful", body.System[0].Text)
	require.Equal(t, "auto", body.ToolChoice.Type)

	require.Len(t, body.Tools, 2)
	require.Equal(t, "read_file", body.Tools[0].Name)
	require.Equal(t, "object", body.Tools[0].InputSchema.Type)
	require.Contains(t, body.Tools[0].InputSchema.Properties, "file_path")
	require.Equal(t, []string{"file_path"}, body.Tools[0].InputSchema.Required)
	require.ElementsMatch(t, []string{"file_path", "content"}, body.Tools[1].InputSchema.Required)
	for _, tool := range body.Tools {
		require.NotNil(t, tool.InputSchema.Additional, "%s schema must be closed", tool.Name)
		require.False(t, *tool.InputSchema.Additional, "%s schema must be closed", tool.Name)
	}

	// user(task), assistant(tool_use), user(tool_result + nudge)
	require.Len(t, body.Messages, 3)
	require.Equal(t, "user", body.Messages[0].Role)
	require.Equal(t, "assistant", body.Messages[1].Role)
	require.Len(t, body.Messages[1].Content, 1)
	use := body.Messages[1].Content[0]
	require.Equal(t, "tool_use", use.Type)
	require.Equal(t, "c1", use.ID)
	require.JSONEq(t, `{}`, string(use.Input), "malformed arguments are sent as an empty object")

	require.Equal(t, "user", body.Messages[2].Role)
	require.Len(t, body.Messages[2].Content, 2)
	require.Equal(t, "tool_result", body.Messages[2].Content[0].Type)
	require.Equal(t, "c1", body.Messages[2].Content[0].ToolUseID)
	require.Equal(t, "text", body.Messages[2].Content[1].Type)
}

func TestAnthropic_HTTPErrorIsReturned(t *testing.T) {
	fake := &fakeTransport{
		respStatus: 500,
		respBody:   []byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`),
	}
	m := newAnthropic(fake)

	_, err := m.Next(context.Background(), sampleTranscript(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "anthropic:")
	require.Equal(t, 1, fake.calls(), "no retries")
}

func TestAnthropic_WindowedTranscriptOpensWithTask(t *testing.T) {
	fake := &fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUseResponse)}
	m := newAnthropic(fake)

	msgs := []memory.Message{
		memory.SystemMessage("sys"),
		memory.UserMessage("the task"),
		memory.AssistantMessage("", memory.ToolCall{ID: "c1", Name: "read_file", Arguments: `{"file_path":"a.txt"}`}),
		memory.ToolMessage("c1", "read_file", "x"),
		memory.AssistantMessage("", memory.ToolCall{ID: "c2", Name: "read_file", Arguments: `{"file_path":"a.txt"}`}),
		memory.ToolMessage("c2", "read_file", "x"),
	}
	window, stats := windowing.PrepareSendWindow(msgs, 45, windowing.HeuristicCounter{})
	require.Equal(t, 1, stats.SkippedGroups)

	_, err := m.Next(context.Background(), window, nil)
	require.NoError(t, err)

	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(fake.lastBody(), &body))
	require.NotEmpty(t, body.Messages)
	require.Equal(t, "user", body.Messages[0].Role)
	require.Equal(t, "the task", body.Messages[0].Content[0].Text)
}

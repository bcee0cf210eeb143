// Package modeltest provides a deterministic runner.Model for tests.
package modeltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/petasbytes/fsagent/internal/runner"
	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

// Response configures one model turn in a scripted sequence.
type Response struct {
	Message memory.Message
	Err     error
}

// Text is a scripted plain-text reply.
func Text(s string) Response {
	return Response{Message: memory.AssistantMessage(s)}
}

// Calls is a scripted reply requesting the given tool calls.
func Calls(calls ...memory.ToolCall) Response {
	return Response{Message: memory.AssistantMessage("", calls...)}
}

// Fail is a scripted request failure.
func Fail(err error) Response {
	return Response{Err: err}
}

// Request records what the runner sent on one turn.
type Request struct {
	Messages []memory.Message
	Tools    []string
}

// ScriptedModel replays responses in order and records every request.
type ScriptedModel struct {
	mu        sync.Mutex
	index     int
	responses []Response
	requests  []Request
}

func NewScriptedModel(responses ...Response) *ScriptedModel {
	cloned := make([]Response, len(responses))
	copy(cloned, responses)
	return &ScriptedModel{responses: cloned}
}

var _ runner.Model = (*ScriptedModel)(nil)

func (m *ScriptedModel) Next(_ context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	m.requests = append(m.requests, Request{Messages: memory.Clone(msgs), Tools: names})

	if m.index >= len(m.responses) {
		return memory.Message{}, fmt.Errorf("script exhausted at step %d", m.index+1)
	}
	current := m.responses[m.index]
	m.index++
	if current.Err != nil {
		return memory.Message{}, current.Err
	}
	msg := memory.Clone([]memory.Message{current.Message})[0]
	if msg.Role == "" {
		msg.Role = memory.RoleAssistant
	}
	return msg, nil
}

// Requests returns the requests received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

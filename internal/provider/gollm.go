package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/utils"

	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

// gollmToolProtocol is appended to the system prompt. gollm's Generate only
// returns text, so tool calls come back as a JSON array in the reply.
const gollmToolProtocol = `To call tools, reply with only a JSON array such as ` +
	`[{"name": "read_file", "arguments": {"file_path": "notes.txt"}}]. ` +
	`Otherwise reply with plain text.`

// Gollm adapts any gollm backend to the runner's model seam by flattening the
// transcript into a single prompt.
type Gollm struct {
	backend  string
	generate func(ctx context.Context, p *gollm.Prompt) (string, error)
}

// NewGollm builds a gollm LLM for backend (for example "openai", "groq" or "ollama").
func NewGollm(backend, apiKey, model string, maxTokens int) (*Gollm, error) {
	opts := []gollm.ConfigOption{
		gollm.SetProvider(backend),
		gollm.SetMaxTokens(maxTokens),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if model != "" {
		opts = append(opts, gollm.SetModel(model))
	}
	if apiKey != "" {
		opts = append(opts, gollm.SetAPIKey(apiKey))
	}
	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("gollm: create %s client: %w", backend, err)
	}
	return NewGollmFromLLM(backend, llm), nil
}

// NewGollmFromLLM wraps an existing gollm.LLM.
func NewGollmFromLLM(backend string, llm gollm.LLM) *Gollm {
	return &Gollm{
		backend: backend,
		generate: func(ctx context.Context, p *gollm.Prompt) (string, error) {
			return llm.Generate(ctx, p)
		},
	}
}

// Next renders the transcript as a prompt and parses tool calls out of the reply.
func (g *Gollm) Next(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error) {
	text, err := g.generate(ctx, gollmPrompt(msgs, defs))
	if err != nil {
		return memory.Message{}, fmt.Errorf("gollm %s: %w", g.backend, err)
	}
	content, calls := parseGollmToolCalls(text)
	return memory.AssistantMessage(content, calls...), nil
}

func gollmPrompt(msgs []memory.Message, defs []tools.ToolDefinition) *gollm.Prompt {
	var (
		system []string
		parts  []string
	)
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			system = append(system, m.Content)
		case memory.RoleUser:
			parts = append(parts, m.Content)
		case memory.RoleAssistant:
			if m.Content != "" {
				parts = append(parts, "[Assistant]: "+m.Content)
			}
			for _, c := range m.ToolCalls {
				parts = append(parts, fmt.Sprintf("[Tool Call %s]: %s %s", c.ID, c.Name, string(rawArguments(c.Arguments))))
			}
		case memory.RoleTool:
			parts = append(parts, fmt.Sprintf("[Tool Result %s]: %s", m.ToolCallID, m.Content))
		}
	}

	var opts []gollm.PromptOption
	if len(defs) > 0 {
		system = append(system, gollmToolProtocol)
		gt := make([]gollm.Tool, 0, len(defs))
		for _, d := range defs {
			gt = append(gt, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        d.Name,
					Description: d.Description,
					Parameters:  map[string]interface{}(d.InputSchema),
				},
			})
		}
		opts = append(opts, gollm.WithTools(gt), gollm.WithToolChoice("auto"))
	}
	if len(system) > 0 {
		opts = append(opts, gollm.WithSystemPrompt(strings.Join(system, "\n"), gollm.CacheTypeEphemeral))
	}
	return gollm.NewPrompt(strings.Join(parts, "\n"), opts...)
}

var (
	codeFence      = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*$\n?")
	toolArrayStart = regexp.MustCompile(`\[\s*\{\s*"(name|arguments)"`)
)

// gollmCall is one tool call as backends spell it. Keys may come in any order.
type gollmCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// parseGollmToolCalls separates tool calls from a reply. It understands
// gollm's <function_call> spans first, then a JSON array of calls, fenced or
// not. Anything it cannot parse is left in the text.
func parseGollmToolCalls(text string) (string, []memory.ToolCall) {
	if cleaned, spans, err := utils.CleanResponse(text); err == nil && len(spans) > 0 {
		var raw []gollmCall
		for _, span := range spans {
			var c gollmCall
			if json.Unmarshal([]byte(span), &c) != nil || c.Name == "" {
				continue
			}
			raw = append(raw, c)
		}
		if len(raw) > 0 {
			return strings.TrimSpace(cleaned), toolCalls(raw)
		}
	}

	unfenced := codeFence.ReplaceAllString(text, "")
	loc := toolArrayStart.FindStringIndex(unfenced)
	if loc == nil {
		return text, nil
	}
	start := loc[0]
	dec := json.NewDecoder(strings.NewReader(unfenced[start:]))
	var raw []gollmCall
	if err := dec.Decode(&raw); err != nil || len(raw) == 0 {
		return text, nil
	}
	for _, c := range raw {
		if c.Name == "" {
			return text, nil
		}
	}
	end := start + int(dec.InputOffset())
	rest := strings.TrimSpace(unfenced[:start] + unfenced[end:])
	return rest, toolCalls(raw)
}

func toolCalls(raw []gollmCall) []memory.ToolCall {
	calls := make([]memory.ToolCall, 0, len(raw))
	for _, r := range raw {
		args := string(r.Arguments)
		// Some backends encode arguments as a JSON string.
		var s string
		if json.Unmarshal(r.Arguments, &s) == nil {
			args = s
		}
		calls = append(calls, memory.ToolCall{
			ID:        "call_" + uuid.NewString()[:8],
			Name:      r.Name,
			Arguments: args,
		})
	}
	return calls
}

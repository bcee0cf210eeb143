package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest

// NewAnthropicClient returns a client. Without options the SDK reads
// ANTHROPIC_API_KEY from the environment.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic adapts the Messages API to the runner's model seam.
type Anthropic struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic wraps client. An empty model selects DefaultModel.
func NewAnthropic(client *anthropic.Client, model string, maxTokens int) *Anthropic {
	m := anthropic.Model(model)
	if model == "" {
		m = DefaultModel
	}
	return &Anthropic{client: client, model: m, maxTokens: int64(maxTokens)}
}

// Next sends the transcript with tool choice "auto" and returns the assistant reply.
func (a *Anthropic) Next(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error) {
	system, conv := anthropicMessages(msgs)
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  conv,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(defs) > 0 {
		params.Tools = anthropicTools(defs)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return memory.Message{}, fmt.Errorf("anthropic: %w", err)
	}

	var (
		text  []string
		calls []memory.ToolCall
	)
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, v.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, memory.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: v.JSON.Input.Raw(),
			})
		}
	}
	return memory.AssistantMessage(strings.Join(text, "\n"), calls...), nil
}

func anthropicTools(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Type:        "object",
				Properties:  d.InputSchema.Properties(),
				Required:    d.InputSchema.Required(),
				ExtraFields: schemaExtras(d.InputSchema),
			},
		}})
	}
	return out
}

// schemaExtras returns the schema keywords ToolInputSchemaParam has no field
// for, such as additionalProperties.
func schemaExtras(s tools.Schema) map[string]any {
	extra := make(map[string]any)
	for k, v := range s {
		switch k {
		case "type", "properties", "required":
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// anthropicMessages splits system text out of the transcript and folds tool
// observations into user turns. Consecutive messages that map to the same
// role are merged so the request alternates user and assistant.
func anthropicMessages(msgs []memory.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var (
		system []anthropic.TextBlockParam
		out    []anthropic.MessageParam
	)
	push := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		if role == anthropic.MessageParamRoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case memory.RoleUser:
			if m.Content != "" {
				push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
		case memory.RoleTool:
			push(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false))
		case memory.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, c := range m.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &anthropic.ToolUseBlockParam{
					ID:    c.ID,
					Name:  c.Name,
					Input: rawArguments(c.Arguments),
				}})
			}
			push(anthropic.MessageParamRoleAssistant, blocks...)
		}
	}
	return system, out
}

// rawArguments returns args as JSON, substituting an empty object when the
// model produced something unparseable.
func rawArguments(args string) json.RawMessage {
	if strings.TrimSpace(args) == "" || !json.Valid([]byte(args)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(args)
}

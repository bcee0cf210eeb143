package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/fsagent/internal/metrics"
	"github.com/petasbytes/fsagent/internal/telemetry"
	"github.com/petasbytes/fsagent/internal/windowing"
	"github.com/petasbytes/fsagent/memory"
	"github.com/petasbytes/fsagent/tools"
)

const (
	DefaultMaxTurns = 8

	// NudgeMessage is appended when the model replies with neither text nor tool calls.
	NudgeMessage = "Please provide a clear answer or call a tool."

	// StoppedMessage is the answer reported when the turn budget runs out.
	StoppedMessage = "Stopped: max_turns reached without a final answer."
)

// DefaultSystemPrompt opens every transcript unless replaced with WithSystemPrompt.
const DefaultSystemPrompt = "You are a careful assistant that can use tools to read and write files.\n" +
	"- If a task involves files, call the appropriate tool with precise arguments.\n" +
	"- After tool calls, summarize results for the user.\n" +
	"- Only write files when explicitly asked or when necessary to complete the task.\n" +
	"- If something is ambiguous (e.g., missing path), ask a concise clarifying question."

// Model is the seam to a hosted language model. Next receives the messages to
// send and the tools on offer and returns the assistant reply.
type Model interface {
	Next(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (memory.Message, error)
}

// Runner owns the turn loop for one model and one tool registry.
type Runner struct {
	model       Model
	registry    *tools.Registry
	maxTurns    int
	system      string
	tokenBudget int
	counter     windowing.TokenCounter
	logger      *slog.Logger
	sink        *telemetry.Sink
}

// Option configures a Runner.
type Option func(*Runner)

// WithMaxTurns caps the number of model requests per run. Values <= 0 are ignored.
func WithMaxTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

func WithSystemPrompt(s string) Option {
	return func(r *Runner) { r.system = s }
}

// WithTokenBudget limits each request to the newest whole message groups that
// fit budget estimated tokens. Zero sends the full transcript.
func WithTokenBudget(budget int) Option {
	return func(r *Runner) { r.tokenBudget = budget }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTelemetry sends run events to sink. A nil sink disables them.
func WithTelemetry(sink *telemetry.Sink) Option {
	return func(r *Runner) { r.sink = sink }
}

// New returns a Runner using model and the tools in registry.
func New(model Model, registry *tools.Registry, opts ...Option) *Runner {
	r := &Runner{
		model:    model,
		registry: registry,
		maxTurns: DefaultMaxTurns,
		system:   DefaultSystemPrompt,
		counter:  windowing.HeuristicCounter{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the outcome of a run.
type Result struct {
	// Answer is the trimmed final text, or StoppedMessage when Stopped.
	Answer     string
	Turns      int
	Stopped    bool
	Transcript []memory.Message
}

// Run executes the loop for task. It returns an error only when the model
// request fails; tool failures become observations the model can react to.
// The partial transcript is returned alongside any error.
func (r *Runner) Run(ctx context.Context, task string) (Result, error) {
	runID := telemetry.NewTurnID()
	ctx = telemetry.WithTurnID(ctx, runID)
	r.sink.EmitRunStarted(ctx, task, r.maxTurns)

	transcript := []memory.Message{
		memory.SystemMessage(r.system),
		memory.UserMessage(task),
	}
	defs := r.registry.Definitions()

	res := Result{}
	finish := func(outcome string) {
		res.Transcript = transcript
		r.sink.Emit("run_finished", map[string]any{
			"turn_id": runID,
			"turns":   res.Turns,
			"outcome": outcome,
		})
	}

	for turn := 1; turn <= r.maxTurns; turn++ {
		res.Turns = turn
		reply, err := r.step(ctx, turn, transcript, defs)
		if err != nil {
			finish("error")
			return res, fmt.Errorf("runner: model turn %d: %w", turn, err)
		}
		reply.Role = memory.RoleAssistant

		if len(reply.ToolCalls) > 0 {
			reply = withCallIDs(reply)
			transcript = append(transcript, reply)
			for _, call := range reply.ToolCalls {
				observation := r.execTool(ctx, call)
				transcript = append(transcript, memory.ToolMessage(call.ID, call.Name, observation))
			}
			continue
		}

		if reply.Content != "" {
			transcript = append(transcript, reply)
			res.Answer = strings.TrimSpace(reply.Content)
			finish("answer")
			return res, nil
		}

		r.logger.Debug("empty model reply; nudging", "turn", turn)
		transcript = append(transcript, memory.UserMessage(NudgeMessage))
	}

	res.Answer = StoppedMessage
	res.Stopped = true
	finish("stopped")
	return res, nil
}

// step prepares the window for one turn and asks the model for a reply.
func (r *Runner) step(ctx context.Context, turn int, transcript []memory.Message, defs []tools.ToolDefinition) (memory.Message, error) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	window := transcript
	if r.tokenBudget > 0 {
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(transcript, r.tokenBudget, r.counter)
		r.sink.Emit("window_prepared", map[string]any{
			"turn_id":            turnID,
			"turn":               turn,
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		r.logger.Debug("window prepared",
			"turn", turn,
			"budget", stats.Budget,
			"est_total", stats.Total,
			"groups_in", stats.IncludedGroups,
			"groups_skip", stats.SkippedGroups,
		)
		// The newest group carries the latest observations; sending without it
		// would hide them from the model.
		if stats.OverBudgetNewest {
			return memory.Message{}, fmt.Errorf("windowing: newest group exceeds token budget %d", r.tokenBudget)
		}
	}

	r.logger.Debug("model request", "turn", turn, "messages", len(window))
	start := time.Now()
	reply, err := r.model.Next(ctx, memory.Clone(window), defs)
	if err != nil {
		return memory.Message{}, err
	}

	r.sink.Emit("model_turn", map[string]any{
		"turn_id":     turnID,
		"turn":        turn,
		"duration_ms": time.Since(start).Milliseconds(),
		"tool_calls":  len(reply.ToolCalls),
		"text":        metrics.CountFeatures(reply.Content).Fields(),
	})
	return reply, nil
}

// withCallIDs assigns ids to tool calls that arrived without one so every
// observation can be paired with its call.
func withCallIDs(m memory.Message) memory.Message {
	calls := make([]memory.ToolCall, len(m.ToolCalls))
	for i, c := range m.ToolCalls {
		if c.ID == "" {
			c.ID = "call_" + uuid.NewString()[:8]
		}
		calls[i] = c
	}
	m.ToolCalls = calls
	return m
}

// execTool runs one call and renders the outcome as an observation string.
// It never fails: every error is described to the model instead.
func (r *Runner) execTool(ctx context.Context, call memory.ToolCall) string {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	args := parseArguments(call.Arguments)

	start := time.Now()
	out, err := r.registry.Execute(ctx, call.Name, args)
	elapsed := time.Since(start)

	var (
		observation string
		errClass    any
		argErr      *tools.ArgumentError
	)
	switch {
	case err == nil:
		observation = out
	case errors.Is(err, tools.ErrUnknownTool):
		observation = fmt.Sprintf("Error: unknown tool '%s'.", call.Name)
		errClass = "unknown_tool"
	case errors.As(err, &argErr):
		observation = fmt.Sprintf("Error calling '%s' with args %s: %v", call.Name, string(args), argErr.Err)
		errClass = "invalid_arguments"
	default:
		observation = fmt.Sprintf("Tool '%s' failed: %v", call.Name, err)
		errClass = "tool_error"
	}

	// Sizes only; arguments and outputs may contain file contents.
	r.sink.Emit("tool_exec", map[string]any{
		"turn_id":     turnID,
		"tool_name":   call.Name,
		"duration_ms": elapsed.Milliseconds(),
		"input_size":  len(args),
		"output_size": len(out),
		"error":       errClass,
	})
	r.logger.Debug("tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"duration", elapsed,
		"error", errClass,
	)
	return observation
}

// parseArguments returns the call's arguments as compact JSON. Missing or
// malformed arguments become an empty object.
func parseArguments(raw string) json.RawMessage {
	var buf bytes.Buffer
	if strings.TrimSpace(raw) == "" || json.Compact(&buf, []byte(raw)) != nil {
		return json.RawMessage(`{}`)
	}
	return buf.Bytes()
}

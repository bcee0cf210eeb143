package telemetry

import (
	"context"

	"github.com/petasbytes/fsagent/internal/metrics"
)

// EmitRunStarted records size features of the task text, never the text itself.
func (s *Sink) EmitRunStarted(ctx context.Context, task string, maxTurns int) {
	if s == nil {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	s.Emit("run_started", map[string]any{
		"turn_id":          turnID,
		"max_turns":        maxTurns,
		"features_version": "1",
		"task":             metrics.CountFeatures(task).Fields(),
	})
}

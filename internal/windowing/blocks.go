// Package windowing trims a transcript to a token budget without separating
// tool calls from their results.
package windowing

import "github.com/petasbytes/fsagent/memory"

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupToolExchange
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupMessages groups messages into atomic units that preserve tool exchanges.
// Invariants:
//   - An exchange is an assistant message with tool calls followed immediately by
//     one tool message per call, and nothing else.
//   - Every call id must be answered and no tool message may answer an id the
//     assistant did not issue. Incomplete exchanges degrade to singletons.
func GroupMessages(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if end, ok := exchangeEnd(msgs, i); ok {
			groups = append(groups, Group{Kind: GroupToolExchange, Start: i, End: end})
			i = end
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// exchangeEnd reports the exclusive end of a complete tool exchange starting at i.
func exchangeEnd(msgs []memory.Message, i int) (int, bool) {
	m := msgs[i]
	if m.Role != memory.RoleAssistant || len(m.ToolCalls) == 0 {
		return 0, false
	}
	pending := make(map[string]struct{}, len(m.ToolCalls))
	for _, tc := range m.ToolCalls {
		pending[tc.ID] = struct{}{}
	}
	j := i + 1
	for ; j < len(msgs) && msgs[j].Role == memory.RoleTool; j++ {
		if _, ok := pending[msgs[j].ToolCallID]; !ok {
			return 0, false
		}
		delete(pending, msgs[j].ToolCallID)
	}
	if len(pending) > 0 {
		return 0, false
	}
	return j, true
}

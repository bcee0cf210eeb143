package windowing

import "github.com/petasbytes/fsagent/memory"

// Stats summarizes the result of window preparation.
//
// Fields:
//   - Total: estimated tokens for included groups only (pinned messages excluded).
//   - Budget: the input token budget used.
//   - Pinned: number of leading messages always sent (system prompt and task).
//   - IncludedGroups: number of groups included.
//   - SkippedGroups: total groups minus IncludedGroups.
//   - OverBudgetNewest: true when the newest single group alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	Pinned           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the messages to send for one model turn: the
// pinned prefix followed by the newest whole groups that fit within budget
// using the TokenCounter.
//
// Rules:
//   - Leading system messages and the first user message after them (the task)
//     are pinned and do not count against budget.
//   - Include whole groups scanning newest→oldest while total ≤ budget.
//   - If the newest group alone exceeds budget, return only the pinned prefix and set OverBudgetNewest.
//   - If budget ≤ 0, nothing but the pinned prefix fits (OverBudgetNewest set when any groups exist).
func PrepareSendWindow(msgs []memory.Message, budget int, c TokenCounter) ([]memory.Message, Stats) {
	pinned := pinnedPrefix(msgs)
	head, rest := msgs[:pinned:pinned], msgs[pinned:]
	stats := Stats{Budget: budget, Pinned: pinned}

	groups := GroupMessages(rest)
	if len(groups) == 0 {
		return head, stats
	}
	if budget <= 0 {
		stats.SkippedGroups = len(groups)
		stats.OverBudgetNewest = true
		return head, stats
	}

	startIdx := len(groups) // exclusive sentinel; lowered as groups are included
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], rest)
		if stats.IncludedGroups == 0 && cost > budget {
			stats.SkippedGroups = len(groups)
			stats.OverBudgetNewest = true
			return head, stats
		}
		if stats.Total+cost > budget {
			break
		}
		stats.Total += cost
		stats.IncludedGroups++
		startIdx = gi
	}
	stats.SkippedGroups = len(groups) - stats.IncludedGroups

	window := make([]memory.Message, 0, pinned+len(rest)-groups[startIdx].Start)
	window = append(window, head...)
	window = append(window, rest[groups[startIdx].Start:]...)
	return window, stats
}

// pinnedPrefix counts leading system messages plus the user message that
// directly follows them. The window therefore always opens with the task.
func pinnedPrefix(msgs []memory.Message) int {
	n := 0
	for n < len(msgs) && msgs[n].Role == memory.RoleSystem {
		n++
	}
	if n < len(msgs) && msgs[n].Role == memory.RoleUser {
		n++
	}
	return n
}

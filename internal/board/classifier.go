package board

import (
	"strings"

	"github.com/clientview/boardd/internal/tracker"
)

// rule maps a workflow state to a column. A state matches when its
// lowercased name contains any of the substrings, or (for the canceled
// rule only) when its type equals stateType.
type rule struct {
	column    Column
	substrs   []string
	stateType tracker.StateType
}

// classifyRules is evaluated top to bottom, first match wins. Order
// matters: "Client Review" states carry type=completed in the tracker,
// so the pending-review rule must run before anything keyed off
// approval wording, and there is deliberately no type-based catch-all.
// A state no rule matches is excluded from the board, not guessed at.
var classifyRules = []rule{
	{column: ColumnReleased, substrs: []string{"shipped", "released", "live", "deployed"}},
	{column: ColumnPendingReview, substrs: []string{"client review", "client-review"}},
	{column: ColumnArchived, substrs: []string{"duplicate", "rejected", "failed"}},
	{column: ColumnCanceled, substrs: []string{"canceled", "cancelled"}, stateType: tracker.StateTypeCanceled},
	{column: ColumnApproved, substrs: []string{"release ready", "ready for release", "ready to release", "approved"}},
	{column: ColumnBlocked, substrs: []string{"blocked", "waiting", "hold", "paused"}},
}

// Classify maps a workflow state to its board column. The second return
// is false when no rule matches; the caller must then drop the issue
// from every column. Absence of a match is a normal outcome, not an
// error, and Classify itself cannot fail.
func Classify(state tracker.WorkflowState) (Column, bool) {
	name := strings.ToLower(state.Name)
	for _, r := range classifyRules {
		if r.stateType != "" && state.Type == r.stateType {
			return r.column, true
		}
		for _, sub := range r.substrs {
			if strings.Contains(name, sub) {
				return r.column, true
			}
		}
	}
	return "", false
}

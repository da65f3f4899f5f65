// Package tracker defines the boundary with the external ticket-tracking
// system: the issue and workflow-state snapshots it hands us, and the
// Fetcher interface the rest of the engine consumes them through.
package tracker

import "context"

// StateType is the closed set of workflow-state categories the external
// system reports. It is metadata only; classification keys off state
// names, consulting the type solely for the canceled rule.
type StateType string

const (
	StateTypeBacklog   StateType = "backlog"
	StateTypeUnstarted StateType = "unstarted"
	StateTypeStarted   StateType = "started"
	StateTypeCompleted StateType = "completed"
	StateTypeCanceled  StateType = "canceled"
)

// WorkflowState is an immutable snapshot of a tracker workflow state.
// Never mutated locally; a refetch replaces the whole value.
type WorkflowState struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     StateType `json:"type"`
	Position float64   `json:"position"`
}

// HierarchyLevel is one depth level of a pre-computed hierarchy
// breakdown. The engine passes these through untouched.
type HierarchyLevel struct {
	Depth        int            `json:"depth"`
	CountByState map[string]int `json:"countByState"`
}

// Issue is a ticket snapshot from the external system.
//
// SubIssueCount is the source-authoritative number of direct children.
// It must be trusted over the length of any locally held child list,
// which upstream filtering may have truncated.
type Issue struct {
	ID         string        `json:"id"`
	Identifier string        `json:"identifier"`
	Title      string        `json:"title"`
	State      WorkflowState `json:"state"`

	// ParentID is non-empty for sub-issues. Sub-issues never appear
	// directly on the board; they are represented only via counters.
	ParentID string `json:"parentId,omitempty"`

	SubIssueCount int `json:"subIssueCount"`

	// HierarchyBreakdown is opaque to the engine beyond pass-through.
	HierarchyBreakdown []HierarchyLevel `json:"hierarchyBreakdown,omitempty"`
}

// IsRoot reports whether the issue is a top-level issue.
func (i Issue) IsRoot() bool {
	return i.ParentID == ""
}

// Fetcher retrieves raw board data for a team scope. Implementations
// perform network I/O and must honor ctx cancellation.
type Fetcher interface {
	Issues(ctx context.Context, teamID string) ([]Issue, error)
	WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error)
}

package board

import (
	"go.uber.org/zap"

	"github.com/clientview/boardd/internal/tracker"
)

// ColumnShare is one column's slice of the distribution report.
type ColumnShare struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// DistributionReport describes how classified issues spread across
// columns, plus how many states fell through every rule. It exists for
// observability and debugging only; nothing downstream depends on it
// for correctness.
type DistributionReport struct {
	Placed  int                    `json:"placed"`
	Skipped int                    `json:"skipped"`
	Shares  map[Column]ColumnShare `json:"shares"`
}

// View is the assembled board handed to the rendering collaborator.
type View struct {
	IssuesByColumn   map[Column][]tracker.Issue `json:"issuesByColumn"`
	CountersByColumn map[Column]Counters        `json:"countersByColumn"`
	Distribution     DistributionReport         `json:"distribution"`
}

// Assembler builds board views. The logger is optional and used only to
// record skipped states at debug level.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler creates an Assembler. A nil logger disables skip logging.
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger}
}

// Assemble builds the board view from raw tracker data. It is a pure
// transform: no I/O, no mutation of its inputs.
//
// Sub-issues (non-empty ParentID) never appear on the board directly;
// they surface only through the counters. An issue whose state matches
// no classification rule is dropped entirely and tallied in the
// distribution report's skip count.
func (a *Assembler) Assemble(issues []tracker.Issue, states []tracker.WorkflowState) View {
	// Index states by ID so issues carrying a stale embedded snapshot
	// still classify against the current state definition.
	stateByID := make(map[string]tracker.WorkflowState, len(states))
	for _, s := range states {
		stateByID[s.ID] = s
	}

	byColumn := make(map[Column][]tracker.Issue, len(Columns))
	placed := 0
	skipped := 0

	for _, issue := range issues {
		if !issue.IsRoot() {
			continue
		}

		state := issue.State
		if current, ok := stateByID[state.ID]; ok {
			state = current
		}

		col, ok := Classify(state)
		if !ok {
			skipped++
			a.logger.Debug("state matched no board column",
				zap.String("issue", issue.Identifier),
				zap.String("state", state.Name),
				zap.String("state_type", string(state.Type)),
			)
			continue
		}

		byColumn[col] = append(byColumn[col], issue)
		placed++
	}

	return View{
		IssuesByColumn:   byColumn,
		CountersByColumn: Aggregate(byColumn),
		Distribution:     buildDistribution(byColumn, placed, skipped),
	}
}

func buildDistribution(byColumn map[Column][]tracker.Issue, placed, skipped int) DistributionReport {
	shares := make(map[Column]ColumnShare, len(Columns))
	for _, col := range Columns {
		n := len(byColumn[col])
		share := ColumnShare{Count: n}
		if placed > 0 {
			share.Percent = float64(n) / float64(placed) * 100
		}
		shares[col] = share
	}
	return DistributionReport{
		Placed:  placed,
		Skipped: skipped,
		Shares:  shares,
	}
}

package board

import "github.com/clientview/boardd/internal/tracker"

// Counters holds the per-column issue counts shown in column headers.
type Counters struct {
	// Parents is the number of top-level issues in the column.
	Parents int `json:"parents"`
	// SubIssues is the sum of the source-authoritative direct-child
	// counts over the column's issues.
	SubIssues int `json:"subIssues"`
	// Total is always Parents + SubIssues at classification time.
	Total int `json:"total"`
}

// Aggregate computes per-column counters from already-grouped issues.
//
// Every issue in byColumn is a root issue (sub-issues are filtered out
// before grouping), so each contributes 1 to Parents. SubIssues comes
// from Issue.SubIssueCount, never from counting a locally held child
// slice: upstream label and state filtering may have truncated that
// slice, and the authoritative count must survive the truncation.
func Aggregate(byColumn map[Column][]tracker.Issue) map[Column]Counters {
	counters := make(map[Column]Counters, len(Columns))
	for _, col := range Columns {
		c := Counters{}
		for _, issue := range byColumn[col] {
			c.Parents++
			c.SubIssues += issue.SubIssueCount
		}
		c.Total = c.Parents + c.SubIssues
		counters[col] = c
	}
	return counters
}

package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clientview/boardd/internal/tracker"
)

func TestAggregate_CountsParentsAndSubIssues(t *testing.T) {
	byColumn := map[Column][]tracker.Issue{
		ColumnPendingReview: {
			{ID: "1", Identifier: "ENG-1", SubIssueCount: 2},
			{ID: "2", Identifier: "ENG-2", SubIssueCount: 0},
			{ID: "3", Identifier: "ENG-3", SubIssueCount: 5},
		},
	}

	counters := Aggregate(byColumn)

	pr := counters[ColumnPendingReview]
	assert.Equal(t, 3, pr.Parents)
	assert.Equal(t, 7, pr.SubIssues)
	assert.Equal(t, 10, pr.Total)
}

func TestAggregate_EmptyColumnsAreZero(t *testing.T) {
	counters := Aggregate(map[Column][]tracker.Issue{})

	// Every column gets an explicit zero counter, not an absent key.
	assert.Len(t, counters, len(Columns))
	for _, col := range Columns {
		c := counters[col]
		assert.Zero(t, c.Parents)
		assert.Zero(t, c.SubIssues)
		assert.Zero(t, c.Total)
	}
}

// An issue whose local child list was filtered away upstream must still
// count its authoritative SubIssueCount.
func TestAggregate_TrustsAuthoritativeSubIssueCount(t *testing.T) {
	byColumn := map[Column][]tracker.Issue{
		ColumnApproved: {
			// SubIssueCount > 0 with no fetched children is valid.
			{ID: "1", Identifier: "ENG-10", SubIssueCount: 4},
		},
	}

	counters := Aggregate(byColumn)
	assert.Equal(t, 4, counters[ColumnApproved].SubIssues)
	assert.Equal(t, 5, counters[ColumnApproved].Total)
}

func TestAggregate_TotalIdentity(t *testing.T) {
	byColumn := map[Column][]tracker.Issue{
		ColumnBlocked: {
			{ID: "1", SubIssueCount: 3},
			{ID: "2", SubIssueCount: 1},
		},
		ColumnReleased: {
			{ID: "3", SubIssueCount: 0},
		},
	}

	counters := Aggregate(byColumn)
	for col, c := range counters {
		assert.Equal(t, c.Parents+c.SubIssues, c.Total, "column %s", col)
	}
}

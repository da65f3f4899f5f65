// Package board classifies tracker issues into the fixed set of
// client-visible kanban columns, aggregates parent/sub-issue counts per
// column, and assembles the column-keyed view the presentation layer
// renders. Everything in this package is a pure in-memory transform;
// all fetching and caching happens in the caller.
package board

// Column is one of the six fixed client-visible board columns.
type Column string

const (
	ColumnPendingReview Column = "pending-review"
	ColumnBlocked       Column = "blocked"
	ColumnApproved      Column = "approved"
	ColumnReleased      Column = "released"
	ColumnCanceled      Column = "canceled"
	ColumnArchived      Column = "archived"
)

// Columns lists every board column in display order.
var Columns = []Column{
	ColumnPendingReview,
	ColumnBlocked,
	ColumnApproved,
	ColumnReleased,
	ColumnCanceled,
	ColumnArchived,
}

// ColumnConfig is the static presentation and capability record for a
// column. This is configuration data, not derived state.
type ColumnConfig struct {
	ID          Column `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`

	// AllowIssueCreation permits creating new issues directly in this
	// column from the board UI.
	AllowIssueCreation bool `json:"allowIssueCreation"`
	// AllowApproval permits the approve / request-changes actions on
	// issues in this column.
	AllowApproval bool `json:"allowApproval"`
}

var columnConfigs = map[Column]ColumnConfig{
	ColumnPendingReview: {
		ID:                 ColumnPendingReview,
		Title:              "Pending Review",
		Description:        "Work delivered and awaiting your review",
		Color:              "#f2c94c",
		AllowIssueCreation: true,
		AllowApproval:      true,
	},
	ColumnBlocked: {
		ID:          ColumnBlocked,
		Title:       "Blocked",
		Description: "Work paused or waiting on input",
		Color:       "#eb5757",
	},
	ColumnApproved: {
		ID:            ColumnApproved,
		Title:         "Approved",
		Description:   "Reviewed and ready for release",
		Color:         "#27ae60",
		AllowApproval: true,
	},
	ColumnReleased: {
		ID:          ColumnReleased,
		Title:       "Released",
		Description: "Shipped and live",
		Color:       "#2f80ed",
	},
	ColumnCanceled: {
		ID:          ColumnCanceled,
		Title:       "Canceled",
		Description: "Work that was called off",
		Color:       "#828282",
	},
	ColumnArchived: {
		ID:          ColumnArchived,
		Title:       "Archived",
		Description: "Duplicates, rejections, and failed work",
		Color:       "#4f4f4f",
	},
}

// Config returns the static configuration record for a column.
func (c Column) Config() ColumnConfig {
	return columnConfigs[c]
}

// Valid reports whether c is one of the six board columns.
func (c Column) Valid() bool {
	_, ok := columnConfigs[c]
	return ok
}

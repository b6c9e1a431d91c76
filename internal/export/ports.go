// Package export defines the outbound interface for pushing expense
// records to an external service, plus its Google Sheets implementation.
package export

import (
	"context"

	"spendwise/internal/core"
)

// ExpenseWriter appends one expense to the export target and returns an
// opaque reference to the written record.
type ExpenseWriter interface {
	Append(ctx context.Context, e core.Expense) (string, error)
}

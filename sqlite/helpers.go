package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseRFC3339 parses a timestamp stored by formatTime.
// Returns an error naming the column if parsing fails.
func parseRFC3339(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder.
// SQLite only accepts OFFSET after a LIMIT, so an offset alone uses LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit <= 0 && offset <= 0 {
		return
	}
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" LIMIT ?")
	*args = append(*args, limit)
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

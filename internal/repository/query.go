package repository

import (
	"strings"
	"time"
)

// buildRangeQuery appends an inclusive [from, to] filter on column plus any
// extra conditions to base. Zero times leave that side open.
func buildRangeQuery(base, column string, from, to time.Time, extra map[string]any) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, column+" >= ?")
		args = append(args, formatTS(from))
	}
	if !to.IsZero() {
		conds = append(conds, column+" <= ?")
		args = append(args, formatTS(to))
	}
	for cond, arg := range extra {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	q := base
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	return q, args
}

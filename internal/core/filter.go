package core

import (
	"fmt"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// listFilter accumulates parameterized WHERE predicates and pagination for
// list queries. Every value travels as a bind argument; predicates never
// interpolate user input into SQL text.
type listFilter struct {
	conds []string
	args  []any
}

// where appends a predicate. expr must contain exactly one %d placeholder
// for the bind-argument position.
func (f *listFilter) where(expr string, value any) {
	f.args = append(f.args, value)
	f.conds = append(f.conds, fmt.Sprintf(expr, len(f.args)))
}

func (f *listFilter) equal(column string, value any) {
	f.where(column+" = $%d", value)
}

func (f *listFilter) atLeast(column string, value any) {
	f.where(column+" >= $%d", value)
}

// match adds a case-insensitive substring predicate.
func (f *listFilter) match(column, pattern string) {
	f.where(column+" ILIKE $%d", "%"+pattern+"%")
}

// clause renders the accumulated predicates, or an empty string when none
// were added.
func (f *listFilter) clause() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// paginate renders LIMIT/OFFSET for a 1-based page, normalizing out-of-range
// values to the defaults.
func (f *listFilter) paginate(page, limit int) string {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	f.args = append(f.args, limit)
	out := fmt.Sprintf(" LIMIT $%d", len(f.args))
	f.args = append(f.args, (page-1)*limit)
	return out + fmt.Sprintf(" OFFSET $%d", len(f.args))
}

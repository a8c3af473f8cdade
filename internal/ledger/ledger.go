// internal/ledger/ledger.go
// CounterLedger: the only code path that mutates denormalized counters
// (likes_count, comments_count, shares_count). Every call runs against the
// caller's transaction and must be paired 1:1 with the insert or delete of
// the row it accounts for; callers skip the call when the paired row
// mutation did not happen (e.g. a duplicate like suppressed by the unique
// constraint).

package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counter identifies one whitelisted counter column. The closed set keeps
// table and column names out of caller-supplied input.
type Counter struct {
	table  string
	column string
}

var (
	PostLikes    = Counter{table: "inspirations", column: "likes_count"}
	PostComments = Counter{table: "inspirations", column: "comments_count"}
	PostShares   = Counter{table: "inspirations", column: "shares_count"}
	CommentLikes = Counter{table: "inspiration_comments", column: "likes_count"}
)

// Increment bumps the counter and returns the new value
func Increment(ctx context.Context, tx sqlx.ExtContext, c Counter, id int64) (int, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = %s + 1 WHERE id = $1 RETURNING %s`,
		c.table, c.column, c.column, c.column,
	)

	var count int
	if err := tx.QueryRowxContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("increment %s.%s: %w", c.table, c.column, err)
	}
	return count, nil
}

// Decrement lowers the counter, clamped at zero, and returns the new value
func Decrement(ctx context.Context, tx sqlx.ExtContext, c Counter, id int64) (int, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = GREATEST(%s - 1, 0) WHERE id = $1 RETURNING %s`,
		c.table, c.column, c.column, c.column,
	)

	var count int
	if err := tx.QueryRowxContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("decrement %s.%s: %w", c.table, c.column, err)
	}
	return count, nil
}

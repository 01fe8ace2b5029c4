package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	// NextCursorHeader carries the ?before value for the following page.
	// It is absent on the last page.
	NextCursorHeader = "X-Next-Cursor"
)

// Cursor is a keyset position: rows are ordered by (At, ID) descending, so
// rows sharing a timestamp still page deterministically.
type Cursor struct {
	At time.Time
	ID uint
}

func (c Cursor) String() string {
	return fmt.Sprintf("%s,%d", c.At.Format(time.RFC3339Nano), c.ID)
}

// ParseCursor accepts "<RFC3339Nano>,<id>" or a bare timestamp. A bare
// timestamp leaves ID zero and matches every row at that instant.
func ParseCursor(s string) (Cursor, error) {
	ts, id, hasID := strings.Cut(s, ",")
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, err
	}
	cur := Cursor{At: at}
	if hasID {
		n, err := strconv.ParseUint(id, 10, 32)
		if err != nil {
			return Cursor{}, fmt.Errorf("cursor id: %w", err)
		}
		cur.ID = uint(n)
	}
	return cur, nil
}

// PaginationParams is a keyset page request: at most Limit rows strictly
// after Before in descending order.
type PaginationParams struct {
	Limit  int
	Before *Cursor
}

// ParsePagination reads ?limit and the ?before cursor. Bad values fall
// back to defaults rather than failing the request.
func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		p.Limit = min(l, MaxLimit)
	}
	if cur, err := ParseCursor(c.Query("before")); err == nil {
		p.Before = &cur
	}
	return p
}

// FetchSize is the row count to query: one extra row tells whether another
// page exists.
func (p PaginationParams) FetchSize() int {
	return p.Limit + 1
}

// cursorPage trims rows fetched with FetchSize to one page and returns the
// cursor of the last row kept, or "" when nothing follows.
func cursorPage[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		if limit > 0 {
			next = key(rows[len(rows)-1]).String()
		}
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, next
}

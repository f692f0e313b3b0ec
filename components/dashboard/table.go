package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ettle/strcase"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ItemsPerPage is the fixed activity table page size.
const ItemsPerPage = 5

// SortDirection orders table rows.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Sortable activity columns.
const (
	ColumnNone        = ""
	ColumnDate        = "date"
	ColumnActiveUsers = "activeUsers"
	ColumnNewUsers    = "newUsers"
	ColumnSessions    = "sessions"
)

var numericColumns = map[string]func(ActivityRecord) int{
	ColumnActiveUsers: func(r ActivityRecord) int { return r.ActiveUsers },
	ColumnNewUsers:    func(r ActivityRecord) int { return r.NewUsers },
	ColumnSessions:    func(r ActivityRecord) int { return r.Sessions },
}

var textColumns = map[string]func(ActivityRecord) string{
	ColumnDate: func(r ActivityRecord) string { return r.Date },
}

// SortState is the active column and direction.
type SortState struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// NormalizeSortColumn maps user supplied names (active_users, ActiveUsers) onto the
// activity field names.
func NormalizeSortColumn(column string) (string, error) {
	name := strcase.ToCamel(strings.TrimSpace(column))
	if _, ok := numericColumns[name]; ok {
		return name, nil
	}
	if _, ok := textColumns[name]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortColumn, column)
}

// TableState sorts and paginates the filtered activity collection. It is not safe
// for concurrent use; the coordinator serializes access.
type TableState struct {
	rows     []ActivityRecord
	sort     SortState
	page     int
	collator *collate.Collator
}

// NewTableState builds a table over rows starting on page 1, unsorted.
func NewTableState(rows []ActivityRecord) *TableState {
	return &TableState{
		rows:     append([]ActivityRecord{}, rows...),
		sort:     SortState{Direction: SortAscending},
		page:     1,
		collator: collate.New(language.English),
	}
}

// Reset swaps the row set, keeping the sort state and current page. The active sort is
// re-applied so the table stays ordered.
func (t *TableState) Reset(rows []ActivityRecord) {
	t.rows = append(t.rows[:0:0], rows...)
	if t.sort.Column != ColumnNone {
		t.apply()
	}
}

// Sort toggles the direction for the active column or switches to a new column
// ascending.
func (t *TableState) Sort(column string) error {
	name, err := NormalizeSortColumn(column)
	if err != nil {
		return err
	}
	if t.sort.Column == name {
		if t.sort.Direction == SortAscending {
			t.sort.Direction = SortDescending
		} else {
			t.sort.Direction = SortAscending
		}
	} else {
		t.sort = SortState{Column: name, Direction: SortAscending}
	}
	t.apply()
	return nil
}

// SortBy applies an explicit column and direction.
func (t *TableState) SortBy(column string, direction SortDirection) error {
	name, err := NormalizeSortColumn(column)
	if err != nil {
		return err
	}
	if direction != SortDescending {
		direction = SortAscending
	}
	t.sort = SortState{Column: name, Direction: direction}
	t.apply()
	return nil
}

func (t *TableState) apply() {
	desc := t.sort.Direction == SortDescending
	if value, ok := numericColumns[t.sort.Column]; ok {
		slices.SortStableFunc(t.rows, func(a, b ActivityRecord) int {
			cmp := value(a) - value(b)
			if desc {
				return -cmp
			}
			return cmp
		})
		return
	}
	if value, ok := textColumns[t.sort.Column]; ok {
		slices.SortStableFunc(t.rows, func(a, b ActivityRecord) int {
			cmp := t.collator.CompareString(value(a), value(b))
			if desc {
				return -cmp
			}
			return cmp
		})
	}
}

// SortState returns the active sort.
func (t *TableState) SortState() SortState { return t.sort }

// Rows returns every row in the current order.
func (t *TableState) Rows() []ActivityRecord {
	return append([]ActivityRecord{}, t.rows...)
}

// Len is the number of filtered rows.
func (t *TableState) Len() int { return len(t.rows) }

// TotalPages is ceil(rows / ItemsPerPage).
func (t *TableState) TotalPages() int {
	return (len(t.rows) + ItemsPerPage - 1) / ItemsPerPage
}

// CurrentPage returns the 1-based page.
func (t *TableState) CurrentPage() int { return t.page }

// Page returns the rows of a 1-based page. Out of range pages are empty.
func (t *TableState) Page(page int) []ActivityRecord {
	if page < 1 {
		return []ActivityRecord{}
	}
	start := (page - 1) * ItemsPerPage
	if start >= len(t.rows) {
		return []ActivityRecord{}
	}
	end := min(start+ItemsPerPage, len(t.rows))
	return append([]ActivityRecord{}, t.rows[start:end]...)
}

// Current returns the rows of the current page.
func (t *TableState) Current() []ActivityRecord { return t.Page(t.page) }

// Next advances one page; it is a no-op on the last page.
func (t *TableState) Next() {
	if t.page < t.TotalPages() {
		t.page++
	}
}

// Previous goes back one page; it is a no-op on the first page.
func (t *TableState) Previous() {
	if t.page > 1 {
		t.page--
	}
}

// GoTo clamps page into [1, TotalPages].
func (t *TableState) GoTo(page int) {
	t.page = max(1, min(page, t.TotalPages()))
}

// ResetPage moves back to page 1.
func (t *TableState) ResetPage() { t.page = 1 }

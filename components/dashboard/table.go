package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// TableRow is one changelist/report row with its visibility flag.
type TableRow struct {
	Cells  []string `json:"cells"`
	Hidden bool     `json:"hidden"`
}

// Text returns the row's text content used by Search.
func (r TableRow) Text() string {
	return strings.Join(r.Cells, " ")
}

// Table supports client-style column sort and row search.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
	locale  language.Tag
}

// NewTable builds an empty table with the given headers.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns, locale: language.Spanish}
}

// AddRow appends a visible row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, TableRow{Cells: cells})
}

// Search hides rows whose lowercase text does not contain the lowercase term.
// An empty term shows every row.
func (t *Table) Search(term string) {
	needle := strings.ToLower(strings.TrimSpace(term))
	for i := range t.Rows {
		t.Rows[i].Hidden = !strings.Contains(strings.ToLower(t.Rows[i].Text()), needle)
	}
}

// SortBy orders rows ascending by column. Cells that both parse as numbers
// compare numerically; everything else uses locale collation.
func (t *Table) SortBy(column int) {
	if column < 0 || column >= len(t.Columns) {
		return
	}
	col := collate.New(t.locale)
	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := cell(t.Rows[i], column), cell(t.Rows[j], column)
		an, aErr := strconv.ParseFloat(strings.TrimSpace(a), 64)
		bn, bErr := strconv.ParseFloat(strings.TrimSpace(b), 64)
		if aErr == nil && bErr == nil {
			return an < bn
		}
		return col.CompareString(a, b) < 0
	})
}

// ColumnIndex resolves a header name (case-insensitive) or a numeric index.
func (t *Table) ColumnIndex(name string) int {
	if idx, err := strconv.Atoi(name); err == nil {
		return idx
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// VisibleRows returns the rows not hidden by Search.
func (t *Table) VisibleRows() []TableRow {
	out := make([]TableRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !row.Hidden {
			out = append(out, row)
		}
	}
	return out
}

func cell(row TableRow, column int) string {
	if column < len(row.Cells) {
		return row.Cells[column]
	}
	return ""
}

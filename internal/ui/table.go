package ui

import (
	"sort"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction markers appended to the active sort header.
const (
	MarkerAsc  = " ▲"
	MarkerDesc = " ▼"
)

// Header is one column heading. Marker is empty except on the column the
// table is currently sorted by.
type Header struct {
	Label  string
	Marker string
}

// Text returns the heading as displayed, label plus marker.
func (h Header) Text() string { return h.Label + h.Marker }

// Row is one table row of text cells. A Span row stretches across every
// column; the bookings list uses one to surface a fetch error.
type Row struct {
	Cells []string
	Span  bool
}

// Cell returns the text of column i, "" when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Table is an ordered list of text rows under fixed headers, sortable by
// any column.
type Table struct {
	headers []Header
	rows    []Row
	sortCol int
	asc     bool
}

// NewTable creates a table with the given column labels and no rows.
func NewTable(labels ...string) *Table {
	headers := make([]Header, len(labels))
	for i, l := range labels {
		headers[i] = Header{Label: l}
	}
	return &Table{headers: headers, sortCol: -1}
}

// Headers returns the column headings, including any sort marker.
func (t *Table) Headers() []Header { return t.headers }

// Rows returns the rows in display order.
func (t *Table) Rows() []Row { return t.rows }

// SetRows replaces the table contents and clears sort state, as a freshly
// rendered table has no active sort column.
func (t *Table) SetRows(rows [][]string) {
	t.rows = t.rows[:0]
	for _, cells := range rows {
		t.rows = append(t.rows, Row{Cells: cells})
	}
	t.resetSort()
}

// AppendRow adds one row of cells.
func (t *Table) AppendRow(cells ...string) {
	t.rows = append(t.rows, Row{Cells: cells})
}

// SetErrorRow replaces the contents with a single full-width row holding
// msg.
func (t *Table) SetErrorRow(msg string) {
	t.rows = []Row{{Cells: []string{msg}, Span: true}}
	t.resetSort()
}

// SortByColumn orders rows by the text of column col using the collator.
// Sorting the current column again flips the direction; a new column
// starts ascending. Ties keep their current order. An out-of-range column
// is ignored.
func (t *Table) SortByColumn(col int, c *collate.Collator) {
	if col < 0 || col >= len(t.headers) {
		return
	}
	if col == t.sortCol {
		t.asc = !t.asc
	} else {
		t.sortCol = col
		t.asc = true
	}

	sort.SliceStable(t.rows, func(i, j int) bool {
		cmp := c.CompareString(t.rows[i].Cell(col), t.rows[j].Cell(col))
		if t.asc {
			return cmp < 0
		}
		return cmp > 0
	})

	for i := range t.headers {
		t.headers[i].Marker = ""
	}
	if t.asc {
		t.headers[col].Marker = MarkerAsc
	} else {
		t.headers[col].Marker = MarkerDesc
	}
}

// SortState returns the active column index (-1 when unsorted) and
// whether the order is ascending.
func (t *Table) SortState() (int, bool) { return t.sortCol, t.asc }

func (t *Table) resetSort() {
	t.sortCol = -1
	t.asc = false
	for i := range t.headers {
		t.headers[i].Marker = ""
	}
}

// RenderText writes the table as aligned text for the console demo.
func (t *Table) RenderText() string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
	heads := make([]string, len(t.headers))
	for i, h := range t.headers {
		heads[i] = h.Text()
	}
	writeTabLine(w, heads)
	for _, row := range t.rows {
		if row.Span {
			writeTabLine(w, []string{row.Cells[0]})
			continue
		}
		writeTabLine(w, row.Cells)
	}
	w.Flush()
	return sb.String()
}

func writeTabLine(w *tabwriter.Writer, cells []string) {
	w.Write([]byte(strings.Join(cells, "\t") + "\n"))
}

// NewCollator builds the case-insensitive, locale-aware collator the
// tables sort with. An unparsable locale falls back to the undetermined
// language rather than failing.
func NewCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return collate.New(tag, collate.IgnoreCase)
}

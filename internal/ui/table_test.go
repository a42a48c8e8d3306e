package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByColumnTogglesDirection(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Name", "Date")
	tbl.SetRows([][]string{
		{"Charlie", "2025-03-01"},
		{"alice", "2025-01-15"},
		{"Bob", "2025-02-10"},
	})

	tbl.SortByColumn(0, c)
	col, asc := tbl.SortState()
	assert.Equal(t, 0, col)
	assert.True(t, asc)
	assert.Equal(t, "alice", tbl.Rows()[0].Cell(0))
	assert.Equal(t, "Bob", tbl.Rows()[1].Cell(0))
	assert.Equal(t, "Charlie", tbl.Rows()[2].Cell(0))
	assert.Equal(t, "Name"+MarkerAsc, tbl.Headers()[0].Text())
	assert.Equal(t, "Date", tbl.Headers()[1].Text())

	tbl.SortByColumn(0, c)
	_, asc = tbl.SortState()
	assert.False(t, asc)
	assert.Equal(t, "Charlie", tbl.Rows()[0].Cell(0))
	assert.Equal(t, "Name"+MarkerDesc, tbl.Headers()[0].Text())
}

func TestSortByColumnNewColumnResetsAscending(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Name", "Date")
	tbl.SetRows([][]string{
		{"Bob", "2025-02-10"},
		{"alice", "2025-01-15"},
	})

	tbl.SortByColumn(0, c)
	tbl.SortByColumn(0, c) // now descending
	tbl.SortByColumn(1, c)

	col, asc := tbl.SortState()
	assert.Equal(t, 1, col)
	assert.True(t, asc)
	assert.Equal(t, "2025-01-15", tbl.Rows()[0].Cell(1))
	assert.Equal(t, "Date"+MarkerAsc, tbl.Headers()[1].Text())
	assert.Equal(t, "Name", tbl.Headers()[0].Text(), "previous column loses its marker")
}

func TestSortIsCaseInsensitive(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Name")
	tbl.SetRows([][]string{{"Banana"}, {"apple"}})

	tbl.SortByColumn(0, c)
	assert.Equal(t, "apple", tbl.Rows()[0].Cell(0))
	assert.Equal(t, "Banana", tbl.Rows()[1].Cell(0))
}

func TestSortIsStableOnTies(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Profession", "Therapist")
	tbl.SetRows([][]string{
		{"Physio", "N. Adams"},
		{"Physio", "B. Zulu"},
		{"Biokinetics", "C. Naidoo"},
	})

	tbl.SortByColumn(0, c)
	require.Len(t, tbl.Rows(), 3)
	assert.Equal(t, "Biokinetics", tbl.Rows()[0].Cell(0))
	// The two Physio rows keep their original relative order.
	assert.Equal(t, "N. Adams", tbl.Rows()[1].Cell(1))
	assert.Equal(t, "B. Zulu", tbl.Rows()[2].Cell(1))
}

func TestSortOutOfRangeColumnIsNoop(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Name")
	tbl.SetRows([][]string{{"b"}, {"a"}})

	tbl.SortByColumn(5, c)
	col, _ := tbl.SortState()
	assert.Equal(t, -1, col)
	assert.Equal(t, "b", tbl.Rows()[0].Cell(0))
}

func TestSetErrorRow(t *testing.T) {
	tbl := NewTable("Date", "Time", "Profession")
	tbl.AppendRow("2025-01-01", "09:00", "Physio")
	tbl.SetErrorRow("Failed to load bookings")

	require.Len(t, tbl.Rows(), 1)
	assert.True(t, tbl.Rows()[0].Span)
	assert.Equal(t, "Failed to load bookings", tbl.Rows()[0].Cell(0))
}

func TestSetRowsClearsSortState(t *testing.T) {
	c := NewCollator("en")
	tbl := NewTable("Name")
	tbl.SetRows([][]string{{"b"}, {"a"}})
	tbl.SortByColumn(0, c)

	tbl.SetRows([][]string{{"z"}, {"x"}})
	col, _ := tbl.SortState()
	assert.Equal(t, -1, col)
	assert.Equal(t, "Name", tbl.Headers()[0].Text())
}

func TestRenderTextIncludesHeadersAndRows(t *testing.T) {
	tbl := NewTable("Name", "Date")
	tbl.AppendRow("alice", "2025-01-15")
	out := tbl.RenderText()
	assert.True(t, strings.Contains(out, "Name"))
	assert.True(t, strings.Contains(out, "alice"))
}

func TestNewCollatorBadLocaleFallsBack(t *testing.T) {
	c := NewCollator("not a locale!!")
	require.NotNil(t, c)
	assert.True(t, c.CompareString("a", "b") < 0)
}

package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brandTable() *Table {
	table := NewTable("Marca", "Propietario", "Cabezas")
	table.AddRow("Hierro Foo", "Ana Ruiz", "120")
	table.AddRow("El Ñandú", "Luis Gómez", "15")
	table.AddRow("Nube Blanca", "FOO Ganadera", "9")
	return table
}

func TestTableSearchHidesNonMatchingRows(t *testing.T) {
	table := brandTable()
	table.Search("foo")

	visible := table.VisibleRows()
	require.Len(t, visible, 2)
	assert.Equal(t, "Hierro Foo", visible[0].Cells[0])
	assert.Equal(t, "Nube Blanca", visible[1].Cells[0])
	assert.True(t, table.Rows[1].Hidden)

	table.Search("")
	assert.Len(t, table.VisibleRows(), 3)
}

func TestTableSortNumericColumn(t *testing.T) {
	table := brandTable()
	table.SortBy(table.ColumnIndex("cabezas"))
	assert.Equal(t, "9", table.Rows[0].Cells[2])
	assert.Equal(t, "15", table.Rows[1].Cells[2])
	assert.Equal(t, "120", table.Rows[2].Cells[2])
}

func TestTableSortUsesSpanishCollation(t *testing.T) {
	table := NewTable("Nombre")
	table.AddRow("Ñandú")
	table.AddRow("Nube")
	table.AddRow("Oso")
	table.SortBy(0)
	assert.Equal(t, "Nube", table.Rows[0].Cells[0])
	assert.Equal(t, "Ñandú", table.Rows[1].Cells[0])
	assert.Equal(t, "Oso", table.Rows[2].Cells[0])
}

func TestTableColumnIndex(t *testing.T) {
	table := brandTable()
	assert.Equal(t, 1, table.ColumnIndex("PROPIETARIO"))
	assert.Equal(t, 2, table.ColumnIndex("2"))
	assert.Equal(t, -1, table.ColumnIndex("missing"))
	table.SortBy(-1)
	assert.Equal(t, "Hierro Foo", table.Rows[0].Cells[0])
}

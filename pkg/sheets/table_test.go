package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{
		1:   "A",
		4:   "D",
		8:   "H",
		26:  "Z",
		27:  "AA",
		52:  "AZ",
		53:  "BA",
		702: "ZZ",
		703: "AAA",
	}
	for col, want := range cases {
		assert.Equal(t, want, ColumnLetter(col), "column %d", col)
	}
}

func TestCellRange(t *testing.T) {
	assert.Equal(t, "'Tasks'!D7", CellRange("Tasks", 7, 4))
	assert.Equal(t, "'Bob''s tab'!A2", CellRange("Bob's tab", 2, 1))
}

func TestValueRangeKeepsOrder(t *testing.T) {
	vr := valueRange([]string{"1", "Login bug", ""})
	assert.Equal(t, [][]interface{}{{"1", "Login bug", ""}}, vr.Values)
}

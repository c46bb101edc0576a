package sheetsclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var filterNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

func filterRow(status, date, skill, residue string) []string {
	row := make([]string, backlogColumns)
	row[0] = status
	row[1] = date
	row[2] = "agent1"
	row[6] = skill
	row[10] = residue
	return row
}

func TestSourceFilter(t *testing.T) {
	cases := []struct {
		name string
		row  []string
		keep bool
	}{
		{"plain open row", filterRow("", "", "chat", "5"), true},
		{"not-on-leave sentinel", filterRow("НЕ ДЕКРЕТ", "-", "chat", "5"), true},
		{"on leave", filterRow("ДЕКРЕТ", "", "chat", "5"), false},
		{"no skill", filterRow("", "", "", "5"), false},
		{"zero residue", filterRow("", "", "chat", "0"), false},
		{"blank residue", filterRow("", "", "chat", ""), false},
		{"end date passed", filterRow("", "19.05.2024", "chat", "5"), true},
		{"end date ahead", filterRow("", "21.05.2024", "chat", "5"), false},
		{"malformed end date", filterRow("", "soon", "chat", "5"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.keep, sourceFilter(tc.row, filterNow))
		})
	}
}

func TestStringifyRow(t *testing.T) {
	raw := []interface{}{"text", float64(42), nil, true}
	row := stringifyRow(raw, 6)

	assert.Equal(t, []string{"text", "42", "", "true", "", ""}, row)
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(1))
	assert.Equal(t, "E", columnLetter(5))
	assert.Equal(t, "Z", columnLetter(26))
	assert.Equal(t, "AA", columnLetter(27))
	assert.Equal(t, "AZ", columnLetter(52))
}

func TestDataRows_SkipsHeader(t *testing.T) {
	values := [][]interface{}{
		{"login", "id", "skill"},
		{"alice", "100", "chat"},
		{"bob", "200"},
	}

	rows := dataRows(values, 3)
	assert.Equal(t, [][]string{
		{"alice", "100", "chat"},
		{"bob", "200", ""},
	}, rows)

	assert.Nil(t, dataRows([][]interface{}{{"login"}}, 3))
}

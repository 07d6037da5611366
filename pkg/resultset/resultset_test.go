package resultset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Basic(t *testing.T) {
	table := ParseString("a\tb\tc\n1\t2\t3")

	assert.Equal(t, []string{"a", "b", "c"}, table.Headers)
	assert.Equal(t, [][]string{{"1", "2", "3"}}, table.Rows)
	assert.False(t, table.Empty())
}

func TestParse_NoData(t *testing.T) {
	tests := []struct {
		name    string
		payload *string
	}{
		{"absent payload", nil},
		{"empty string", ptr("")},
		{"only blank lines", ptr("\n   \n\t\n")},
		{"only sentinel lines", ptr("Deprecated: old flag\nWARNING Deprecated option\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Parse(tt.payload)
			assert.True(t, table.Empty())
			assert.Empty(t, table.Headers)
			assert.Empty(t, table.Rows)
			assert.NotNil(t, table.Headers)
			assert.NotNil(t, table.Rows)
			assert.Equal(t, "0 rows", table.RowCountLabel())
		})
	}
}

func TestParse_SentinelAnywhere(t *testing.T) {
	payload := "Deprecated: first line\nid\tname\n1\talice\nmysql: Deprecated program name\n2\tbob\nDeprecated"

	table := ParseString(payload)

	assert.Equal(t, []string{"id", "name"}, table.Headers)
	assert.Equal(t, [][]string{{"1", "alice"}, {"2", "bob"}}, table.Rows)
}

func TestParse_SentinelDropsDataValue(t *testing.T) {
	table := ParseString("status\nactive\nDeprecated\nretired")

	assert.Equal(t, [][]string{{"active"}, {"retired"}}, table.Rows)
}

func TestParse_RaggedRowsPassThrough(t *testing.T) {
	table := ParseString("a\tb\n1\n1\t2\t3\nx\t")

	assert.Equal(t, []string{"a", "b"}, table.Headers)
	assert.Equal(t, [][]string{{"1"}, {"1", "2", "3"}, {"x", ""}}, table.Rows)
}

func TestParse_SkipsBlankLinesAndCRLF(t *testing.T) {
	table := ParseString("n\r\n\r\n1\r\n\n2\n")

	assert.Equal(t, []string{"n"}, table.Headers)
	assert.Equal(t, [][]string{{"1"}, {"2"}}, table.Rows)
	assert.Equal(t, 2, table.RowCount())
}

func TestRowCountLabel(t *testing.T) {
	assert.Equal(t, "1 rows", ParseString("n\n1").RowCountLabel())
	assert.Equal(t, "0 rows", ParseString("n").RowCountLabel())
}

func TestIsSentinelLine(t *testing.T) {
	assert.True(t, IsSentinelLine("Deprecated"))
	assert.True(t, IsSentinelLine("x Deprecated y"))
	assert.False(t, IsSentinelLine("deprecated"))
	assert.False(t, IsSentinelLine("id\tname"))
}

func ptr(s string) *string { return &s }

// Package resultset turns the gateway's tab-separated query output into a
// header/rows table.
package resultset

import (
	"fmt"
	"strings"
)

// SentinelMarker flags server-emitted notices interleaved with tabular output.
const SentinelMarker = "Deprecated"

const (
	lineSeparator = "\n"
	cellSeparator = "\t"
)

// Table is the parsed form of a result payload. A Table with no headers is
// the "no data" state, which is not an error.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Empty reports whether the payload had no displayable lines.
func (t Table) Empty() bool {
	return len(t.Headers) == 0
}

// RowCount is the number of data rows, excluding the header.
func (t Table) RowCount() int {
	return len(t.Rows)
}

// RowCountLabel renders the row count the way the console displays it.
func (t Table) RowCountLabel() string {
	return fmt.Sprintf("%d rows", len(t.Rows))
}

// IsSentinelLine reports whether line should be hidden from the table.
// The match is a plain substring test, so a data value containing the marker
// is dropped as well.
func IsSentinelLine(line string) bool {
	return strings.Contains(line, SentinelMarker)
}

// Parse converts a raw payload into a Table. A nil payload (no execution yet,
// or an error) parses to the empty table.
//
// Blank and sentinel lines are discarded, the first remaining line becomes the
// header and each later line a row. Rows are split on single tabs and kept
// as-is even when their width differs from the header.
func Parse(payload *string) Table {
	table := Table{Headers: []string{}, Rows: [][]string{}}
	if payload == nil {
		return table
	}

	lines := displayLines(*payload)
	if len(lines) == 0 {
		return table
	}

	table.Headers = strings.Split(lines[0], cellSeparator)
	for _, line := range lines[1:] {
		table.Rows = append(table.Rows, strings.Split(line, cellSeparator))
	}
	return table
}

// ParseString is Parse for a payload that is known to be present.
func ParseString(payload string) Table {
	return Parse(&payload)
}

func displayLines(payload string) []string {
	raw := strings.Split(payload, lineSeparator)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || IsSentinelLine(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

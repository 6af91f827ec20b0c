package pdf

import (
	"strings"

	"github.com/drawmark/drawmark/internal/domain"
)

// A text line is treated as a table row when it splits into at least this
// many cells on runs of whitespace.
const minTableColumns = 2

// Runs of spaces shorter than this separate words, not columns.
const columnGap = 2

// ExtractContent splits extracted page text into running prose and
// normalized tables. Consecutive lines with the same column count form one
// table, with the first row as the header; everything else stays prose, in
// its original order.
func ExtractContent(text string) (string, []domain.Table) {
	var prose []string
	var tables []domain.Table
	var current [][]string
	var currentLines []string

	flush := func() {
		// A single columnar line is just spaced-out text.
		if len(current) >= 2 {
			tables = append(tables, domain.Table{
				Headers: current[0],
				Rows:    current[1:],
			})
		} else {
			prose = append(prose, currentLines...)
		}
		current = nil
		currentLines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := SplitColumns(line)
		if len(cells) >= minTableColumns {
			if len(current) > 0 && len(current[0]) != len(cells) {
				flush()
			}
			current = append(current, cells)
			currentLines = append(currentLines, line)
			continue
		}
		flush()
		prose = append(prose, line)
	}
	flush()

	return strings.TrimSpace(strings.Join(prose, "\n")), tables
}

// ExtractTables returns only the normalized tables found in text.
func ExtractTables(text string) []domain.Table {
	_, tables := ExtractContent(text)
	return tables
}

// SplitColumns splits a line into cells on tab characters or runs of two or
// more spaces. Returns nil when the line has no columnar structure.
func SplitColumns(line string) []string {
	line = strings.TrimRight(line, " \t\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var cells []string
	var cell strings.Builder
	spaces := 0

	flushCell := func() {
		if s := strings.TrimSpace(cell.String()); s != "" {
			cells = append(cells, s)
		}
		cell.Reset()
	}

	for _, r := range line {
		switch {
		case r == '\t':
			flushCell()
			spaces = 0
		case r == ' ':
			spaces++
			cell.WriteRune(r)
		default:
			if spaces >= columnGap {
				// The spaces belonged to the gap, not the cell.
				s := cell.String()
				cell.Reset()
				cell.WriteString(strings.TrimRight(s, " "))
				flushCell()
			}
			spaces = 0
			cell.WriteRune(r)
		}
	}
	flushCell()

	if len(cells) < minTableColumns {
		return nil
	}
	return cells
}

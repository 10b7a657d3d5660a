package gateway

import (
	"strconv"
	"strings"
)

// cellRef is one end of an A1 range. Zero means the part was omitted.
type cellRef struct {
	col int
	row int
}

// parseCellRef parses "B12", "B" or "12".
func parseCellRef(s string) (cellRef, bool) {
	var ref cellRef
	if s == "" {
		return ref, false
	}

	i := 0
	for i < len(s) {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		ref.col = ref.col*26 + int(c-'A'+1)
		i++
	}

	if i < len(s) {
		row, err := strconv.Atoi(s[i:])
		if err != nil || row <= 0 {
			return ref, false
		}
		ref.row = row
	}

	return ref, ref.col > 0 || ref.row > 0
}

// RangeDimensions returns the height and width of an A1 range clipped to a
// worksheet with the given declared size. Open-ended ranges (A:C, 2:5, A2:C)
// extend to the worksheet bounds and a range lying wholly outside the sheet
// has zero size. ok is false for anything that is not plain A1, such as named
// ranges.
func RangeDimensions(cellRange string, rows, cols int) (height, width int, ok bool) {
	if i := strings.LastIndex(cellRange, "!"); i >= 0 {
		cellRange = cellRange[i+1:]
	}
	cellRange = strings.ReplaceAll(cellRange, "$", "")

	startStr, endStr, isSpan := strings.Cut(cellRange, ":")
	start, ok := parseCellRef(startStr)
	if !ok {
		return 0, 0, false
	}

	if !isSpan {
		if start.col == 0 || start.row == 0 {
			return 0, 0, false
		}
		return clippedSpan(start.row, start.row, rows), clippedSpan(start.col, start.col, cols), true
	}

	end, ok := parseCellRef(endStr)
	if !ok {
		return 0, 0, false
	}
	// A column-only start cannot pair with a row-only end and vice versa.
	if (start.col == 0) != (end.col == 0) {
		return 0, 0, false
	}

	if start.col == 0 {
		start.col, end.col = 1, cols
	}
	if start.row == 0 {
		start.row = 1
	}
	if end.row == 0 {
		end.row = rows
	}

	height = clippedSpan(start.row, end.row, rows)
	width = clippedSpan(start.col, end.col, cols)
	return height, width, true
}

// clippedSpan counts the indexes from a to b inclusive that fall within
// 1..limit.
func clippedSpan(a, b, limit int) int {
	if b < a {
		a, b = b, a
	}
	b = min(b, limit)
	if b < a {
		return 0
	}
	return b - a + 1
}

// PadGrid extends g with empty strings to exactly height rows of width
// cells. Cells beyond the bounds are kept.
func PadGrid(g Grid, height, width int) Grid {
	out := make(Grid, 0, max(height, len(g)))
	for i := 0; i < max(height, len(g)); i++ {
		var row []any
		if i < len(g) {
			row = g[i]
		}
		padded := make([]any, 0, max(width, len(row)))
		padded = append(padded, row...)
		for len(padded) < width {
			padded = append(padded, "")
		}
		out = append(out, padded)
	}
	return out
}

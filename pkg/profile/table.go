package profile

import (
	"strconv"
	"strings"
)

// RenderTable builds a plain-text table. Columns whose every non-empty cell
// parses as a number are right-aligned; everything else is left-aligned.
// With colorHeader the header line is wrapped in bold-cyan ANSI escapes.
func RenderTable(titles []string, rows [][]string, sep string, colorHeader bool) string {
	if sep == "" {
		sep = " | "
	}
	ncols := len(titles)

	norm := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, ncols)
		copy(row, r)
		norm = append(norm, row)
	}

	widths := make([]int, ncols)
	for c := range titles {
		widths[c] = len(titles[c])
		for _, row := range norm {
			if len(row[c]) > widths[c] {
				widths[c] = len(row[c])
			}
		}
	}

	numeric := make([]bool, ncols)
	for c := 0; c < ncols; c++ {
		seen := false
		ok := true
		for _, row := range norm {
			if row[c] == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(row[c], 64); err != nil {
				ok = false
				break
			}
		}
		numeric[c] = seen && ok
	}

	pad := func(s string, width int, right bool) string {
		if len(s) >= width {
			return s
		}
		fill := strings.Repeat(" ", width-len(s))
		if right {
			return fill + s
		}
		return s + fill
	}

	cells := make([]string, ncols)
	for c := range titles {
		cells[c] = pad(titles[c], widths[c], numeric[c])
	}
	header := strings.Join(cells, sep)
	if colorHeader {
		header = "\033[1;36m" + header + "\033[0m"
	}

	totalWidth := len(sep) * (ncols - 1)
	for _, w := range widths {
		totalWidth += w
	}
	divider := strings.Repeat("=", totalWidth)

	parts := []string{header, divider}
	if len(norm) == 0 {
		parts = append(parts, "(no entries)")
	}
	for _, row := range norm {
		for c := range row {
			cells[c] = pad(row[c], widths[c], numeric[c])
		}
		parts = append(parts, strings.Join(cells, sep))
	}
	return strings.Join(parts, "\n")
}

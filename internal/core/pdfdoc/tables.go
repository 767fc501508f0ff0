package pdfdoc

import (
	"sort"
	"strings"
)

// Run is a positioned piece of text on one visual row.
type Run struct {
	X float64
	W float64
	S string
}

// Line is every run sharing a baseline, in any order.
type Line []Run

type TableOptions struct {
	// CellGap is the horizontal distance (points) that starts a new cell.
	CellGap float64
	// MinColumns is the number of cells a line needs to count as a table row.
	MinColumns int
	// MinRows is the number of consecutive table rows that make a table.
	MinRows int
}

func DefaultTableOptions() TableOptions {
	return TableOptions{CellGap: 12, MinColumns: 2, MinRows: 2}
}

// DetectTables groups consecutive multi-cell lines into tables. Lines must be
// in reading order (top to bottom).
func DetectTables(lines []Line, opts TableOptions) [][][]string {
	if opts.MinColumns < 2 {
		opts.MinColumns = 2
	}
	if opts.MinRows < 1 {
		opts.MinRows = 1
	}

	var (
		tables  [][][]string
		current [][]string
	)
	flush := func() {
		if len(current) >= opts.MinRows {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range lines {
		cells := splitCells(line, opts.CellGap)
		if len(cells) >= opts.MinColumns {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

// splitCells merges runs into cells, starting a new cell wherever the gap to
// the previous run's right edge exceeds gap.
func splitCells(line Line, gap float64) []string {
	if len(line) == 0 {
		return nil
	}
	runs := make(Line, len(line))
	copy(runs, line)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var (
		cells []string
		b     strings.Builder
	)
	push := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			cells = append(cells, s)
		}
		b.Reset()
	}

	right := runs[0].X
	for i, r := range runs {
		if i > 0 && r.X-right > gap {
			push()
		}
		b.WriteString(r.S)
		if end := r.X + r.W; end > right {
			right = end
		}
	}
	push()
	return cells
}

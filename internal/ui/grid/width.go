package grid

// Per-cell chrome: two border columns plus one padding column on each side.
const cellChrome = 4

// minContentWidth keeps a cell legible on very narrow terminals.
const minContentWidth = 8

// cellContentWidth splits the available width evenly across the columns,
// accounting for each cell's border and padding.
func cellContentWidth(total, columns int) int {
	if columns < 1 {
		columns = 1
	}
	w := total/columns - cellChrome
	if w < minContentWidth {
		return minContentWidth
	}
	return w
}

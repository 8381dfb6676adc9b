package ui

// NextOffset returns the index of the first visible row after the selection
// moves to selected. While selected stays inside [current, current+capacity)
// the window does not move; once it leaves, the window jumps so selected sits
// in the middle. The result is clamped to [0, max(0, total-capacity)], and a
// list that fits entirely always starts at 0.
func NextOffset(selected, current, total, capacity int) int {
	if capacity < 1 {
		capacity = 1
	}
	if total <= capacity {
		return 0
	}
	maxOffset := total - capacity
	if selected >= current && selected < current+capacity {
		return clampInt(current, 0, maxOffset)
	}
	return clampInt(selected-capacity/2, 0, maxOffset)
}

// Capacity returns how many rows of rowHeight lines fit in lines, at least 1.
func Capacity(lines, rowHeight int) int {
	if rowHeight < 1 {
		rowHeight = 1
	}
	return max(1, lines/rowHeight)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

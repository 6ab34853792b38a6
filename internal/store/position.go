package store

// allocatePosition assigns a sort key for a new row. An explicit position from
// the caller is authoritative; otherwise the row goes after every existing
// sibling. Gaps are fine and untouched siblings are never renumbered.
func allocatePosition(existing []int, explicit *int) int {
	if explicit != nil {
		return *explicit
	}
	max := -1
	for _, p := range existing {
		if p > max {
			max = p
		}
	}
	return max + 1
}

func positionOrIndex(explicit *int, index int) int {
	if explicit != nil {
		return *explicit
	}
	return index
}

package listing

// Diff compares two listings by coin ID. entered keeps the order of current,
// exited keeps the order of prev.
func Diff(prev, current []Coin) (entered, exited []Coin) {
	prevIDs := make(map[int64]struct{}, len(prev))
	for _, c := range prev {
		prevIDs[c.ID] = struct{}{}
	}
	curIDs := make(map[int64]struct{}, len(current))
	for _, c := range current {
		curIDs[c.ID] = struct{}{}
	}

	entered = []Coin{}
	for _, c := range current {
		if _, ok := prevIDs[c.ID]; !ok {
			entered = append(entered, c)
		}
	}
	exited = []Coin{}
	for _, c := range prev {
		if _, ok := curIDs[c.ID]; !ok {
			exited = append(exited, c)
		}
	}
	return entered, exited
}

package game

// NextDrawer scans the fixed drawer order forward from currentRound+1,
// skipping ids that are not connected, and returns the first connected id
// with its 1-based round number. When the order is exhausted it returns
// ok=false with a round number past the end of the order.
func NextDrawer(order []string, currentRound int, connected map[string]bool) (string, int, bool) {
	for round := currentRound + 1; round <= len(order); round++ {
		if id := order[round-1]; connected[id] {
			return id, round, true
		}
	}
	return "", len(order) + 1, false
}

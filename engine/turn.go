package engine

// NextActivePlayer walks the ascending-sorted seat ids cyclically from
// start and returns the first seat for which hasCards is true. With
// includeStart false the walk begins one past start and wraps all the
// way around, so start itself is still the last candidate; with
// includeStart true the walk begins at start (used to lead a new
// pegging sub-round with the scorer). start < 0 means "from the head".
// Returns false when no seat can act — the caller transitions to show.
func NextActivePlayer(ids []uint8, start int8, includeStart bool, hasCards func(uint8) bool) (uint8, bool) {
	if len(ids) == 0 {
		return 0, false
	}
	idx := 0
	if start >= 0 {
		for i, id := range ids {
			if id == uint8(start) {
				idx = i
				break
			}
		}
	}
	first := 1
	if includeStart {
		first = 0
	}
	for off := first; off < first+len(ids); off++ {
		id := ids[(idx+off)%len(ids)]
		if hasCards(id) {
			return id, true
		}
	}
	return 0, false
}

// nextActive is NextActivePlayer over this game's seats and hands.
func (g *GameState) nextActive(start int8, includeStart bool) (uint8, bool) {
	return NextActivePlayer(g.Seats(), start, includeStart, g.hasCards)
}

package engine

import "fmt"

// GoResult describes the consequences of a "go".
type GoResult struct {
	// Scorer is the seat awarded the sub-round, or -1 when the pass was
	// only recorded.
	Scorer int8
	// Points credited to the scorer (0 when the sub-round ended on an
	// exact 31, which was already scored by the play itself).
	Points          int
	SubRoundEnded   bool
	PeggingComplete bool
}

// CanPlayCard reports whether the seat's card at idx fits under the cap.
func (g *GameState) CanPlayCard(player uint8, idx uint8) bool {
	if player >= g.NumPlayers || idx >= g.Players[player].HandLen {
		return false
	}
	return int(g.PegTotal)+g.Players[player].Hand[idx].Value() <= PeggingCap
}

// HasPlayableCard reports whether the seat holds any legal play. The
// caller forces a "go" on its behalf when this is false — as part of
// the same step that produced the unplayable situation.
func (g *GameState) HasPlayableCard(player uint8) bool {
	if player >= g.NumPlayers {
		return false
	}
	for i := uint8(0); i < g.Players[player].HandLen; i++ {
		if g.CanPlayCard(player, i) {
			return true
		}
	}
	return false
}

// PlayCard plays the current actor's card at idx into the pegging
// sequence and returns the card and the points it earned. On a
// rejection the state is unchanged.
func (g *GameState) PlayCard(player uint8, idx uint8) (Card, int, error) {
	if err := g.checkPeggingCommand(player); err != nil {
		return EmptyCard, 0, err
	}
	ps := &g.Players[player]
	if idx >= ps.HandLen {
		return EmptyCard, 0, fmt.Errorf("%w: %d (hand size %d)", ErrInvalidCardIndex, idx, ps.HandLen)
	}
	card := ps.Hand[idx]
	if int(g.PegTotal)+card.Value() > PeggingCap {
		return EmptyCard, 0, fmt.Errorf("%w: %s would take the count past %d", ErrIllegalPlay, card, PeggingCap)
	}

	// Move the card from the hand into the sequence.
	for i := idx; i+1 < ps.HandLen; i++ {
		ps.Hand[i] = ps.Hand[i+1]
	}
	ps.HandLen--
	g.PegSeq[g.PegLen] = card
	g.PegLen++
	g.PegTotal += uint8(card.Value())

	points := ScorePeggingPlay(g.PegSeq[:g.PegLen], int(g.PegTotal))

	// Last-card bonus: the play that empties the final hand earns +1,
	// unless the count landed on 31 (already worth 2) or the bonus was
	// already given this sub-round.
	if g.allHandsEmpty() && g.PegTotal != PeggingCap && !g.BonusAwarded {
		points++
		g.BonusAwarded = true
	}

	g.LastPlayed = int8(player)
	g.PassSet = 0 // any play resets all pending passes

	ps.Score += int16(points)
	g.checkWin()
	if g.IsGameOver() {
		return card, points, nil
	}

	if g.allHandsEmpty() {
		g.Phase = PhaseShow
		return card, points, nil
	}
	if next, ok := g.nextActive(int8(player), false); ok {
		g.Current = next
	}
	return card, points, nil
}

// Go records a pass — voluntary or forced — for the current actor and
// resolves the sub-round boundary when every seat still holding cards
// has passed since the last play.
func (g *GameState) Go(player uint8) (GoResult, error) {
	res := GoResult{Scorer: -1}
	if err := g.checkPeggingCommand(player); err != nil {
		return res, err
	}

	g.PassSet |= 1 << player

	if g.allHandsEmpty() {
		// Nothing left to play anywhere; points for the exhausting play
		// were already awarded. Straight to show.
		g.PassSet = 0
		g.Phase = PhaseShow
		res.SubRoundEnded = true
		res.PeggingComplete = true
		return res, nil
	}

	// A sub-round can only be won once someone has played into it.
	if g.LastPlayed >= 0 && g.activeAllPassed() {
		scorer := uint8(g.LastPlayed)
		if g.PegTotal != PeggingCap {
			res.Points = 1
			g.Players[scorer].Score++
			g.checkWin()
		}
		res.Scorer = int8(scorer)
		res.SubRoundEnded = true

		g.PegTotal = 0
		g.PegLen = 0
		g.PassSet = 0
		g.BonusAwarded = false
		g.LastPlayed = -1

		if g.IsGameOver() {
			return res, nil
		}
		// New sub-round leads with the scorer if it still holds cards,
		// else the next active seat after it.
		if next, ok := g.nextActive(res.Scorer, true); ok {
			g.Current = next
		} else {
			g.Phase = PhaseShow
			res.PeggingComplete = true
		}
		return res, nil
	}

	// Pass recorded; the turn moves on.
	if next, ok := g.nextActive(int8(player), false); ok {
		g.Current = next
	}
	return res, nil
}

// activeAllPassed reports whether every seat that still holds cards is
// in the pass set.
func (g *GameState) activeAllPassed() bool {
	for p := uint8(0); p < g.NumPlayers; p++ {
		if g.Players[p].HandLen > 0 && !g.passed(p) {
			return false
		}
	}
	return true
}

// checkPeggingCommand validates the shared preconditions of PlayCard
// and Go.
func (g *GameState) checkPeggingCommand(player uint8) error {
	if !g.IsStarted() {
		return ErrGameNotStarted
	}
	if g.IsGameOver() {
		return ErrGameAlreadyOver
	}
	if g.Phase != PhasePlay {
		return fmt.Errorf("%w: pegging commands only in play phase (now %s)", ErrWrongPhase, g.Phase)
	}
	if player >= g.NumPlayers || player != g.Current {
		return fmt.Errorf("%w: seat %d is not the current actor (%d)", ErrInvalidTurn, player, g.Current)
	}
	return nil
}

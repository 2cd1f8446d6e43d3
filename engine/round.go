package engine

import "fmt"

// Round lifecycle: deal → discard → play → show → {next round | game over}.

// BeginRound resets all per-round state, deals a fresh shuffled deck
// (6 cards each with exactly 2 players, else 5), and opens the discard
// phase. The seat after the dealer is the first pegging actor.
func (g *GameState) BeginRound(dealer uint8) error {
	if g.IsGameOver() {
		return ErrGameAlreadyOver
	}
	if dealer >= g.NumPlayers {
		return fmt.Errorf("%w: dealer seat %d out of range", ErrInvalidTurn, dealer)
	}

	g.Dealer = dealer
	g.CribLen = 0
	g.Starter = EmptyCard
	g.PegTotal = 0
	g.PegLen = 0
	g.PassSet = 0
	g.LastPlayed = -1
	g.BonusAwarded = false
	g.SnapshotTaken = false
	for p := uint8(0); p < g.NumPlayers; p++ {
		g.Players[p].HandLen = 0
		g.Players[p].SnapLen = 0
		g.Players[p].Discarded = false
	}

	// Fresh 52-card deck, Fisher-Yates shuffled.
	idx := 0
	for suit := uint8(0); suit < 4; suit++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			g.Deck[idx] = NewCard(suit, rank)
			idx++
		}
	}
	g.DeckLen = DeckSize
	for i := int(g.DeckLen) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	}

	cardsPerPlayer := uint8(5)
	if g.NumPlayers == 2 {
		cardsPerPlayer = 6
	}
	for c := uint8(0); c < cardsPerPlayer; c++ {
		for p := uint8(0); p < g.NumPlayers; p++ {
			g.DeckLen--
			g.Players[p].Hand[c] = g.Deck[g.DeckLen]
			g.Players[p].HandLen++
		}
	}

	g.Current = (dealer + 1) % g.NumPlayers
	g.Phase = PhaseDiscard
	g.Flags |= FlagStarted
	return nil
}

// CollectDiscard moves exactly two cards from the seat's hand into the
// crib. A seat discards once per round. Once every seat has discarded,
// the starter is revealed, the show snapshot is frozen, and the phase
// advances to play.
func (g *GameState) CollectDiscard(player uint8, idxA, idxB uint8) error {
	if !g.IsStarted() {
		return ErrGameNotStarted
	}
	if g.IsGameOver() {
		return ErrGameAlreadyOver
	}
	if g.Phase != PhaseDiscard {
		return fmt.Errorf("%w: discards only in discard phase (now %s)", ErrWrongPhase, g.Phase)
	}
	if player >= g.NumPlayers {
		return fmt.Errorf("%w: no seat %d", ErrInvalidTurn, player)
	}
	ps := &g.Players[player]
	if ps.Discarded {
		return fmt.Errorf("%w: seat %d already discarded this round", ErrDuplicateDiscard, player)
	}
	if idxA == idxB || idxA >= ps.HandLen || idxB >= ps.HandLen {
		return fmt.Errorf("%w: indices %d,%d (hand size %d)", ErrInvalidCardIndex, idxA, idxB, ps.HandLen)
	}

	// Remove high index first so the low index stays valid.
	hi, lo := idxA, idxB
	if hi < lo {
		hi, lo = lo, hi
	}
	for _, idx := range [2]uint8{hi, lo} {
		g.Crib[g.CribLen] = ps.Hand[idx]
		g.CribLen++
		for i := idx; i+1 < ps.HandLen; i++ {
			ps.Hand[i] = ps.Hand[i+1]
		}
		ps.HandLen--
	}
	ps.Discarded = true

	if g.allDiscarded() {
		g.revealStarter()
		g.captureShowSnapshot()
		g.Phase = PhasePlay
		if next, ok := g.nextActive(int8(g.Dealer), false); ok {
			g.Current = next
		}
	}
	return nil
}

func (g *GameState) allDiscarded() bool {
	for p := uint8(0); p < g.NumPlayers; p++ {
		if !g.Players[p].Discarded {
			return false
		}
	}
	return true
}

// RevealStarter draws the starter from the remaining deck. Drawing
// before every discard is in would leak information into the discard
// decisions, so that is rejected.
func (g *GameState) RevealStarter() error {
	if !g.IsStarted() {
		return ErrGameNotStarted
	}
	if !g.allDiscarded() {
		return fmt.Errorf("%w: starter is drawn only after all discards", ErrWrongPhase)
	}
	if g.Starter != EmptyCard {
		return fmt.Errorf("%w: starter already revealed", ErrWrongPhase)
	}
	g.revealStarter()
	return nil
}

func (g *GameState) revealStarter() {
	g.DeckLen--
	g.Starter = g.Deck[g.DeckLen]
}

// CaptureShowSnapshot freezes each seat's post-discard hand for the
// show phase. Captured exactly once per round, strictly before the
// first pegging play.
func (g *GameState) CaptureShowSnapshot() error {
	if !g.IsStarted() {
		return ErrGameNotStarted
	}
	if !g.allDiscarded() {
		return fmt.Errorf("%w: snapshot is taken after all discards", ErrWrongPhase)
	}
	if g.SnapshotTaken {
		return fmt.Errorf("%w: snapshot already captured this round", ErrWrongPhase)
	}
	g.captureShowSnapshot()
	return nil
}

func (g *GameState) captureShowSnapshot() {
	for p := uint8(0); p < g.NumPlayers; p++ {
		ps := &g.Players[p]
		copy(ps.Snapshot[:], ps.Hand[:ps.HandLen])
		ps.SnapLen = ps.HandLen
	}
	g.SnapshotTaken = true
}

// ScoreShowRound settles the show: each seat's snapshot plus the
// starter, then the crib plus the starter credited to the dealer. The
// crib and snapshots are consumed, so a second call in the same round
// returns an empty map.
func (g *GameState) ScoreShowRound() map[uint8]int {
	deltas := make(map[uint8]int)
	if g.Phase != PhaseShow || g.Starter == EmptyCard {
		return deltas
	}

	var cards [MaxHandSize + 1]Card
	for p := uint8(0); p < g.NumPlayers; p++ {
		ps := &g.Players[p]
		if ps.SnapLen == 0 {
			continue
		}
		n := copy(cards[:], ps.Snapshot[:ps.SnapLen])
		cards[n] = g.Starter
		points := ScoreShowCards(cards[:n+1])
		deltas[p] = points
		ps.Score += int16(points)
	}
	if g.CribLen > 0 {
		var crib [MaxCrib + 1]Card
		n := copy(crib[:], g.Crib[:g.CribLen])
		crib[n] = g.Starter
		points := ScoreShowCards(crib[:n+1])
		deltas[g.Dealer] += points
		g.Players[g.Dealer].Score += int16(points)
	}

	g.CribLen = 0
	for p := uint8(0); p < g.NumPlayers; p++ {
		g.Players[p].SnapLen = 0
	}
	g.checkWin()
	return deltas
}

// AdvanceDealerAndRestart rotates the deal and begins the next round,
// unless the win evaluator has reported a winner. Returns true when a
// new round started.
func (g *GameState) AdvanceDealerAndRestart() bool {
	g.Dealer = (g.Dealer + 1) % g.NumPlayers
	if g.IsGameOver() {
		return false
	}
	if err := g.BeginRound(g.Dealer); err != nil {
		return false
	}
	return true
}

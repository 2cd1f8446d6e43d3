package engine

import (
	"errors"
	"testing"
)

// makePeggingGame builds a game mid-round, in the play phase, with the
// given hands already snapshotted. Seat 0 leads.
func makePeggingGame(hands ...[]Card) GameState {
	g := NewGame(42, uint8(len(hands)))
	for p, h := range hands {
		ps := &g.Players[p]
		copy(ps.Hand[:], h)
		ps.HandLen = uint8(len(h))
		copy(ps.Snapshot[:], h)
		ps.SnapLen = ps.HandLen
		ps.Discarded = true
	}
	g.Starter = NewCard(SuitSpades, RankKing)
	g.SnapshotTaken = true
	g.Phase = PhasePlay
	g.Current = 0
	g.Flags |= FlagStarted
	return g
}

func TestPlayCardRejections(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankKing)),
		hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankKing)),
	)

	if _, _, err := g.PlayCard(1, 0); !errors.Is(err, ErrInvalidTurn) {
		t.Errorf("out-of-turn play: err = %v, want ErrInvalidTurn", err)
	}
	if _, _, err := g.PlayCard(0, 5); !errors.Is(err, ErrInvalidCardIndex) {
		t.Errorf("bad index: err = %v, want ErrInvalidCardIndex", err)
	}

	// Push the count to 30; every remaining card would exceed 31.
	g.PegTotal = 30
	if _, _, err := g.PlayCard(0, 0); !errors.Is(err, ErrIllegalPlay) {
		t.Errorf("over-31 play: err = %v, want ErrIllegalPlay", err)
	}
	// Rejections leave state unchanged.
	if g.PegTotal != 30 || g.Players[0].HandLen != 2 || g.PegLen != 0 {
		t.Error("rejected play mutated state")
	}
}

func TestPlayCardScoresAndAdvances(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankTwo)),
		hand(NewCard(SuitClubs, RankFive), NewCard(SuitClubs, RankSix)),
	)

	card, points, err := g.PlayCard(0, 0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if card != NewCard(SuitHearts, RankTen) || points != 0 {
		t.Errorf("play = (%s, %d), want (10H, 0)", card, points)
	}
	if g.PegTotal != 10 || g.Current != 1 {
		t.Errorf("total=%d current=%d, want 10/1", g.PegTotal, g.Current)
	}

	// 10 + 5 = 15 scores 2 for seat 1.
	_, points, err = g.PlayCard(1, 0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if points != 2 {
		t.Errorf("fifteen points = %d, want 2", points)
	}
	if g.Players[1].Score != 2 {
		t.Errorf("seat 1 score = %d, want 2", g.Players[1].Score)
	}
}

func TestPlayClearsPassSet(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankNine)),
		hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankNine)),
	)
	if _, _, err := g.PlayCard(0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Go(1); err != nil {
		t.Fatal(err)
	}
	if g.PassSet == 0 {
		t.Fatal("pass not recorded")
	}
	// Seat 0 is up again (seat 1 passed) and plays; passes must clear.
	if g.Current != 0 {
		t.Fatalf("current = %d, want 0", g.Current)
	}
	if _, _, err := g.PlayCard(0, 0); err != nil {
		t.Fatal(err)
	}
	if g.PassSet != 0 {
		t.Error("a play must reset all pending passes")
	}
}

func TestGoSubRoundReset(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankNine)),
		hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankNine)),
	)
	// 10 + 10 + 9 = 29; nobody can play under 31.
	mustPlay(t, &g, 0, 0)
	mustPlay(t, &g, 1, 0)
	mustPlay(t, &g, 0, 0)
	if g.PegTotal != 29 {
		t.Fatalf("total = %d, want 29", g.PegTotal)
	}

	// Seat 0 is out of cards, so seat 1 is the only seat that must
	// pass; its go ends the sub-round at once.
	res, err := g.Go(1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.SubRoundEnded {
		t.Fatal("expected sub-round end")
	}
	if res.Scorer != 0 || res.Points != 1 {
		t.Errorf("scorer/points = %d/%d, want 0/1", res.Scorer, res.Points)
	}
	if g.Players[0].Score != 1 {
		t.Errorf("seat 0 score = %d, want 1", g.Players[0].Score)
	}
	if g.PegTotal != 0 || g.PegLen != 0 || g.PassSet != 0 {
		t.Error("sub-round state must reset to zero")
	}
	// New sub-round leads with the next active seat at or after the
	// scorer — seat 0 is empty, so seat 1 leads.
	if g.Current != 1 {
		t.Errorf("new sub-round lead = %d, want 1", g.Current)
	}
}

func TestGoNoPointAtThirtyOne(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankKing), NewCard(SuitHearts, RankAce), NewCard(SuitHearts, RankTwo)),
		hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankKing), NewCard(SuitClubs, RankAce), NewCard(SuitClubs, RankTwo)),
	)
	// 10 + 10 + 10 + 1 = 31: the ace scores 2 immediately.
	mustPlay(t, &g, 0, 0)
	mustPlay(t, &g, 1, 0)
	mustPlay(t, &g, 0, 0)
	_, points, err := g.PlayCard(1, 1) // AC
	if err != nil {
		t.Fatal(err)
	}
	if points != 2 {
		t.Fatalf("31 points = %d, want 2", points)
	}
	scoreBefore := g.Players[1].Score

	// Both seats still hold cards; both are stuck at 31 and pass.
	res, err := g.Go(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.SubRoundEnded {
		t.Fatal("first pass should not end the sub-round")
	}
	res, err = g.Go(1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.SubRoundEnded {
		t.Fatal("expected sub-round end")
	}
	if res.Points != 0 {
		t.Errorf("points at 31 = %d, want 0 (already scored)", res.Points)
	}
	if g.Players[1].Score != scoreBefore {
		t.Error("no extra point may be awarded on a 31 sub-round end")
	}
	if g.PegTotal != 0 {
		t.Errorf("total = %d, want 0 after reset", g.PegTotal)
	}
	// The scorer (seat 1) still holds cards and leads the new sub-round.
	if g.Current != 1 {
		t.Errorf("lead = %d, want scorer 1", g.Current)
	}
}

func TestGoBeforeAnyPlayNeverEndsSubRound(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen)),
		hand(NewCard(SuitClubs, RankTen)),
	)
	res, err := g.Go(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.SubRoundEnded || res.Scorer != -1 {
		t.Error("a pass with no play on the table cannot end the sub-round")
	}
	if g.Current != 1 {
		t.Errorf("current = %d, want 1", g.Current)
	}
}

func TestPeggingTotalAlwaysResetsAfterFullPass(t *testing.T) {
	// Property from the rules: once every seat still holding cards has
	// passed since the last play, the count is exactly 0.
	deals := [][][]Card{
		{
			hand(NewCard(SuitHearts, RankKing), NewCard(SuitHearts, RankQueen), NewCard(SuitHearts, RankJack)),
			hand(NewCard(SuitClubs, RankKing), NewCard(SuitClubs, RankQueen), NewCard(SuitClubs, RankJack)),
		},
		{
			hand(NewCard(SuitHearts, RankNine), NewCard(SuitHearts, RankEight), NewCard(SuitHearts, RankSeven), NewCard(SuitHearts, RankSix)),
			hand(NewCard(SuitClubs, RankNine), NewCard(SuitClubs, RankEight), NewCard(SuitClubs, RankSeven), NewCard(SuitClubs, RankSix)),
		},
		{
			hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankFive)),
			hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankFive)),
			hand(NewCard(SuitSpades, RankTen), NewCard(SuitSpades, RankFive)),
		},
	}
	for d, hands := range deals {
		g := makePeggingGame(hands...)
		for steps := 0; g.Phase == PhasePlay; steps++ {
			if steps > 100 {
				t.Fatalf("deal %d: pegging did not terminate", d)
			}
			cur := g.Current
			played := false
			for i := uint8(0); i < g.Players[cur].HandLen; i++ {
				if g.CanPlayCard(cur, i) {
					mustPlay(t, &g, cur, i)
					played = true
					break
				}
			}
			if played {
				continue
			}
			res, err := g.Go(cur)
			if err != nil {
				t.Fatalf("deal %d: go: %v", d, err)
			}
			if res.SubRoundEnded && g.PegTotal != 0 {
				t.Fatalf("deal %d: total = %d after full pass, want 0", d, g.PegTotal)
			}
		}
	}
}

func TestLastCardBonusOnExhaustingPlay(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTwo)),
		hand(NewCard(SuitClubs, RankTwo)),
	)
	mustPlay(t, &g, 0, 0)
	// Seat 1's two empties every hand at total 4: pair (2) + last card
	// bonus (1) = 3, and pegging completes.
	_, points, err := g.PlayCard(1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if points != 3 {
		t.Errorf("points = %d, want 3 (pair 2 + last card 1)", points)
	}
	if g.Phase != PhaseShow {
		t.Errorf("phase = %s, want show", g.Phase)
	}
}

func TestNoLastCardBonusAtThirtyOne(t *testing.T) {
	g := makePeggingGame(
		hand(NewCard(SuitHearts, RankTen), NewCard(SuitHearts, RankKing)),
		hand(NewCard(SuitClubs, RankTen), NewCard(SuitClubs, RankAce)),
	)
	mustPlay(t, &g, 0, 0) // 10
	mustPlay(t, &g, 1, 0) // 20
	mustPlay(t, &g, 0, 0) // 30
	_, points, err := g.PlayCard(1, 0) // ace lands exactly on 31
	if err != nil {
		t.Fatal(err)
	}
	if points != 2 {
		t.Errorf("points = %d, want 2 (31 only, no last-card bonus)", points)
	}
	if g.Phase != PhaseShow {
		t.Errorf("phase = %s, want show", g.Phase)
	}
}

func TestPeggingCommandsRejectedOutsidePlayPhase(t *testing.T) {
	g := NewGame(7, 2)
	if _, _, err := g.PlayCard(0, 0); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("err = %v, want ErrGameNotStarted", err)
	}
	if err := g.BeginRound(0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Go(1); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("err = %v, want ErrWrongPhase", err)
	}
}

func mustPlay(t *testing.T, g *GameState, player, idx uint8) {
	t.Helper()
	if _, _, err := g.PlayCard(player, idx); err != nil {
		t.Fatalf("seat %d play %d: %v", player, idx, err)
	}
}

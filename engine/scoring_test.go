package engine

import "testing"

func hand(cards ...Card) []Card { return cards }

func TestCountFifteensMaxHand(t *testing.T) {
	// 5H 5D 5C JS + starter 5S: four three-five combos plus four J+5
	// combos = 8 fifteens = 16 points.
	cards := hand(
		NewCard(SuitHearts, RankFive),
		NewCard(SuitDiamonds, RankFive),
		NewCard(SuitClubs, RankFive),
		NewCard(SuitSpades, RankJack),
		NewCard(SuitSpades, RankFive),
	)
	if got := CountFifteens(cards); got != 16 {
		t.Errorf("CountFifteens = %d, want 16", got)
	}
	if got := CountPairs(cards); got != 12 {
		t.Errorf("CountPairs = %d, want 12", got)
	}
	// Fixed regression value: 16 + 12 + 0 runs = 28. The canonical 29
	// includes the nobs point this ruleset does not score.
	if got := ScoreShowCards(cards); got != 28 {
		t.Errorf("ScoreShowCards = %d, want 28", got)
	}
}

func TestCountPairs(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  int
	}{
		{"no pairs", hand(NewCard(SuitHearts, RankAce), NewCard(SuitHearts, RankTwo)), 0},
		{"one pair", hand(NewCard(SuitHearts, RankSeven), NewCard(SuitClubs, RankSeven)), 2},
		{"triple", hand(NewCard(SuitHearts, RankNine), NewCard(SuitClubs, RankNine), NewCard(SuitSpades, RankNine)), 6},
		{"quad", hand(NewCard(SuitHearts, RankFive), NewCard(SuitClubs, RankFive), NewCard(SuitSpades, RankFive), NewCard(SuitDiamonds, RankFive)), 12},
	}
	for _, tt := range tests {
		if got := CountPairs(tt.cards); got != tt.want {
			t.Errorf("%s: CountPairs = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCountRunsDoubleRun(t *testing.T) {
	// 3H 3D 4C 5S: one run of 3-4-5 through each of the duplicated
	// threes = 3 * 2 = 6 run points; the embedded pair adds 2 more.
	cards := hand(
		NewCard(SuitHearts, RankThree),
		NewCard(SuitDiamonds, RankThree),
		NewCard(SuitClubs, RankFour),
		NewCard(SuitSpades, RankFive),
	)
	if got := CountRuns(cards); got != 6 {
		t.Errorf("CountRuns = %d, want 6", got)
	}
	if got := CountRuns(cards) + CountPairs(cards); got != 8 {
		t.Errorf("runs+pairs = %d, want 8", got)
	}
}

func TestCountRuns(t *testing.T) {
	tests := []struct {
		name  string
		cards []Card
		want  int
	}{
		{
			"too short",
			hand(NewCard(SuitHearts, RankAce), NewCard(SuitHearts, RankTwo)),
			0,
		},
		{
			"no run",
			hand(NewCard(SuitHearts, RankAce), NewCard(SuitHearts, RankFive), NewCard(SuitHearts, RankNine)),
			0,
		},
		{
			"single run of five",
			hand(NewCard(SuitHearts, RankAce), NewCard(SuitClubs, RankTwo), NewCard(SuitSpades, RankThree), NewCard(SuitDiamonds, RankFour), NewCard(SuitHearts, RankFive)),
			5,
		},
		{
			// Only the maximal run counts: 2-3-4-5 scores 4, the
			// embedded 3-card runs do not.
			"longer run absorbs shorter",
			hand(NewCard(SuitHearts, RankTwo), NewCard(SuitClubs, RankThree), NewCard(SuitSpades, RankFour), NewCard(SuitDiamonds, RankFive)),
			4,
		},
		{
			"triple run",
			hand(NewCard(SuitHearts, RankFour), NewCard(SuitClubs, RankFour), NewCard(SuitSpades, RankFour), NewCard(SuitDiamonds, RankFive), NewCard(SuitHearts, RankSix)),
			9,
		},
		{
			// Two disjoint runs of the same maximal length both score.
			"two disjoint maximal runs",
			hand(
				NewCard(SuitHearts, RankAce), NewCard(SuitClubs, RankTwo), NewCard(SuitSpades, RankThree),
				NewCard(SuitHearts, RankEight), NewCard(SuitClubs, RankNine), NewCard(SuitSpades, RankTen),
			),
			6,
		},
		{
			// A longer run elsewhere suppresses the shorter one.
			"shorter disjoint run suppressed",
			hand(
				NewCard(SuitHearts, RankAce), NewCard(SuitClubs, RankTwo), NewCard(SuitSpades, RankThree), NewCard(SuitDiamonds, RankFour),
				NewCard(SuitHearts, RankNine), NewCard(SuitClubs, RankTen), NewCard(SuitSpades, RankJack),
			),
			4,
		},
	}
	for _, tt := range tests {
		if got := CountRuns(tt.cards); got != tt.want {
			t.Errorf("%s: CountRuns = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestScorePeggingPlayFifteenAndThirtyOne(t *testing.T) {
	seq := hand(NewCard(SuitHearts, RankTen), NewCard(SuitClubs, RankFive))
	if got := ScorePeggingPlay(seq, 15); got != 2 {
		t.Errorf("fifteen = %d, want 2", got)
	}
	seq = hand(NewCard(SuitHearts, RankTen), NewCard(SuitClubs, RankKing), NewCard(SuitSpades, RankJack), NewCard(SuitDiamonds, RankAce))
	if got := ScorePeggingPlay(seq, 31); got != 2 {
		t.Errorf("thirty-one = %d, want 2", got)
	}
}

func TestScorePeggingPlayTrailingPairs(t *testing.T) {
	// Pair streak scores 2*(m-1): pair 2, triple 4, quad 6.
	seq := hand(NewCard(SuitHearts, RankSeven), NewCard(SuitClubs, RankSeven))
	if got := ScorePeggingPlay(seq, 14); got != 2 {
		t.Errorf("pair = %d, want 2", got)
	}
	seq = append(seq, NewCard(SuitSpades, RankSeven))
	if got := ScorePeggingPlay(seq, 21); got != 4 {
		t.Errorf("triple = %d, want 4", got)
	}
	// A card of another rank in between breaks the streak.
	seq = hand(NewCard(SuitHearts, RankSeven), NewCard(SuitClubs, RankTwo), NewCard(SuitSpades, RankSeven))
	if got := ScorePeggingPlay(seq, 16); got != 0 {
		t.Errorf("broken streak = %d, want 0", got)
	}
}

func TestScorePeggingPlayTrailingRuns(t *testing.T) {
	// 4-5-6 makes a run of 3 and lands the count on 15.
	seq := hand(NewCard(SuitHearts, RankFour), NewCard(SuitClubs, RankFive), NewCard(SuitSpades, RankSix))
	if got := ScorePeggingPlay(seq, 15); got != 5 {
		t.Errorf("run to fifteen = %d, want 5", got)
	}
	// Out-of-order cards still form a run; only the longest window
	// counts and scanning stops after it.
	seq = hand(NewCard(SuitHearts, RankFive), NewCard(SuitClubs, RankThree), NewCard(SuitSpades, RankFour), NewCard(SuitDiamonds, RankTwo))
	if got := ScorePeggingPlay(seq, 14); got != 4 {
		t.Errorf("shuffled run of four = %d, want 4", got)
	}
	// A duplicate inside the window disqualifies it — no multiplicity
	// multiplier during pegging.
	seq = hand(NewCard(SuitHearts, RankThree), NewCard(SuitClubs, RankFour), NewCard(SuitSpades, RankFour), NewCard(SuitDiamonds, RankFive))
	if got := ScorePeggingPlay(seq, 16); got != 0 {
		t.Errorf("duplicate in window = %d, want 0", got)
	}
	// An early card outside the range does not block the shorter tail.
	seq = hand(NewCard(SuitHearts, RankNine), NewCard(SuitClubs, RankAce), NewCard(SuitSpades, RankTwo), NewCard(SuitDiamonds, RankThree))
	if got := ScorePeggingPlay(seq, 15); got != 5 {
		t.Errorf("tail run after unrelated card = %d, want 5 (run 3 + fifteen 2)", got)
	}
}

func TestScoreShowCardsEmpty(t *testing.T) {
	if got := ScoreShowCards(nil); got != 0 {
		t.Errorf("ScoreShowCards(nil) = %d, want 0", got)
	}
}

// Package engine implements the cribbage rules core.
//
// The engine is a pure, self-contained state machine: callers feed it
// commands (discard, play, go) one at a time and read back points and
// phase transitions. It performs no I/O and holds no locks; the service
// adapter is responsible for serializing access.
package engine

import "errors"

const (
	MaxPlayers  = 4
	MaxHandSize = 6
	DeckSize    = 52
	// MaxCrib is 2 discards per player at the 4-player maximum.
	MaxCrib = 2 * MaxPlayers

	// WinningScore is the score threshold that ends the game.
	WinningScore = 121
	// PeggingCap is the running-total ceiling during pegging.
	PeggingCap = 31
)

// Phase is the round lifecycle phase. It is a closed enum: every
// transition switches exhaustively over these values.
type Phase uint8

const (
	PhaseDeal Phase = iota
	PhaseDiscard
	PhasePlay
	PhaseShow
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDeal:
		return "deal"
	case PhaseDiscard:
		return "discard"
	case PhasePlay:
		return "play"
	case PhaseShow:
		return "show"
	}
	return "unknown"
}

// Command rejection kinds. Every rejected command wraps exactly one of
// these; a rejection leaves the state unchanged.
var (
	ErrGameNotStarted   = errors.New("game not started")
	ErrGameAlreadyOver  = errors.New("game already over")
	ErrInvalidTurn      = errors.New("not your turn")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrIllegalPlay      = errors.New("illegal play")
	ErrDuplicateDiscard = errors.New("duplicate discard")
	ErrWrongPhase       = errors.New("wrong phase")
)

// PlayerState holds one seat's per-round state and running score.
type PlayerState struct {
	Hand    [MaxHandSize]Card
	HandLen uint8
	// Snapshot is the post-discard hand frozen for the show phase;
	// pegging empties Hand but never touches Snapshot.
	Snapshot  [MaxHandSize]Card
	SnapLen   uint8
	Score     int16
	Discarded bool // has discarded to the crib this round
}

// Flags bitfield.
const (
	FlagStarted  uint16 = 1 << 0
	FlagGameOver uint16 = 1 << 1
)

// GameState holds the complete, self-contained state of a cribbage game.
// It is a flat value type (no pointers, no slices), so a plain struct
// copy is a full snapshot.
type GameState struct {
	Players    [MaxPlayers]PlayerState
	NumPlayers uint8

	Deck    [DeckSize]Card
	DeckLen uint8

	Crib    [MaxCrib]Card
	CribLen uint8
	Starter Card

	Phase   Phase
	Dealer  uint8
	Current uint8 // current pegging actor

	PegTotal uint8
	PegSeq   [MaxPlayers * MaxHandSize]Card
	PegLen   uint8
	PassSet  uint8 // bitmask of seats that said "go" this sub-round
	// LastPlayed is the seat that played the most recent card this
	// sub-round, or -1 if none.
	LastPlayed    int8
	BonusAwarded  bool // last-card +1 already given this sub-round
	SnapshotTaken bool

	Flags  uint16
	Winner int8

	RNG uint64
}

// NewGame initializes a GameState for the given seat count. Seats are
// ids 0..numPlayers-1. The deck is built per round by BeginRound.
func NewGame(seed uint64, numPlayers uint8) GameState {
	if numPlayers < 2 {
		numPlayers = 2
	}
	if numPlayers > MaxPlayers {
		numPlayers = MaxPlayers
	}
	var g GameState
	g.NumPlayers = numPlayers
	g.RNG = seed
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}
	g.Starter = EmptyCard
	g.LastPlayed = -1
	g.Winner = -1
	return g
}

// xorshift64 RNG — inline, no interface.
func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

func (g *GameState) IsStarted() bool  { return g.Flags&FlagStarted != 0 }
func (g *GameState) IsGameOver() bool { return g.Flags&FlagGameOver != 0 }

// Seats returns the seated player ids in ascending order.
func (g *GameState) Seats() []uint8 {
	ids := make([]uint8, g.NumPlayers)
	for i := range ids {
		ids[i] = uint8(i)
	}
	return ids
}

// hasCards reports whether a seat still holds pegging cards.
func (g *GameState) hasCards(id uint8) bool {
	return g.Players[id].HandLen > 0
}

// allHandsEmpty reports whether every seat has pegged out its hand.
func (g *GameState) allHandsEmpty() bool {
	for p := uint8(0); p < g.NumPlayers; p++ {
		if g.Players[p].HandLen > 0 {
			return false
		}
	}
	return true
}

// passed reports whether a seat is in the current sub-round's pass set.
func (g *GameState) passed(id uint8) bool { return g.PassSet&(1<<id) != 0 }

// checkWin evaluates the win threshold. Called after every score
// mutation; once the flag is set the winner never changes.
func (g *GameState) checkWin() {
	if g.IsGameOver() {
		return
	}
	// Dealer priority: if the dealer crossed the threshold it wins
	// outright, mirroring last-count precedence.
	if g.Players[g.Dealer].Score >= WinningScore {
		g.Winner = int8(g.Dealer)
		g.Flags |= FlagGameOver
		return
	}
	winner := int8(-1)
	best := int16(0)
	for p := uint8(0); p < g.NumPlayers; p++ {
		if s := g.Players[p].Score; s >= WinningScore && s > best {
			winner = int8(p)
			best = s
		}
	}
	if winner >= 0 {
		g.Winner = winner
		g.Flags |= FlagGameOver
	}
}

// GetWinner returns the winning seat once the game is over.
func (g *GameState) GetWinner() (uint8, bool) {
	if !g.IsGameOver() || g.Winner < 0 {
		return 0, false
	}
	return uint8(g.Winner), true
}

// Scores returns the current scores for the seated players.
func (g *GameState) Scores() []int {
	out := make([]int, g.NumPlayers)
	for p := uint8(0); p < g.NumPlayers; p++ {
		out[p] = int(g.Players[p].Score)
	}
	return out
}

// Snapshot is a complete value-copy of GameState.
// Saving and restoring are plain struct copies.
type Snapshot GameState

// Save returns a snapshot of the current game state.
func (g *GameState) Save() Snapshot { return Snapshot(*g) }

// Restore replaces the game state with the given snapshot.
func (g *GameState) Restore(s Snapshot) { *g = GameState(s) }

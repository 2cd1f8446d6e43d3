package engine

// Suit constants — packed into upper 4 bits of Card.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants — packed into lower 4 bits of Card.
const (
	RankAce   uint8 = 0
	RankTwo   uint8 = 1
	RankThree uint8 = 2
	RankFour  uint8 = 3
	RankFive  uint8 = 4
	RankSix   uint8 = 5
	RankSeven uint8 = 6
	RankEight uint8 = 7
	RankNine  uint8 = 8
	RankTen   uint8 = 9
	RankJack  uint8 = 10
	RankQueen uint8 = 11
	RankKing  uint8 = 12
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank.
type Card uint8

// EmptyCard represents the absence of a card (e.g. starter not yet drawn).
const EmptyCard Card = 0xFF

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// Order returns the run-order of the card: Ace=1 through King=13.
// Suits never participate in ordering.
func (c Card) Order() int {
	return int(c.Rank()) + 1
}

// Value returns the pegging/fifteen value of the card:
// Ace=1, Two–Nine=face, Ten/Jack/Queen/King=10.
func (c Card) Value() int {
	if v := int(c.Rank()) + 1; v < 10 {
		return v
	}
	return 10
}

var rankStrings = [13]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
var suitStrings = [4]string{"H", "D", "C", "S"}

// String renders the card as rank+suit, e.g. "5H" or "10S".
func (c Card) String() string {
	if c == EmptyCard {
		return "--"
	}
	r, s := c.Rank(), c.Suit()
	if r > RankKing || s > SuitSpades {
		return "??"
	}
	return rankStrings[r] + suitStrings[s]
}

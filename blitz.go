package blitz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Card struct {
	Rank Rank
	Suit Suit
}

func (c Card) String() string {
	return fmt.Sprintf("%s of %s", c.Rank.String(), c.Suit.String())
}

// Value is the point value the card adds to its suit bucket.
func (c Card) Value() int {
	return c.Rank.Value()
}

type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) IsValid() bool {
	return Two <= r && r <= Ace
}

func (r Rank) IsFace() bool {
	return Jack <= r && r <= King
}

// Value maps Ace to 11, the face cards to 10 and numerals to themselves.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r.IsFace():
		return 10
	default:
		return int(r)
	}
}

func (r Rank) String() string {
	if Two <= r && r <= Ten {
		return strconv.Itoa(int(r))
	}

	switch r {
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace:
		return "Ace"
	default:
		return fmt.Sprintf("invalid_rank(= %d)", int(r))
	}
}

// Token is the rank as spelled by the deck API ("ACE", "KING", "10", ...).
func (r Rank) Token() string {
	if r.IsFace() || r == Ace {
		return strings.ToUpper(r.String())
	}
	return r.String()
}

type Suit int

// Enumeration order is the scoring tie-break order.
const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

const SuitCount = 4

var AllSuits = [SuitCount]Suit{Hearts, Diamonds, Clubs, Spades}

func (s Suit) IsValid() bool {
	return Hearts <= s && s <= Spades
}

func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "invalid_suit"
	}
}

func (s Suit) Token() string {
	return strings.ToUpper(s.String())
}

var ErrInvalidRankToken = errors.New("invalid rank token")
var ErrInvalidSuitToken = errors.New("invalid suit token")

func ParseRankToken(token string) (Rank, error) {
	switch t := strings.ToUpper(strings.TrimSpace(token)); t {
	case "ACE", "A":
		return Ace, nil
	case "KING", "K":
		return King, nil
	case "QUEEN", "Q":
		return Queen, nil
	case "JACK", "J":
		return Jack, nil
	default:
		n, err := strconv.Atoi(t)
		if err != nil || n < int(Two) || n > int(Ten) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRankToken, token)
		}
		return Rank(n), nil
	}
}

func ParseSuitToken(token string) (Suit, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "HEARTS", "H":
		return Hearts, nil
	case "DIAMONDS", "D":
		return Diamonds, nil
	case "CLUBS", "C":
		return Clubs, nil
	case "SPADES", "S":
		return Spades, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSuitToken, token)
	}
}

// CardFromTokens builds a card from the rank/suit tokens of a draw response.
func CardFromTokens(rankToken, suitToken string) (Card, error) {
	rank, err := ParseRankToken(rankToken)
	if err != nil {
		return Card{}, err
	}
	suit, err := ParseSuitToken(suitToken)
	if err != nil {
		return Card{}, err
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// NewFullDeck returns the 52 cards in suit-major order.
func NewFullDeck() []Card {
	cards := make([]Card, 0, 52)
	for _, suit := range AllSuits {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// Pile is a stack of cards, top at the end.
type Pile []Card

func (p Pile) String() string {
	if len(p) == 0 {
		return "[]"
	}

	var sb strings.Builder

	sb.WriteString("[")

	for _, card := range p[0 : len(p)-1] {
		sb.WriteString(card.String())
		sb.WriteString("|")
	}

	sb.WriteString(p[len(p)-1].String())
	sb.WriteString("]")

	return sb.String()
}

func (p Pile) Len() int {
	return len(p)
}

func (p Pile) IsEmpty() bool {
	return len(p) == 0
}

func (p Pile) Push(c Card) Pile {
	return append(p, c)
}

var ErrEmptyPile = errors.New("empty pile")

func (p Pile) Top() (Card, error) {
	if p.IsEmpty() {
		return Card{}, ErrEmptyPile
	}
	return p[len(p)-1], nil
}

func (p Pile) MustTop() Card {
	if p.IsEmpty() {
		panic("Pile.MustTop() called on empty pile")
	}
	return p[len(p)-1]
}

func (p Pile) Pop() (Pile, error) {
	if p.IsEmpty() {
		return p, ErrEmptyPile
	}
	return p[0 : len(p)-1], nil
}

func (p Pile) MustPop() Pile {
	if p.IsEmpty() {
		panic("Pile.MustPop() called on an empty pile")
	}
	return p[0 : len(p)-1]
}

// KeepTop drops everything below the top card. Used when the deck is replaced.
func (p Pile) KeepTop() Pile {
	if len(p) <= 1 {
		return p
	}
	return Pile{p[len(p)-1]}
}

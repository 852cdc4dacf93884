package blitz

import (
	"errors"
	"fmt"
	"strings"
)

// [unused bits][4 bits for rank][2 bits for suit]
const suitBitsCount = 2

var ErrInvalidCardCode = errors.New("invalid card code")

// EncodeUint32 packs the card into a small integer, unique per card of a deck.
func (c Card) EncodeUint32() uint32 {
	return (uint32(c.Rank) << suitBitsCount) | uint32(c.Suit)
}

// Code is the two character deck API code, e.g. "AS", "0H" for the ten of hearts.
func (c Card) Code() string {
	var r string
	switch c.Rank {
	case Ten:
		r = "0"
	case Jack, Queen, King, Ace:
		r = c.Rank.Token()[:1]
	default:
		r = c.Rank.String()
	}
	return r + c.Suit.Token()[:1]
}

func ParseCardCode(code string) (Card, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCardCode, code)
	}

	rankToken := code[:1]
	if rankToken == "0" {
		rankToken = "10"
	}

	card, err := CardFromTokens(rankToken, code[1:])
	if err != nil {
		return Card{}, fmt.Errorf("%w: %q: %v", ErrInvalidCardCode, code, err)
	}
	return card, nil
}

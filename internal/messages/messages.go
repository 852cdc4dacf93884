// Package messages holds the JSON bodies of the deck API, shaped after
// deckofcardsapi.com so either that service or the local dealer can serve a game.
package messages

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nrawrx3/blitz"
)

const cardImageURLFormat = "https://deckofcardsapi.com/static/img/%s.png"

// Sent in reply to "new/shuffle" and "{deck_id}/shuffle".
type NewDeckResponse struct {
	Success   bool   `json:"success"`
	DeckID    string `json:"deck_id"`
	Shuffled  bool   `json:"shuffled"`
	Remaining int    `json:"remaining"`
}

type DrawResponse struct {
	Success   bool       `json:"success"`
	DeckID    string     `json:"deck_id"`
	Cards     []WireCard `json:"cards"`
	Remaining int        `json:"remaining"`
	Error     string     `json:"error,omitempty"`
}

// WireCard is a card as it travels over the wire. Value and Suit are the rank
// and suit tokens, e.g. "KING" and "HEARTS".
type WireCard struct {
	Code  string `json:"code"`
	Image string `json:"image"`
	Value string `json:"value"`
	Suit  string `json:"suit"`
}

func NewWireCard(card blitz.Card) WireCard {
	code := card.Code()
	return WireCard{
		Code:  code,
		Image: fmt.Sprintf(cardImageURLFormat, code),
		Value: card.Rank.Token(),
		Suit:  card.Suit.Token(),
	}
}

// Card reads the rank and suit tokens. The code is only a fallback for
// replies that leave the tokens out.
func (w WireCard) Card() (blitz.Card, error) {
	if w.Value == "" && w.Suit == "" && w.Code != "" {
		return blitz.ParseCardCode(w.Code)
	}
	return blitz.CardFromTokens(w.Value, w.Suit)
}

func (r *DrawResponse) DecodeCards() ([]blitz.Card, error) {
	cards := make([]blitz.Card, 0, len(r.Cards))
	for i, wireCard := range r.Cards {
		card, err := wireCard.Card()
		if err != nil {
			return nil, fmt.Errorf("card %d of draw from %s: %w", i, r.DeckID, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func NewDrawResponse(deckID string, cards []blitz.Card, remaining int) DrawResponse {
	wireCards := make([]WireCard, 0, len(cards))
	for _, card := range cards {
		wireCards = append(wireCards, NewWireCard(card))
	}
	return DrawResponse{
		Success:   true,
		DeckID:    deckID,
		Cards:     wireCards,
		Remaining: remaining,
	}
}

func DecodeNewDeckResponse(r io.Reader) (NewDeckResponse, error) {
	var body NewDeckResponse
	err := json.NewDecoder(r).Decode(&body)
	return body, err
}

func DecodeDrawResponse(r io.Reader) (DrawResponse, error) {
	var body DrawResponse
	err := json.NewDecoder(r).Decode(&body)
	return body, err
}

package dealer

import (
	"context"
	"errors"

	"github.com/nrawrx3/blitz"
)

// Gateway serves decks straight from the dealer's registry without going
// through HTTP.
type Gateway struct {
	dealer *Dealer
}

func (dealer *Dealer) Gateway() *Gateway {
	return &Gateway{dealer: dealer}
}

func (g *Gateway) CreateDeck(ctx context.Context) (blitz.DeckHandle, error) {
	if err := ctx.Err(); err != nil {
		return blitz.DeckHandle{}, blitz.NewGatewayError("create deck", err)
	}
	deckID, remaining := g.dealer.registry.newDeck(1)
	return blitz.DeckHandle{ID: deckID, Remaining: remaining}, nil
}

func (g *Gateway) Draw(ctx context.Context, deckID string, count int) (blitz.DrawResult, error) {
	if err := ctx.Err(); err != nil {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", err)
	}

	cards, remaining, err := g.dealer.registry.draw(deckID, count)
	var notEnough *NotEnoughCardsError
	if err != nil && !errors.As(err, &notEnough) {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", err)
	}
	return blitz.DrawResult{Cards: cards, Remaining: remaining}, nil
}

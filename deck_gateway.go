package blitz

import (
	"context"
	"errors"
	"fmt"
)

// DeckHandle names a shuffled deck held by the deck service.
type DeckHandle struct {
	ID        string
	Remaining int
}

type DrawResult struct {
	Cards     []Card
	Remaining int
}

// DeckGateway is the external card service. A Draw returning no cards or
// zero remaining signals exhaustion, not failure.
type DeckGateway interface {
	CreateDeck(ctx context.Context) (DeckHandle, error)
	Draw(ctx context.Context, deckID string, count int) (DrawResult, error)
}

var ErrGatewayUnavailable = errors.New("deck gateway unavailable")
var ErrMalformedDraw = errors.New("malformed draw response")

// GatewayError marks any failure that came from the deck gateway. The action
// that triggered it was abandoned without touching the table state.
type GatewayError struct {
	Op     string
	Reason error
}

func NewGatewayError(op string, reason error) *GatewayError {
	return &GatewayError{Op: op, Reason: reason}
}

func (e *GatewayError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("deck gateway %s failed", e.Op)
	}
	return fmt.Sprintf("deck gateway %s failed: %s", e.Op, e.Reason.Error())
}

func (e *GatewayError) Unwrap() error {
	return e.Reason
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}

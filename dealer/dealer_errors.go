package dealer

import (
	"errors"
	"fmt"
)

var ErrDeckNotFound = errors.New("deck ID does not exist")
var ErrInvalidDrawCount = errors.New("invalid draw count")
var ErrInvalidDeckCount = errors.New("invalid deck count")

// NotEnoughCardsError is what a draw of more cards than remain reports, next
// to the cards that could still be drawn.
type NotEnoughCardsError struct {
	Requested int
	Remaining int
}

func (e *NotEnoughCardsError) Error() string {
	return fmt.Sprintf("Not enough cards remaining to draw %d additional (%d left)", e.Requested, e.Remaining)
}

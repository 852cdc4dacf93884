package blitz

import (
	"errors"
	"fmt"
)

var ErrIllegalAction = errors.New("illegal action")
var ErrNoEligiblePlayer = errors.New("no eligible next player")
var ErrSettlementInProgress = errors.New("round settlement already in progress")
var ErrInvalidConfig = errors.New("invalid table config")

// IllegalActionError is returned when an action does not fit the current
// phase. The table state is left untouched.
type IllegalActionError struct {
	Action ActionKind
	Phase  Phase
	Turn   TurnPhase
	Reason string
}

func illegal(s *State, action ActionKind, reason string) *IllegalActionError {
	return &IllegalActionError{Action: action, Phase: s.Phase, Turn: s.Turn, Reason: reason}
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s in phase %s/%s: %s", e.Action, e.Phase, e.Turn, e.Reason)
}

func (e *IllegalActionError) Unwrap() error {
	return ErrIllegalAction
}

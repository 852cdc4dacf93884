package bot

import (
	"context"
	"fmt"

	"github.com/nrawrx3/blitz"
	"go.uber.org/zap"
)

// Agent plays the turns of one computer-controlled seat on a table.
type Agent struct {
	Seat   int
	Brain  *Brain
	Logger *zap.SugaredLogger
}

func NewAgent(seat int, random RandomSource, logger *zap.SugaredLogger) *Agent {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Agent{
		Seat:   seat,
		Brain:  NewBrain(seat, random),
		Logger: logger.With("seat", seat),
	}
}

// Steps turns a decision into table actions. A knock during the final round
// cannot be played again, so it becomes standing pat: draw from the deck and
// throw the drawn card straight back.
func (a *Agent) Steps(decision Decision, knocked bool) []blitz.Action {
	switch decision.Action {
	case blitz.ActionKnock:
		if knocked {
			return []blitz.Action{blitz.DrawFromDeck(), blitz.Discard(blitz.DiscardDrawn)}
		}
		return []blitz.Action{blitz.Knock()}
	case blitz.ActionDrawFromDiscard:
		return []blitz.Action{blitz.DrawFromDiscard(), blitz.Discard(decision.DiscardIndex)}
	default:
		return []blitz.Action{blitz.DrawFromDeck(), blitz.Discard(decision.DiscardIndex)}
	}
}

// TakeTurn decides and plays the whole turn of the agent's seat. If an action
// fails the table keeps the state reached by the actions before it, so a
// retry resumes from the discard step when the draw already went through.
func (a *Agent) TakeTurn(ctx context.Context, table *blitz.Table) ([]blitz.GameEvent, error) {
	snapshot := table.Snapshot()
	if !snapshot.Phase.IsActive() || snapshot.Current != a.Seat {
		return nil, fmt.Errorf("%w: not seat %d's turn", blitz.ErrIllegalAction, a.Seat)
	}

	var steps []blitz.Action
	if snapshot.Turn == blitz.TurnDiscard {
		view := ViewFor(snapshot, a.Seat)
		steps = []blitz.Action{blitz.Discard(DiscardIndex(view.Hand, view.Score))}
	} else {
		view := ViewFor(snapshot, a.Seat)
		decision := a.Brain.Decide(view)
		a.Logger.Debugw("Decided", "action", decision.Action.String(), "discard_index", decision.DiscardIndex, "score", view.Score.Best)
		steps = a.Steps(decision, view.Knocked)
	}

	var events []blitz.GameEvent
	for _, step := range steps {
		stepEvents, err := table.Apply(ctx, step)
		if err != nil {
			a.Logger.Warnf("Failed to play %s: %s", step, err)
			return events, err
		}
		events = append(events, stepEvents...)
	}
	return events, nil
}

package blitz

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Table owns the authoritative game state. Every mutation goes through
// Apply, one action at a time.
type Table struct {
	sync.Mutex

	state           *State
	engine          Engine
	localPlayerName string
	logger          *zap.SugaredLogger
}

// NewTable seats the players of config. localPlayerName is used to phrase
// status messages as "You(name)"; it may be empty.
func NewTable(config Config, gateway DeckGateway, localPlayerName string, logger *zap.SugaredLogger) (*Table, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	state, err := NewState(config)
	if err != nil {
		return nil, err
	}

	return &Table{
		state:           state,
		engine:          Engine{Gateway: gateway, Logger: logger},
		localPlayerName: localPlayerName,
		logger:          logger,
	}, nil
}

// Apply runs action against the current state. On error the state is
// unchanged and no events are returned.
func (t *Table) Apply(ctx context.Context, action Action) ([]GameEvent, error) {
	t.Lock()
	defer t.Unlock()

	next, events, err := t.engine.Step(ctx, t.state, action)
	if err != nil {
		t.logger.Warnw("Action rejected", "action", action.String(), "player", t.state.CurrentPlayer().Name, "error", err)
		return nil, err
	}

	for _, event := range events {
		t.logger.Debugw(event.GameEventName(), "message", event.StringMessage(""))
	}
	if len(events) > 0 {
		next.Message = events[len(events)-1].StringMessage(t.localPlayerName)
	}

	t.state = next
	return events, nil
}

func (t *Table) Start(ctx context.Context) ([]GameEvent, error) {
	return t.Apply(ctx, Action{Kind: ActionStart})
}

func (t *Table) Knock(ctx context.Context) ([]GameEvent, error) {
	return t.Apply(ctx, Knock())
}

func (t *Table) DrawFromDeck(ctx context.Context) ([]GameEvent, error) {
	return t.Apply(ctx, DrawFromDeck())
}

func (t *Table) DrawFromDiscard(ctx context.Context) ([]GameEvent, error) {
	return t.Apply(ctx, DrawFromDiscard())
}

func (t *Table) Discard(ctx context.Context, index int) ([]GameEvent, error) {
	return t.Apply(ctx, Discard(index))
}

// Snapshot returns a deep copy that the caller is free to read or modify.
func (t *Table) Snapshot() *State {
	t.Lock()
	defer t.Unlock()
	return t.state.Clone()
}

func (t *Table) LocalPlayerName() string {
	return t.localPlayerName
}

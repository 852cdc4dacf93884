// Package session drives a table for one local human and any number of
// computer opponents.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/nrawrx3/blitz"
	"github.com/nrawrx3/blitz/bot"
	"go.uber.org/zap"
)

const (
	DefaultOpponentDelay = 800 * time.Millisecond

	// Consecutive gateway failures an opponent tolerates before giving up.
	maxOpponentAttempts = 3
)

type Config struct {
	Table         blitz.Config
	Gateway       blitz.DeckGateway
	OpponentDelay time.Duration
	Seed          int64 // 0 seeds from the clock
	Logger        *zap.SugaredLogger
}

// EventHandler receives the events of every action, human or computer, in order.
type EventHandler func(events []blitz.GameEvent)

type Session struct {
	table         *blitz.Table
	agentOfSeat   map[int]*bot.Agent
	humanSeat     int
	opponentDelay time.Duration
	logger        *zap.SugaredLogger
}

func New(config Config) (*Session, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	tableConfig := config.Table
	if tableConfig.GameID == "" {
		tableConfig.GameID = uuid.NewString()
	}

	localName := ""
	if tableConfig.HumanSeat != blitz.NoSeat && tableConfig.HumanSeat < len(tableConfig.PlayerNames) {
		localName = tableConfig.PlayerNames[tableConfig.HumanSeat]
	}

	table, err := blitz.NewTable(tableConfig, config.Gateway, localName, logger.Named("table"))
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		table:         table,
		agentOfSeat:   make(map[int]*bot.Agent),
		humanSeat:     tableConfig.HumanSeat,
		opponentDelay: config.OpponentDelay,
		logger:        logger.With("game", tableConfig.GameID),
	}

	for seat := range tableConfig.PlayerNames {
		if seat == tableConfig.HumanSeat {
			continue
		}
		random := rand.New(rand.NewSource(seed + int64(seat)))
		s.agentOfSeat[seat] = bot.NewAgent(seat, random, logger.Named("bot"))
		s.logger.Debugf("Opponent %s", s.agentOfSeat[seat].Brain.Personality)
	}

	return s, nil
}

func (s *Session) Table() *blitz.Table {
	return s.table
}

func (s *Session) Start(ctx context.Context) ([]blitz.GameEvent, error) {
	return s.table.Start(ctx)
}

func (s *Session) IsHumanTurn() bool {
	snapshot := s.table.Snapshot()
	return snapshot.Phase.IsActive() && snapshot.Current == s.humanSeat
}

func (s *Session) IsOver() bool {
	return s.table.Snapshot().Phase == blitz.PhaseGameEnd
}

// HumanAction plays action for the local human. It is rejected while another
// seat is on turn.
func (s *Session) HumanAction(ctx context.Context, action blitz.Action) ([]blitz.GameEvent, error) {
	snapshot := s.table.Snapshot()
	if s.humanSeat == blitz.NoSeat || snapshot.Current != s.humanSeat {
		return nil, &blitz.IllegalActionError{
			Action: action.Kind,
			Phase:  snapshot.Phase,
			Turn:   snapshot.Turn,
			Reason: "not your turn",
		}
	}
	return s.table.Apply(ctx, action)
}

// RunOpponents plays computer turns until the human is on turn or the game
// ends. Each turn waits for the opponent delay first.
func (s *Session) RunOpponents(ctx context.Context, onEvents EventHandler) error {
	failures := 0

	for {
		snapshot := s.table.Snapshot()
		if !snapshot.Phase.IsActive() || snapshot.Current == s.humanSeat {
			return nil
		}

		agent, ok := s.agentOfSeat[snapshot.Current]
		if !ok {
			return fmt.Errorf("no agent for seat %d", snapshot.Current)
		}

		if err := s.pause(ctx); err != nil {
			return err
		}

		events, err := agent.TakeTurn(ctx, s.table)
		if len(events) > 0 && onEvents != nil {
			onEvents(events)
		}
		if err == nil {
			failures = 0
			continue
		}

		if !blitz.IsGatewayError(err) {
			return err
		}
		failures++
		if failures >= maxOpponentAttempts {
			return fmt.Errorf("opponent at seat %d gave up after %d attempts: %w", snapshot.Current, failures, err)
		}
		s.logger.Warnf("Opponent at seat %d will retry: %s", snapshot.Current, err)
	}
}

func (s *Session) pause(ctx context.Context) error {
	if s.opponentDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.opponentDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

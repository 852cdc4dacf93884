package blitz

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type ActionKind int

const (
	ActionStart ActionKind = iota + 1
	ActionKnock
	ActionDrawFromDeck
	ActionDrawFromDiscard
	ActionDiscard
)

func (k ActionKind) String() string {
	switch k {
	case ActionStart:
		return "start"
	case ActionKnock:
		return "knock"
	case ActionDrawFromDeck:
		return "draw_from_deck"
	case ActionDrawFromDiscard:
		return "draw_from_discard"
	case ActionDiscard:
		return "discard"
	default:
		return fmt.Sprintf("invalid_action(= %d)", int(k))
	}
}

// DiscardDrawn as a discard index throws away the pending card and keeps the hand.
const DiscardDrawn = -1

type Action struct {
	Kind         ActionKind
	DiscardIndex int // Only used when Kind == ActionDiscard
}

func Knock() Action           { return Action{Kind: ActionKnock} }
func DrawFromDeck() Action    { return Action{Kind: ActionDrawFromDeck} }
func DrawFromDiscard() Action { return Action{Kind: ActionDrawFromDiscard} }
func Discard(index int) Action {
	return Action{Kind: ActionDiscard, DiscardIndex: index}
}

func (a Action) String() string {
	if a.Kind == ActionDiscard {
		if a.DiscardIndex == DiscardDrawn {
			return "discard: drawn card"
		}
		return fmt.Sprintf("discard: hand[%d]", a.DiscardIndex)
	}
	return a.Kind.String()
}

const maxDealDraws = 4

// Engine applies actions to table state. It holds no state of its own.
type Engine struct {
	Gateway DeckGateway
	Logger  *zap.SugaredLogger
}

// Step returns the state that follows action. The given state is never
// modified; on any error the caller keeps it as is.
func (e Engine) Step(ctx context.Context, state *State, action Action) (*State, []GameEvent, error) {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	tx := &transition{
		ctx:     ctx,
		s:       state.Clone(),
		gateway: e.Gateway,
		logger:  logger.With("game", state.GameID, "round", state.RoundNumber),
		events:  make([]GameEvent, 0, 8),
	}

	var err error
	switch action.Kind {
	case ActionStart:
		err = tx.start()
	case ActionKnock:
		err = tx.knock()
	case ActionDrawFromDeck:
		err = tx.drawFromDeck()
	case ActionDrawFromDiscard:
		err = tx.drawFromDiscard()
	case ActionDiscard:
		err = tx.discard(action.DiscardIndex)
	default:
		err = illegal(state, action.Kind, "unknown action")
	}

	if err != nil {
		return state, nil, err
	}
	return tx.s, tx.events, nil
}

type transition struct {
	ctx     context.Context
	s       *State
	gateway DeckGateway
	logger  *zap.SugaredLogger
	events  []GameEvent
}

func (tx *transition) emit(event GameEvent) {
	tx.events = append(tx.events, event)
}

func (tx *transition) start() error {
	s := tx.s
	if s.Phase != PhaseSetup {
		return illegal(s, ActionStart, "game already started")
	}

	handle, err := tx.gateway.CreateDeck(tx.ctx)
	if err != nil {
		return asGatewayError("create deck", err)
	}
	s.DeckID = handle.ID
	s.DeckRemaining = handle.Remaining

	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, p.Name)
	}
	tx.emit(GameStartedEvent{GameID: s.GameID, Players: names})

	return tx.beginRound()
}

// beginRound deals to every surviving seat and hands the turn to the first of them.
func (tx *transition) beginRound() error {
	s := tx.s
	if err := tx.deal(); err != nil {
		return err
	}

	seats := s.ActiveSeats()
	s.Phase = PhasePlaying
	s.Turn = TurnDecision
	s.Current = seats[0]

	names := make([]string, 0, len(seats))
	for _, seat := range seats {
		names = append(names, s.Players[seat].Name)
	}
	tx.emit(RoundDealtEvent{Round: s.RoundNumber, Players: names})
	tx.emit(TurnStartedEvent{Player: s.CurrentPlayer().Name})
	return nil
}

// deal draws one batch for every active seat and partitions it in seat order.
func (tx *transition) deal() error {
	s := tx.s
	seats := s.ActiveSeats()
	cards, err := tx.drawBatch(len(seats) * HandSize)
	if err != nil {
		return err
	}

	for i, seat := range seats {
		p := &s.Players[seat]
		p.Hand = slices.Clone(cards[i*HandSize : (i+1)*HandSize])
		p.rescore()
	}
	return nil
}

func (tx *transition) drawBatch(count int) ([]Card, error) {
	s := tx.s
	cards := make([]Card, 0, count)

	for attempt := 0; len(cards) < count; attempt++ {
		if attempt >= maxDealDraws {
			return nil, NewGatewayError("draw", fmt.Errorf("%w: could not deal %d cards", ErrMalformedDraw, count))
		}

		want := count - len(cards)
		result, err := tx.gateway.Draw(tx.ctx, s.DeckID, want)
		if err != nil {
			return nil, asGatewayError("draw", err)
		}
		if len(result.Cards) > want {
			return nil, NewGatewayError("draw", fmt.Errorf("%w: asked %d cards, got %d", ErrMalformedDraw, want, len(result.Cards)))
		}

		cards = append(cards, result.Cards...)
		s.DeckRemaining = result.Remaining

		if len(cards) < count && (len(result.Cards) == 0 || result.Remaining == 0) {
			if err := tx.replaceDeck(); err != nil {
				return nil, err
			}
		}
	}
	return cards, nil
}

func (tx *transition) replaceDeck() error {
	handle, err := tx.gateway.CreateDeck(tx.ctx)
	if err != nil {
		return asGatewayError("create deck", err)
	}
	tx.logger.Infof("Deck %s exhausted, replaced by %s", tx.s.DeckID, handle.ID)
	tx.s.DeckID = handle.ID
	tx.s.DeckRemaining = handle.Remaining
	return nil
}

// drawOne draws a single card, running the reshuffle protocol when the deck
// reports exhaustion. Only the top discard survives a reshuffle.
func (tx *transition) drawOne() (Card, error) {
	s := tx.s

	result, err := tx.gateway.Draw(tx.ctx, s.DeckID, 1)
	if err != nil {
		return Card{}, asGatewayError("draw", err)
	}
	if len(result.Cards) > 1 {
		return Card{}, NewGatewayError("draw", fmt.Errorf("%w: asked 1 card, got %d", ErrMalformedDraw, len(result.Cards)))
	}
	s.DeckRemaining = result.Remaining

	if len(result.Cards) == 1 && result.Remaining > 0 {
		return result.Cards[0], nil
	}

	if err := tx.replaceDeck(); err != nil {
		return Card{}, err
	}

	var retained *Card
	if s.Discard.Len() > 1 {
		top := s.Discard.MustTop()
		retained = &top
		s.Discard = s.Discard.KeepTop()
	}
	tx.emit(ReshuffleEvent{NewDeckID: s.DeckID, RetainedTop: retained})

	if len(result.Cards) == 1 {
		return result.Cards[0], nil
	}

	fresh, err := tx.gateway.Draw(tx.ctx, s.DeckID, 1)
	if err != nil {
		return Card{}, asGatewayError("draw", err)
	}
	if len(fresh.Cards) != 1 {
		return Card{}, NewGatewayError("draw", fmt.Errorf("%w: fresh deck gave %d cards", ErrMalformedDraw, len(fresh.Cards)))
	}
	s.DeckRemaining = fresh.Remaining
	return fresh.Cards[0], nil
}

func (tx *transition) requireDecision(action ActionKind) error {
	s := tx.s
	if !s.Phase.IsActive() {
		return illegal(s, action, "no round in progress")
	}
	if s.Turn != TurnDecision || s.Pending != nil {
		return illegal(s, action, "already drew this turn")
	}
	return nil
}

func (tx *transition) knock() error {
	s := tx.s
	if err := tx.requireDecision(ActionKnock); err != nil {
		return err
	}
	if s.Round.HasKnocked() {
		return illegal(s, ActionKnock, "someone already knocked this round")
	}

	s.Round.Knocker = s.Current
	s.Round.FinalTurnsLeft = s.ActiveCount() - 1
	s.Phase = PhaseFinalRound
	tx.emit(KnockEvent{Player: s.CurrentPlayer().Name, FinalTurns: s.Round.FinalTurnsLeft})
	tx.logger.Infof("%s knocked with %d", s.CurrentPlayer().Name, s.CurrentPlayer().Score.Best)

	return tx.advance()
}

func (tx *transition) drawFromDeck() error {
	s := tx.s
	if err := tx.requireDecision(ActionDrawFromDeck); err != nil {
		return err
	}

	card, err := tx.drawOne()
	if err != nil {
		return err
	}

	s.Pending = &card
	s.Turn = TurnDiscard
	tx.emit(CardTransferEvent{
		Source:     CardTransferNodeDeck,
		Sink:       CardTransferNodePendingSlot,
		SinkPlayer: s.CurrentPlayer().Name,
		Card:       card,
	})
	return nil
}

func (tx *transition) drawFromDiscard() error {
	s := tx.s
	if err := tx.requireDecision(ActionDrawFromDiscard); err != nil {
		return err
	}

	card, err := s.Discard.Top()
	if err != nil {
		return illegal(s, ActionDrawFromDiscard, "discard pile is empty")
	}
	s.Discard = s.Discard.MustPop()

	s.Pending = &card
	s.Turn = TurnDiscard
	tx.emit(CardTransferEvent{
		Source:     CardTransferNodePile,
		Sink:       CardTransferNodePendingSlot,
		SinkPlayer: s.CurrentPlayer().Name,
		Card:       card,
	})
	return nil
}

func (tx *transition) discard(index int) error {
	s := tx.s
	if !s.Phase.IsActive() || s.Turn != TurnDiscard || s.Pending == nil {
		return illegal(s, ActionDiscard, "no pending drawn card")
	}

	p := s.CurrentPlayer()
	if index != DiscardDrawn && (index < 0 || index >= len(p.Hand)) {
		return illegal(s, ActionDiscard, fmt.Sprintf("hand index %d out of range", index))
	}

	pending := *s.Pending
	discarded := pending
	source := CardTransferNodePendingSlot
	if index != DiscardDrawn {
		discarded = p.Hand[index]
		p.Hand[index] = pending
		source = CardTransferNodePlayerHand
	}

	s.Discard = s.Discard.Push(discarded)
	s.DiscardLog = append(s.DiscardLog, DiscardRecord{Player: p.Name, Card: discarded, Round: s.RoundNumber})
	p.rescore()
	s.Pending = nil
	s.Turn = TurnDecision
	tx.emit(CardTransferEvent{
		Source:       source,
		Sink:         CardTransferNodePile,
		SourcePlayer: p.Name,
		Card:         discarded,
	})

	if HasBlitz(p.Score) {
		return tx.settle(SettlementBlitz)
	}

	if s.Phase == PhaseFinalRound {
		s.Round.FinalTurnsLeft--
		if s.Round.FinalTurnsLeft <= 0 {
			return tx.settle(SettlementKnock)
		}
	}

	return tx.advance()
}

// nextEligibleSeat walks seats upward from the current one, skipping
// eliminated seats and, during the final round, the knocker.
func nextEligibleSeat(s *State) (int, error) {
	n := len(s.Players)
	for i := 1; i <= n; i++ {
		seat := (s.Current + i) % n
		if s.Players[seat].Eliminated {
			continue
		}
		if s.Phase == PhaseFinalRound && seat == s.Round.Knocker {
			continue
		}
		return seat, nil
	}
	return NoSeat, ErrNoEligiblePlayer
}

func (tx *transition) advance() error {
	s := tx.s

	if tx.checkEliminations() {
		return nil
	}

	next, err := nextEligibleSeat(s)
	if err != nil {
		tx.logger.Errorf("Turn advancement from seat %d found nobody: %s", s.Current, s.Summary())
		return err
	}

	s.Current = next
	s.Turn = TurnDecision
	tx.emit(TurnStartedEvent{Player: s.CurrentPlayer().Name, FinalTurn: s.Phase == PhaseFinalRound})
	return nil
}

// checkEliminations marks broke players and ends the game once a single
// player is left. Reports whether the game ended.
func (tx *transition) checkEliminations() bool {
	s := tx.s
	for _, seat := range refreshEliminations(s.Players) {
		tx.emit(PlayerEliminatedEvent{Player: s.Players[seat].Name})
	}

	seats := s.ActiveSeats()
	if len(seats) != 1 {
		return false
	}

	s.Phase = PhaseGameEnd
	s.Winner = seats[0]
	s.Current = seats[0]
	s.Pending = nil
	s.Turn = TurnDecision
	tx.emit(PlayerHasWonEvent{Player: s.Players[s.Winner].Name})
	tx.logger.Infof("%s wins the game after %d rounds", s.Players[s.Winner].Name, s.RoundNumber)
	return true
}

// beginSettlement moves the round into PhaseRoundEnd. A round that is
// already settling cannot start a second settlement.
func (tx *transition) beginSettlement() error {
	s := tx.s
	if !s.Phase.IsActive() {
		return fmt.Errorf("%w (phase %s)", ErrSettlementInProgress, s.Phase)
	}
	s.Phase = PhaseRoundEnd
	return nil
}

func (tx *transition) settle(kind SettlementKind) error {
	s := tx.s
	if err := tx.beginSettlement(); err != nil {
		return err
	}

	var settlement Settlement
	switch kind {
	case SettlementBlitz:
		settlement = SettleBlitz(s.Players, s.Current)
	default:
		var err error
		settlement, err = SettleKnock(s.Players, s.Round.Knocker)
		if err != nil {
			tx.logger.Errorf("Knock settlement failed: %s", err)
			return err
		}
	}

	eliminated := settlement.Apply(s.Players)
	tx.emit(RoundSettledEvent{
		Round:   s.RoundNumber,
		Kind:    settlement.Kind,
		Player:  s.Players[settlement.Seat].Name,
		Score:   settlement.Score,
		Success: settlement.Success,
		Changes: settlement.Changes,
	})
	for _, seat := range eliminated {
		tx.emit(PlayerEliminatedEvent{Player: s.Players[seat].Name})
	}
	tx.logger.Infof("Round %d settled (%s by %s): %+v", s.RoundNumber, settlement.Kind, s.Players[settlement.Seat].Name, settlement.Changes)

	if tx.checkEliminations() {
		return nil
	}

	s.LastReveal = revealHands(s.Players)
	return tx.startNextRound()
}

func revealHands(players []Player) []HandReveal {
	reveal := make([]HandReveal, 0, len(players))
	for _, p := range players {
		if len(p.Hand) == 0 {
			continue
		}
		reveal = append(reveal, HandReveal{Seat: p.Seat, Name: p.Name, Hand: slices.Clone(p.Hand), Score: p.Score})
	}
	return reveal
}

func (tx *transition) startNextRound() error {
	s := tx.s
	for i := range s.Players {
		s.Players[i].resetHand()
	}
	s.Discard = Pile{}
	s.Pending = nil
	s.Round = RoundState{Knocker: NoSeat}
	s.RoundNumber++
	return tx.beginRound()
}

func asGatewayError(op string, err error) error {
	if IsGatewayError(err) {
		return err
	}
	return NewGatewayError(op, err)
}

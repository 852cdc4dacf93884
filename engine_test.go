package blitz

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// stubGateway hands out the queued decks in order, then full unshuffled decks.
type stubGateway struct {
	queued  [][]Card
	decks   map[string][]Card
	created int
	err     error
}

func newStubGateway(queued ...[]Card) *stubGateway {
	return &stubGateway{queued: queued, decks: make(map[string][]Card)}
}

func (g *stubGateway) CreateDeck(ctx context.Context) (DeckHandle, error) {
	if g.err != nil {
		return DeckHandle{}, g.err
	}
	deck := NewFullDeck()
	if len(g.queued) > 0 {
		deck = g.queued[0]
		g.queued = g.queued[1:]
	}
	g.created++
	id := fmt.Sprintf("deck-%d", g.created)
	g.decks[id] = append([]Card(nil), deck...)
	return DeckHandle{ID: id, Remaining: len(deck)}, nil
}

func (g *stubGateway) Draw(ctx context.Context, deckID string, count int) (DrawResult, error) {
	if g.err != nil {
		return DrawResult{}, g.err
	}
	deck := g.decks[deckID]
	n := count
	if n > len(deck) {
		n = len(deck)
	}
	cards := append([]Card(nil), deck[:n]...)
	g.decks[deckID] = deck[n:]
	return DrawResult{Cards: cards, Remaining: len(deck) - n}, nil
}

// stackDeck puts the given cards on top of the rest of a full deck.
func stackDeck(codes ...string) []Card {
	top := hand(codes...)
	deck := append([]Card(nil), top...)
	for _, card := range NewFullDeck() {
		used := false
		for _, c := range top {
			if c == card {
				used = true
				break
			}
		}
		if !used {
			deck = append(deck, card)
		}
	}
	return deck
}

func newTestState(t *testing.T, players int) *State {
	t.Helper()
	s, err := NewState(DefaultConfig("You", players-1))
	if err != nil {
		t.Fatalf("NewState() error: %v", err)
	}
	return s
}

type stepper struct {
	t      *testing.T
	engine Engine
	state  *State
	events []GameEvent
}

func startGame(t *testing.T, gateway DeckGateway, players int) *stepper {
	t.Helper()
	st := &stepper{t: t, engine: Engine{Gateway: gateway}, state: newTestState(t, players)}
	st.do(Action{Kind: ActionStart})
	return st
}

func (st *stepper) do(actions ...Action) {
	st.t.Helper()
	for _, action := range actions {
		next, events, err := st.engine.Step(context.Background(), st.state, action)
		if err != nil {
			st.t.Fatalf("Step(%s) by seat %d error: %v", action, st.state.Current, err)
		}
		st.state = next
		st.events = append(st.events, events...)
	}
}

func countEvents[T GameEvent](events []GameEvent) int {
	n := 0
	for _, event := range events {
		if _, ok := event.(T); ok {
			n++
		}
	}
	return n
}

func TestStartDealsContiguousHands(t *testing.T) {
	g := newStubGateway(stackDeck("AH", "KH", "4H", "0C", "2D", "3S", "KD", "QD", "2C"))
	st := startGame(t, g, 3)
	s := st.state

	wantHands := [][]Card{hand("AH", "KH", "4H"), hand("0C", "2D", "3S"), hand("KD", "QD", "2C")}
	for seat, want := range wantHands {
		if !reflect.DeepEqual(s.Players[seat].Hand, want) {
			t.Errorf("seat %d hand = %v, want %v", seat, s.Players[seat].Hand, want)
		}
	}
	if s.Players[0].Score.Best != 25 || s.Players[1].Score.Best != 10 || s.Players[2].Score.Best != 20 {
		t.Errorf("scores = %d %d %d, want 25 10 20", s.Players[0].Score.Best, s.Players[1].Score.Best, s.Players[2].Score.Best)
	}
	if s.Phase != PhasePlaying || s.Turn != TurnDecision || s.Current != 0 {
		t.Errorf("after start phase=%s turn=%s current=%d", s.Phase, s.Turn, s.Current)
	}
	if s.DeckRemaining != 43 {
		t.Errorf("DeckRemaining = %d, want 43", s.DeckRemaining)
	}
	if _, ok := st.events[0].(GameStartedEvent); !ok {
		t.Errorf("first event = %s, want GameStartedEvent", st.events[0].GameEventName())
	}
	if g.created != 1 {
		t.Errorf("created %d decks, want 1", g.created)
	}
}

// 4 players with 4 coins. Seat 0 knocks on 25, the others stand pat and seat 1
// ends lowest on 10.
func TestKnockRoundEndToEnd(t *testing.T) {
	g := newStubGateway(stackDeck(
		"AH", "KH", "4H",
		"0C", "2D", "3S",
		"KD", "QD", "2C",
		"KS", "QS", "5D",
		"2H", "3H", "5H",
	))
	st := startGame(t, g, 4)

	st.do(Knock())
	if st.state.Phase != PhaseFinalRound || st.state.Round.Knocker != 0 || st.state.Round.FinalTurnsLeft != 3 {
		t.Fatalf("after knock phase=%s knocker=%d left=%d", st.state.Phase, st.state.Round.Knocker, st.state.Round.FinalTurnsLeft)
	}
	if st.state.Current != 1 {
		t.Fatalf("after knock current = %d, want 1", st.state.Current)
	}

	for seat := 1; seat <= 3; seat++ {
		if st.state.Current != seat {
			t.Fatalf("final turn of seat %d, but current = %d", seat, st.state.Current)
		}
		st.do(DrawFromDeck(), Discard(DiscardDrawn))
	}

	s := st.state
	wantCoins := []int{5, 3, 4, 4}
	for seat, want := range wantCoins {
		if s.Players[seat].Coins != want {
			t.Errorf("seat %d coins = %d, want %d", seat, s.Players[seat].Coins, want)
		}
		if s.Players[seat].Eliminated {
			t.Errorf("seat %d eliminated", seat)
		}
		if len(s.Players[seat].Hand) != HandSize {
			t.Errorf("seat %d has %d cards after the new deal", seat, len(s.Players[seat].Hand))
		}
	}
	if s.TotalCoins() != 16 {
		t.Errorf("TotalCoins() = %d, want 16", s.TotalCoins())
	}
	if s.RoundNumber != 2 || s.Phase != PhasePlaying || s.Current != 0 {
		t.Errorf("next round = %d phase=%s current=%d, want 2 playing 0", s.RoundNumber, s.Phase, s.Current)
	}
	if !s.Discard.IsEmpty() || s.Round.HasKnocked() || s.Pending != nil {
		t.Errorf("round state not reset: discard=%s knocker=%d", s.Discard, s.Round.Knocker)
	}
	if len(s.LastReveal) != 4 || s.LastReveal[1].Score.Best != 10 {
		t.Errorf("LastReveal = %+v", s.LastReveal)
	}
	if n := countEvents[RoundSettledEvent](st.events); n != 1 {
		t.Errorf("%d RoundSettledEvents, want 1", n)
	}
	if len(s.DiscardLog) != 3 {
		t.Errorf("DiscardLog has %d records, want 3", len(s.DiscardLog))
	}
}

func TestFinalRoundSkipsKnocker(t *testing.T) {
	st := startGame(t, newStubGateway(), 3)

	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 0
	st.do(Knock())                               // seat 1
	if st.state.Current != 2 || st.state.Round.FinalTurnsLeft != 2 {
		t.Fatalf("after knock current=%d left=%d, want 2 and 2", st.state.Current, st.state.Round.FinalTurnsLeft)
	}

	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 2
	if st.state.Current != 0 {
		t.Fatalf("after seat 2 current = %d, want 0", st.state.Current)
	}

	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 0, last final turn
	if st.state.RoundNumber != 2 {
		t.Errorf("RoundNumber = %d, want 2 after the final turns", st.state.RoundNumber)
	}
}

func TestNextEligibleSeat(t *testing.T) {
	s := newTestState(t, 4)
	s.Phase = PhasePlaying
	s.Current = 1
	s.Players[2].Eliminated = true

	seat, err := nextEligibleSeat(s)
	if err != nil || seat != 3 {
		t.Fatalf("nextEligibleSeat() = %d, %v, want 3", seat, err)
	}

	s.Phase = PhaseFinalRound
	s.Round.Knocker = 3
	seat, err = nextEligibleSeat(s)
	if err != nil || seat != 0 {
		t.Fatalf("nextEligibleSeat() with knocker 3 = %d, %v, want 0", seat, err)
	}

	for i := range s.Players {
		if i != 3 {
			s.Players[i].Eliminated = true
		}
	}
	if _, err := nextEligibleSeat(s); !errors.Is(err, ErrNoEligiblePlayer) {
		t.Errorf("nextEligibleSeat() with only the knocker left: err = %v, want ErrNoEligiblePlayer", err)
	}
}

func TestBlitzOnLastFinalTurnSettlesOnce(t *testing.T) {
	g := newStubGateway(stackDeck(
		"2H", "3H", "4H",
		"5C", "6C", "7C",
		"2D", "3D", "4D",
		"AS", "KS", "2C",
		"8D", "9D", "QS",
	))
	st := startGame(t, g, 4)

	st.do(Knock())
	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 1
	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 2
	if st.state.Round.FinalTurnsLeft != 1 || st.state.Current != 3 {
		t.Fatalf("before last turn left=%d current=%d", st.state.Round.FinalTurnsLeft, st.state.Current)
	}

	st.do(DrawFromDeck(), Discard(2)) // seat 3 swaps 2C for QS: 31

	settled := 0
	for _, event := range st.events {
		if e, ok := event.(RoundSettledEvent); ok {
			settled++
			if e.Kind != SettlementBlitz {
				t.Errorf("settlement kind = %s, want blitz", e.Kind)
			}
		}
	}
	if settled != 1 {
		t.Fatalf("%d settlements, want exactly 1", settled)
	}

	wantCoins := []int{3, 3, 3, 7}
	for seat, want := range wantCoins {
		if c := st.state.Players[seat].Coins; c != want {
			t.Errorf("seat %d coins = %d, want %d", seat, c, want)
		}
	}
	if st.state.RoundNumber != 2 || st.state.Phase != PhasePlaying {
		t.Errorf("round=%d phase=%s, want 2 playing", st.state.RoundNumber, st.state.Phase)
	}
}

func TestSettlementCannotBeginTwice(t *testing.T) {
	tx := &transition{s: &State{Phase: PhaseRoundEnd}}
	if err := tx.beginSettlement(); !errors.Is(err, ErrSettlementInProgress) {
		t.Errorf("beginSettlement() in round_end = %v, want ErrSettlementInProgress", err)
	}

	tx = &transition{s: &State{Phase: PhaseFinalRound}}
	if err := tx.beginSettlement(); err != nil {
		t.Fatalf("beginSettlement() in final_round = %v", err)
	}
	if err := tx.beginSettlement(); !errors.Is(err, ErrSettlementInProgress) {
		t.Errorf("second beginSettlement() = %v, want ErrSettlementInProgress", err)
	}
}

func TestGameEndsWithOneSurvivor(t *testing.T) {
	g := newStubGateway(stackDeck("2H", "3C", "4D", "KS", "QS", "2C"))
	st := startGame(t, g, 2)
	st.state.Players[0].Coins = 1

	st.do(Knock())
	st.do(DrawFromDeck(), Discard(DiscardDrawn))

	s := st.state
	if s.Phase != PhaseGameEnd || s.Winner != 1 {
		t.Fatalf("phase=%s winner=%d, want game_end and 1", s.Phase, s.Winner)
	}
	if s.Players[0].Coins != 0 || !s.Players[0].Eliminated {
		t.Errorf("knocker coins=%d eliminated=%v", s.Players[0].Coins, s.Players[0].Eliminated)
	}
	if s.Players[1].Coins != 6 {
		t.Errorf("winner coins = %d, want 6", s.Players[1].Coins)
	}
	if countEvents[PlayerEliminatedEvent](st.events) != 1 || countEvents[PlayerHasWonEvent](st.events) != 1 {
		t.Errorf("events = %v", st.events)
	}

	if _, _, err := st.engine.Step(context.Background(), s, DrawFromDeck()); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("draw after game end err = %v, want ErrIllegalAction", err)
	}
}

func TestIllegalActionsLeaveStateUnchanged(t *testing.T) {
	st := startGame(t, newStubGateway(), 3)
	afterStart := st.state

	st.do(DrawFromDeck())
	afterDraw := st.state

	st.do(Discard(0))
	st.do(Knock()) // seat 1
	inFinalRound := st.state

	tests := []struct {
		name   string
		state  *State
		action Action
	}{
		{"start twice", afterStart, Action{Kind: ActionStart}},
		{"discard without drawing", afterStart, Discard(0)},
		{"draw from empty discard pile", afterStart, DrawFromDiscard()},
		{"draw twice", afterDraw, DrawFromDeck()},
		{"draw from pile after drawing", afterDraw, DrawFromDiscard()},
		{"knock after drawing", afterDraw, Knock()},
		{"discard out of range", afterDraw, Discard(3)},
		{"second knock", inFinalRound, Knock()},
		{"unknown action", afterStart, Action{Kind: ActionKind(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.state.Clone()

			next, events, err := st.engine.Step(context.Background(), tt.state, tt.action)
			if !errors.Is(err, ErrIllegalAction) {
				t.Fatalf("Step(%s) err = %v, want ErrIllegalAction", tt.action, err)
			}
			var illegal *IllegalActionError
			if !errors.As(err, &illegal) {
				t.Fatalf("Step(%s) err is not an *IllegalActionError", tt.action)
			}
			if next != tt.state || events != nil {
				t.Errorf("Step(%s) returned a new state or events", tt.action)
			}
			if !reflect.DeepEqual(before, tt.state) {
				t.Errorf("Step(%s) mutated the state", tt.action)
			}
		})
	}
}

func TestGatewayFailureLeavesStateUnchanged(t *testing.T) {
	g := newStubGateway()
	st := startGame(t, g, 2)

	g.err = errors.New("connection refused")
	before := st.state.Clone()

	next, _, err := st.engine.Step(context.Background(), st.state, DrawFromDeck())
	if !IsGatewayError(err) || !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("Step(draw) err = %v, want a gateway error", err)
	}
	if next != st.state || !reflect.DeepEqual(before, st.state) {
		t.Errorf("failed draw changed the state")
	}

	// A failed deal for the next round rolls back the whole settlement.
	g.err = nil
	st.do(Knock(), DrawFromDeck())
	g.err = errors.New("connection reset")
	before = st.state.Clone()

	_, _, err = st.engine.Step(context.Background(), st.state, Discard(DiscardDrawn))
	if !IsGatewayError(err) {
		t.Fatalf("Step(discard) err = %v, want a gateway error", err)
	}
	if !reflect.DeepEqual(before, st.state) {
		t.Errorf("failed settlement changed the state")
	}

	g.err = nil
	st.do(Discard(DiscardDrawn))
	if st.state.RoundNumber != 2 {
		t.Errorf("RoundNumber after retry = %d, want 2", st.state.RoundNumber)
	}
}

func TestReshuffle(t *testing.T) {
	tests := []struct {
		name        string
		firstDeck   []Card
		discard     Pile
		wantPending Card
		wantDiscard Pile
	}{
		{
			name:        "empty draw keeps only the top discard",
			firstDeck:   hand("2H", "3H", "4H", "5H", "6H", "7H"),
			discard:     Pile(hand("2C", "3C", "4C")),
			wantPending: mustCard("AS"),
			wantDiscard: Pile(hand("4C")),
		},
		{
			name:        "single discard is left alone",
			firstDeck:   hand("2H", "3H", "4H", "5H", "6H", "7H"),
			discard:     Pile(hand("4C")),
			wantPending: mustCard("AS"),
			wantDiscard: Pile(hand("4C")),
		},
		{
			name:        "empty discard pile",
			firstDeck:   hand("2H", "3H", "4H", "5H", "6H", "7H"),
			discard:     Pile{},
			wantPending: mustCard("AS"),
			wantDiscard: Pile{},
		},
		{
			name:        "last card is kept",
			firstDeck:   hand("2H", "3H", "4H", "5H", "6H", "7H", "8H"),
			discard:     Pile(hand("2C", "3C")),
			wantPending: mustCard("8H"),
			wantDiscard: Pile(hand("3C")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newStubGateway(tt.firstDeck, stackDeck("AS"))
			st := startGame(t, g, 2)
			st.state.Discard = tt.discard

			st.do(DrawFromDeck())
			s := st.state

			if s.Pending == nil || *s.Pending != tt.wantPending {
				t.Fatalf("Pending = %v, want %s", s.Pending, tt.wantPending)
			}
			if s.Turn != TurnDiscard {
				t.Errorf("Turn = %s, want discard", s.Turn)
			}
			if !reflect.DeepEqual(s.Discard, tt.wantDiscard) {
				t.Errorf("Discard = %s, want %s", s.Discard, tt.wantDiscard)
			}
			if g.created != 2 || s.DeckID != "deck-2" {
				t.Errorf("created=%d deck=%s, want a second deck in use", g.created, s.DeckID)
			}
			if countEvents[ReshuffleEvent](st.events) != 1 {
				t.Errorf("no ReshuffleEvent")
			}

			st.do(Discard(DiscardDrawn))
			if st.state.Current != 1 {
				t.Errorf("turn did not advance after the reshuffled draw")
			}
		})
	}
}

func TestDealReplacesShortDeck(t *testing.T) {
	g := newStubGateway(hand("2H", "3H", "4H", "5H"), stackDeck("AS", "KS"))
	st := startGame(t, g, 2)

	if g.created != 2 {
		t.Fatalf("created %d decks, want 2", g.created)
	}
	want := hand("5H", "AS", "KS")
	if !reflect.DeepEqual(st.state.Players[1].Hand, want) {
		t.Errorf("seat 1 hand = %v, want %v", st.state.Players[1].Hand, want)
	}
}

func TestDrawFromDiscardTakesTopCard(t *testing.T) {
	st := startGame(t, newStubGateway(stackDeck("2H", "3H", "4H", "KC", "QC", "2D", "9S")), 2)

	st.do(DrawFromDeck(), Discard(DiscardDrawn)) // seat 0 throws 9S
	st.do(DrawFromDiscard())

	if st.state.Pending == nil || *st.state.Pending != mustCard("9S") {
		t.Fatalf("Pending = %v, want 9 of spades", st.state.Pending)
	}
	if !st.state.Discard.IsEmpty() {
		t.Errorf("Discard = %s, want empty", st.state.Discard)
	}

	st.do(Discard(2)) // 2D out, 9S in
	p := st.state.Players[1]
	if !reflect.DeepEqual(p.Hand, hand("KC", "QC", "9S")) || p.Score.Best != 20 {
		t.Errorf("seat 1 hand = %v best %d", p.Hand, p.Score.Best)
	}
	if top, _ := st.state.TopDiscard(); top != mustCard("2D") {
		t.Errorf("TopDiscard() = %s, want 2 of diamonds", top)
	}
}

package hand_reader

import (
	"context"
	"errors"
	"testing"

	"github.com/nrawrx3/blitz"
)

func TestScriptedDeal(t *testing.T) {
	config := `{
		"seat.1": { "clubs": [7], "spades": [2, "queen"] },
		"seat.0": { "hearts": ["ace", "king", 10] },
		"draws": ["AS", "0D"],
		"deck_size": 10
	}`

	gateway, err := LoadConfig([]byte(config), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	handle, err := gateway.CreateDeck(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if handle.Remaining != 10 {
		t.Errorf("Remaining = %d, want 10", handle.Remaining)
	}

	result, err := gateway.Draw(ctx, handle.ID, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"AH", "KH", "0H", "7C", "2S", "QS", "AS", "0D"}
	for i, code := range want {
		if got := result.Cards[i].Code(); got != code {
			t.Errorf("card %d = %s, want %s", i, got, code)
		}
	}

	result, err = gateway.Draw(ctx, handle.ID, 5)
	if err != nil || len(result.Cards) != 2 || result.Remaining != 0 {
		t.Errorf("draw past deck_size = %d cards, %d left, %v", len(result.Cards), result.Remaining, err)
	}

	next, err := gateway.CreateDeck(ctx)
	if err != nil || next.Remaining != 52 || next.ID == handle.ID {
		t.Errorf("second deck = %+v, %v", next, err)
	}
	if gateway.DecksCreated() != 2 {
		t.Errorf("DecksCreated() = %d, want 2", gateway.DecksCreated())
	}
}

func TestScriptedGameOpening(t *testing.T) {
	config := `{
		"seat.0": { "hearts": ["ace", "king"], "clubs": [4] },
		"seat.1": { "diamonds": [2, 3, 4] }
	}`
	gateway, err := LoadConfig([]byte(config), nil)
	if err != nil {
		t.Fatal(err)
	}

	table, err := blitz.NewTable(blitz.DefaultConfig("You", 1), gateway, "You", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := table.Snapshot()
	if s.Players[0].Score.Best != 21 || s.Players[1].Score.Best != 9 {
		t.Errorf("opening scores = %d, %d, want 21, 9", s.Players[0].Score.Best, s.Players[1].Score.Best)
	}
}

func TestScriptedDealSkipsUndescribedSeat(t *testing.T) {
	config := `{
		"seat.0": { "hearts": ["ace", "king", 9] },
		"seat.2": { "clubs": [2, 3, 4] }
	}`
	gateway, err := LoadConfig([]byte(config), nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := gateway.CheckPlayerCount(2); !errors.Is(err, ErrSeatOutOfRange) {
		t.Errorf("CheckPlayerCount(2) = %v, want %v", err, ErrSeatOutOfRange)
	}
	if err := gateway.CheckPlayerCount(3); err != nil {
		t.Fatalf("CheckPlayerCount(3) = %v", err)
	}

	table, err := blitz.NewTable(blitz.DefaultConfig("You", 2), gateway, "You", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := table.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	s := table.Snapshot()
	wantHands := [][]string{
		{"AH", "KH", "9H"},
		{"2H", "3H", "4H"},
		{"2C", "3C", "4C"},
	}
	for seat, want := range wantHands {
		hand := s.Players[seat].Hand
		if len(hand) != len(want) {
			t.Fatalf("seat %d hand = %v, want %v", seat, hand, want)
		}
		for i, code := range want {
			if got := hand[i].Code(); got != code {
				t.Errorf("seat %d card %d = %s, want %s", seat, i, got, code)
			}
		}
	}
}

func TestBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr error
	}{
		{"short hand", `{"seat.0": {"hearts": [2, 3]}}`, ErrBadHandSize},
		{"unknown key", `{"seat.0": {"hearts": [2, 3, 4]}, "jokers": 2}`, ErrUnknownKey},
		{"card used twice", `{"seat.0": {"hearts": [2, 3, 4]}, "seat.1": {"hearts": [4, 5, 6]}}`, ErrCouldNotRemoveCard},
		{"draw of a dealt card", `{"seat.0": {"hearts": [2, 3, 4]}, "draws": ["3H"]}`, ErrCouldNotRemoveCard},
		{"bad rank", `{"seat.0": {"hearts": [1, 3, 4]}}`, blitz.ErrInvalidRankToken},
		{"bad card code", `{"draws": ["ZZ"]}`, blitz.ErrInvalidCardCode},
		{"seat beyond any table", `{"seat.8": {"hearts": [2, 3, 4]}}`, ErrSeatOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig([]byte(tt.config), nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig() err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadConfig([]byte(`{"deck_size": 2, "seat.0": {"hearts": [2, 3, 4]}}`), nil); err == nil {
		t.Errorf("deck_size below the described cards was accepted")
	}
}

package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nrawrx3/blitz"
	"github.com/nrawrx3/blitz/hand_reader"
	"github.com/nrawrx3/blitz/session"
)

const consoleHands = `{
	"seat.0": { "hearts": [2, 5, 9] },
	"seat.1": { "clubs": [3, 4], "spades": [6] },
	"draws": ["KH"]
}`

// Creates a console on a scripted two player table with instant opponents.
func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	gateway, err := hand_reader.LoadConfig([]byte(consoleHands), nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(session.Config{
		Table:   blitz.DefaultConfig("Ada", 1),
		Gateway: gateway,
		Seed:    17,
	})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(s, &out, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c, &out
}

func TestConsoleExecute(t *testing.T) {
	ctx := context.Background()
	c, out := newTestConsole(t)

	if !strings.Contains(out.String(), "Your hand:") {
		t.Errorf("start did not render the table:\n%s", out.String())
	}

	out.Reset()
	if err := c.Execute(ctx, "help"); err != nil || !strings.Contains(out.String(), "drawpile") {
		t.Errorf("help = %v:\n%s", err, out.String())
	}

	out.Reset()
	if err := c.Execute(ctx, "discard 1"); err != nil || !strings.Contains(out.String(), "Can't discard now") {
		t.Errorf("early discard = %v:\n%s", err, out.String())
	}

	out.Reset()
	if err := c.Execute(ctx, "fold"); err != nil || !strings.Contains(out.String(), "Expected a command") {
		t.Errorf("unknown command = %v:\n%s", err, out.String())
	}

	out.Reset()
	if err := c.Execute(ctx, "draw"); err != nil || !strings.Contains(out.String(), "Drawn:") {
		t.Fatalf("draw = %v:\n%s", err, out.String())
	}

	// KH replaces the 2 of hearts: 24 in hearts.
	out.Reset()
	err := c.Execute(ctx, "x 1")
	if err != nil && !errors.Is(err, ErrQuit) {
		t.Fatalf("discard = %v", err)
	}
	snapshot := c.session.Table().Snapshot()
	if snapshot.DiscardLog[0].Card.Code() != "2H" {
		t.Errorf("first discard = %s, want 2 of hearts", snapshot.DiscardLog[0].Card)
	}
	if err == nil && !c.session.IsHumanTurn() {
		t.Errorf("Execute() returned before the opponent finished")
	}

	out.Reset()
	if err := c.Execute(ctx, "log"); err != nil || !strings.Contains(out.String(), "discarded") {
		t.Errorf("log = %v:\n%s", err, out.String())
	}

	if len(c.RecentEvents(100)) == 0 {
		t.Errorf("no events recorded")
	}

	if err := c.Execute(ctx, "quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("quit = %v, want ErrQuit", err)
	}
}

func TestEventRing(t *testing.T) {
	ring := NewEventRing(3)
	for _, item := range []string{"a", "b"} {
		ring.Push(item)
	}
	if got := strings.Join(ring.Last(5), ""); got != "ab" {
		t.Errorf("Last(5) = %q, want ab", got)
	}

	for _, item := range []string{"c", "d", "e"} {
		ring.Push(item)
	}
	if ring.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ring.Len())
	}
	if got := strings.Join(ring.Last(3), ""); got != "cde" {
		t.Errorf("Last(3) = %q, want cde", got)
	}
	if got := strings.Join(ring.Last(2), ""); got != "de" {
		t.Errorf("Last(2) = %q, want de", got)
	}
}

package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/nrawrx3/blitz"
)

func yourName(name, localName string) string {
	if name == localName {
		return fmt.Sprintf("You(%s)", name)
	}
	return name
}

// RenderTable writes the table as seen by localName. Other hands stay hidden
// until the game is over.
func RenderTable(w io.Writer, s *blitz.State, localName string) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== Round %d (%s) ==\n", s.RoundNumber, s.Phase))
	for _, p := range s.Players {
		marker := "  "
		if p.Seat == s.Current && s.Phase.IsActive() {
			marker = "> "
		}

		status := ""
		switch {
		case p.Eliminated:
			status = " [out]"
		case s.Round.Knocker == p.Seat:
			status = " [knocked]"
		}

		sb.WriteString(fmt.Sprintf("%s%-16s coins: %d%s\n", marker, yourName(p.Name, localName), p.Coins, status))
	}

	if top, ok := s.TopDiscard(); ok {
		sb.WriteString(fmt.Sprintf("Discard pile: %s (%d cards)\n", top.String(), s.Discard.Len()))
	} else {
		sb.WriteString("Discard pile: empty\n")
	}
	sb.WriteString(fmt.Sprintf("Deck: %d cards left\n", s.DeckRemaining))

	for _, p := range s.Players {
		if p.Name != localName || p.Eliminated {
			continue
		}
		sb.WriteString("Your hand:\n")
		for i, card := range p.Hand {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, card.String()))
		}
		sb.WriteString(fmt.Sprintf("Score: %d in %s\n", p.Score.Best, p.Score.BestSuit))
		if s.Pending != nil && s.Current == p.Seat {
			sb.WriteString(fmt.Sprintf("Drawn: %s (discard N or discard drawn)\n", s.Pending.String()))
		}
	}

	if s.Message != "" {
		sb.WriteString(s.Message)
		sb.WriteString("\n")
	}

	io.WriteString(w, sb.String())
}

// RenderReveal writes the hands of the round that just ended.
func RenderReveal(w io.Writer, reveal []blitz.HandReveal, localName string) {
	if len(reveal) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("-- Hands of the last round --\n")
	for _, r := range reveal {
		cards := make([]string, 0, len(r.Hand))
		for _, card := range r.Hand {
			cards = append(cards, card.String())
		}
		sb.WriteString(fmt.Sprintf("%-16s %d  %s\n", yourName(r.Name, localName), r.Score.Best, strings.Join(cards, ", ")))
	}
	io.WriteString(w, sb.String())
}

func RenderDiscardLog(w io.Writer, log []blitz.DiscardRecord, limit int) {
	start := 0
	if limit > 0 && len(log) > limit {
		start = len(log) - limit
	}
	if len(log) == 0 {
		io.WriteString(w, "Nothing discarded yet\n")
		return
	}
	for _, record := range log[start:] {
		fmt.Fprintf(w, "round %d: %s discarded %s\n", record.Round, record.Player, record.Card.String())
	}
}

package blitz

import (
	"fmt"
	"strings"
)

type CardTransferNode string

const (
	CardTransferNodeDeck        CardTransferNode = "deck"
	CardTransferNodePile        CardTransferNode = "pile"
	CardTransferNodePlayerHand  CardTransferNode = "player_hand"
	CardTransferNodePendingSlot CardTransferNode = "pending_slot"
)

// GameEvent is emitted by table transitions for the presentation layer.
type GameEvent interface {
	GameEventName() string

	// Message for display. The local player is shown as "You(name)".
	StringMessage(localPlayerName string) string
}

func changeIfSelf(playerName, localPlayerName string) (string, bool) {
	if localPlayerName != "" && playerName == localPlayerName {
		return fmt.Sprintf("You(%s)", localPlayerName), true
	}
	return playerName, false
}

type GameStartedEvent struct {
	GameID  string
	Players []string
}

func (e GameStartedEvent) StringMessage(localPlayerName string) string {
	return fmt.Sprintf("New game %s with %s", e.GameID, strings.Join(e.Players, ", "))
}

func (e GameStartedEvent) GameEventName() string {
	return "GameStartedEvent"
}

type RoundDealtEvent struct {
	Round   int
	Players []string
}

func (e RoundDealtEvent) StringMessage(localPlayerName string) string {
	return fmt.Sprintf("Round %d dealt to %d players", e.Round, len(e.Players))
}

func (e RoundDealtEvent) GameEventName() string {
	return "RoundDealtEvent"
}

type TurnStartedEvent struct {
	Player    string
	FinalTurn bool
}

func (e TurnStartedEvent) StringMessage(localPlayerName string) string {
	playerName, _ := changeIfSelf(e.Player, localPlayerName)
	if e.FinalTurn {
		return fmt.Sprintf("%s's final turn", playerName)
	}
	return fmt.Sprintf("%s's turn - Knock or Continue?", playerName)
}

func (e TurnStartedEvent) GameEventName() string {
	return "TurnStartedEvent"
}

type KnockEvent struct {
	Player     string
	FinalTurns int
}

func (e KnockEvent) StringMessage(localPlayerName string) string {
	playerName, _ := changeIfSelf(e.Player, localPlayerName)
	return fmt.Sprintf("%s knocked! Final round begins, %d turns left.", playerName, e.FinalTurns)
}

func (e KnockEvent) GameEventName() string {
	return "KnockEvent"
}

// CardTransferEvent reports a card moving between deck, pile, pending slot
// and hands. Card is hidden from other players when drawn from the deck.
type CardTransferEvent struct {
	Source       CardTransferNode
	Sink         CardTransferNode
	SourcePlayer string // If applicable
	SinkPlayer   string // If applicable
	Card         Card
}

func (c CardTransferEvent) StringMessage(localPlayerName string) string {
	switch {
	case c.Sink == CardTransferNodePendingSlot:
		playerName, you := changeIfSelf(c.SinkPlayer, localPlayerName)
		from := "the deck"
		if c.Source == CardTransferNodePile {
			from = "discard"
		}
		if you || c.Source == CardTransferNodePile {
			return fmt.Sprintf("%s drew %s from %s. Select a card to discard.", playerName, c.Card.String(), from)
		}
		return fmt.Sprintf("%s drew a card from %s.", playerName, from)

	case c.Sink == CardTransferNodePile:
		playerName, _ := changeIfSelf(c.SourcePlayer, localPlayerName)
		return fmt.Sprintf("%s discarded %s", playerName, c.Card.String())

	default:
		return fmt.Sprintf("Card transfer from %s to %s", c.Source, c.Sink)
	}
}

func (c CardTransferEvent) GameEventName() string {
	return "CardTransferEvent"
}

type ReshuffleEvent struct {
	NewDeckID   string
	RetainedTop *Card
}

func (e ReshuffleEvent) StringMessage(localPlayerName string) string {
	if e.RetainedTop != nil {
		return fmt.Sprintf("Deck exhausted, reshuffled keeping %s on the discard pile", e.RetainedTop.String())
	}
	return "Deck exhausted, reshuffled"
}

func (e ReshuffleEvent) GameEventName() string {
	return "ReshuffleEvent"
}

type CoinChange struct {
	Seat   int
	Player string
	Delta  int
}

type RoundSettledEvent struct {
	Round   int
	Kind    SettlementKind
	Player  string // knocker or blitz achiever
	Score   int
	Success bool
	Changes []CoinChange
}

func (e RoundSettledEvent) StringMessage(localPlayerName string) string {
	playerName, _ := changeIfSelf(e.Player, localPlayerName)

	if e.Kind == SettlementBlitz {
		return fmt.Sprintf("BLITZ! %s hit 31 and collects from every opponent.", playerName)
	}

	var loser string
	for _, change := range e.Changes {
		if change.Delta < 0 {
			loser, _ = changeIfSelf(change.Player, localPlayerName)
		}
	}

	if e.Success {
		return fmt.Sprintf("%s won! %s loses 1 coin.", playerName, loser)
	}
	return fmt.Sprintf("%s's knock failed! Loses 2 coins.", playerName)
}

func (e RoundSettledEvent) GameEventName() string {
	return "RoundSettledEvent"
}

type PlayerEliminatedEvent struct {
	Player string
}

func (e PlayerEliminatedEvent) StringMessage(localPlayerName string) string {
	playerName, _ := changeIfSelf(e.Player, localPlayerName)
	return fmt.Sprintf("%s is out of coins and eliminated", playerName)
}

func (e PlayerEliminatedEvent) GameEventName() string {
	return "PlayerEliminatedEvent"
}

type PlayerHasWonEvent struct {
	Player string
}

func (e PlayerHasWonEvent) StringMessage(localPlayerName string) string {
	playerName, you := changeIfSelf(e.Player, localPlayerName)
	if you {
		return fmt.Sprintf("%s win the game!", playerName)
	}
	return fmt.Sprintf("%s wins the game!", playerName)
}

func (e PlayerHasWonEvent) GameEventName() string {
	return "PlayerHasWonEvent"
}

// Read a JSON description of the opening deal and serve it through a deck
// gateway. This is only for testing/debugging purpose.
package hand_reader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nrawrx3/blitz"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

/*
	{
		"seat.0": {
			"hearts": ["ace", "king", 10]
		},

		"seat.1": {
			"clubs": [7],
			"spades": [2, "queen"]
		},

		"seat.2": {
			"diamonds": [3, 4, 5]
		},

		"draws": ["AS", "0D", "4C"],  // cards handed out right after the deal, in order
		"deck_size": 20,              // first deck reports exhaustion after this many cards
		"shuffle_seed": 0             // 0 leaves the undescribed cards in suit order
	}
*/

type script struct {
	handOfSeat map[int][]blitz.Card
	draws      []blitz.Card
	deckSize   int
	seed       int64
}

var ErrUnknownKey = errors.New("unknown key")
var ErrBadHandSize = errors.New("hand must have exactly 3 cards")
var ErrCouldNotRemoveCard = errors.New("could not remove card")
var ErrSeatOutOfRange = errors.New("seat out of range")

// Gateway hands out the scripted deck on its first CreateDeck and ordinary
// decks afterwards.
type Gateway struct {
	mu       sync.Mutex
	script   script
	scripted []blitz.Card
	rng      *rand.Rand
	decks   map[string][]blitz.Card
	created int
	logger  *zap.SugaredLogger
}

func LoadConfigFile(path string, logger *zap.SugaredLogger) (*Gateway, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "reading hand config %s", path)
	}
	return LoadConfig(bytes, logger)
}

// Reads the hand-config JSON and returns a gateway that deals it.
func LoadConfig(bytes []byte, logger *zap.SugaredLogger) (*Gateway, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var j map[string]interface{}
	err := json.Unmarshal(bytes, &j)
	if err != nil {
		return nil, err
	}

	s := script{handOfSeat: make(map[int][]blitz.Card)}

	for key, value := range j {
		switch {
		case strings.HasPrefix(key, "seat."):
			seat, err := strconv.Atoi(strings.TrimPrefix(key, "seat."))
			if err != nil || seat < 0 {
				return nil, fmt.Errorf("LoadConfig: bad seat key '%s'", key)
			}
			if seat >= blitz.MaxPlayers {
				return nil, fmt.Errorf("LoadConfig: %w: %s, tables seat at most %d", ErrSeatOutOfRange, key, blitz.MaxPlayers)
			}
			hand, err := castHandDescMap(value)
			if err != nil {
				return nil, fmt.Errorf("LoadConfig: seat %d: %w", seat, err)
			}
			if len(hand) != blitz.HandSize {
				return nil, fmt.Errorf("LoadConfig: seat %d: %w, got %d", seat, ErrBadHandSize, len(hand))
			}
			s.handOfSeat[seat] = hand

		case key == "draws":
			draws, err := castCodeList(value)
			if err != nil {
				return nil, fmt.Errorf("LoadConfig: draws: %w", err)
			}
			s.draws = draws

		case key == "deck_size":
			number, ok := value.(float64)
			if !ok || number < 0 {
				return nil, fmt.Errorf("expected a non-negative integer value for deck_size")
			}
			s.deckSize = int(number)

		case key == "shuffle_seed":
			number, ok := value.(float64)
			if !ok {
				return nil, fmt.Errorf("expected an integer value for shuffle_seed")
			}
			s.seed = int64(number)

		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}

	seed := s.seed
	if seed == 0 {
		seed = 1
	}

	gateway := &Gateway{
		script: s,
		rng:    rand.New(rand.NewSource(seed)),
		decks:  make(map[string][]blitz.Card),
		logger: logger,
	}

	// Build the scripted deck once so bad configs fail here, not mid game.
	gateway.scripted, err = gateway.scriptedDeck()
	if err != nil {
		return nil, err
	}
	return gateway, nil
}

// updates countOfCard by removing each given card in cards slice
func removeCardsFromDeck(cards []blitz.Card, countOfCard map[uint32]int) error {
	for _, card := range cards {
		enc := card.EncodeUint32()
		count := countOfCard[enc]
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrCouldNotRemoveCard, card.String())
		}
		countOfCard[enc] = count - 1
	}
	return nil
}

// scriptedDeck lays out one hand per seat up to the highest described seat,
// then the draws, then the remaining cards. Seats without a description get
// the next cards of the remainder so later seats keep their own hands.
func (g *Gateway) scriptedDeck() ([]blitz.Card, error) {
	countOfCard := make(map[uint32]int)
	for _, card := range blitz.NewFullDeck() {
		countOfCard[card.EncodeUint32()] += 1
	}

	seats := make([]int, 0, len(g.script.handOfSeat))
	for seat := range g.script.handOfSeat {
		seats = append(seats, seat)
	}
	sort.Ints(seats)

	for _, seat := range seats {
		if err := removeCardsFromDeck(g.script.handOfSeat[seat], countOfCard); err != nil {
			return nil, fmt.Errorf("seat %d: %w", seat, err)
		}
	}
	if err := removeCardsFromDeck(g.script.draws, countOfCard); err != nil {
		return nil, fmt.Errorf("draws: %w", err)
	}

	rest := make([]blitz.Card, 0, 52)
	for _, card := range blitz.NewFullDeck() {
		if countOfCard[card.EncodeUint32()] > 0 {
			rest = append(rest, card)
		}
	}
	if g.script.seed != 0 {
		g.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	}

	deck := make([]blitz.Card, 0, 52)
	for seat := 0; seat <= g.script.maxSeat(); seat++ {
		hand, ok := g.script.handOfSeat[seat]
		if !ok {
			if len(rest) < blitz.HandSize {
				return nil, fmt.Errorf("not enough undescribed cards to fill seat %d", seat)
			}
			hand = rest[:blitz.HandSize]
			rest = rest[blitz.HandSize:]
		}
		deck = append(deck, hand...)
	}
	deck = append(deck, g.script.draws...)
	described := len(deck)
	deck = append(deck, rest...)

	if g.script.deckSize > 0 {
		if g.script.deckSize < described {
			return nil, fmt.Errorf("deck_size %d is smaller than the %d scripted cards", g.script.deckSize, described)
		}
		if g.script.deckSize < len(deck) {
			deck = deck[:g.script.deckSize]
		}
	}
	return deck, nil
}

func (s *script) maxSeat() int {
	highest := -1
	for seat := range s.handOfSeat {
		if seat > highest {
			highest = seat
		}
	}
	return highest
}

// CheckPlayerCount fails when the config describes a seat that a table of
// players cannot deal to.
func (g *Gateway) CheckPlayerCount(players int) error {
	if seat := g.script.maxSeat(); seat >= players {
		return fmt.Errorf("%w: seat %d on a table of %d players", ErrSeatOutOfRange, seat, players)
	}
	return nil
}

func (g *Gateway) CreateDeck(ctx context.Context) (blitz.DeckHandle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var deck []blitz.Card
	if g.created == 0 {
		deck = append(deck, g.scripted...)
	} else {
		deck = blitz.NewFullDeck()
		g.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	}

	g.created++
	id := fmt.Sprintf("scripted-%d", g.created)
	g.decks[id] = deck
	g.logger.Debugw("Created scripted deck", "deck_id", id, "cards", len(deck))
	return blitz.DeckHandle{ID: id, Remaining: len(deck)}, nil
}

func (g *Gateway) Draw(ctx context.Context, deckID string, count int) (blitz.DrawResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	deck, ok := g.decks[deckID]
	if !ok {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", fmt.Errorf("unknown deck %s", deckID))
	}

	n := count
	if n > len(deck) {
		n = len(deck)
	}
	cards := append([]blitz.Card(nil), deck[:n]...)
	g.decks[deckID] = deck[n:]
	return blitz.DrawResult{Cards: cards, Remaining: len(deck) - n}, nil
}

// DecksCreated counts CreateDeck calls, the first one included.
func (g *Gateway) DecksCreated() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created
}

func suitFromKey(suitKey string) (blitz.Suit, error) {
	suit, err := blitz.ParseSuitToken(suitKey)
	if err != nil {
		return 0, fmt.Errorf("unknown suit key: '%s'", suitKey)
	}
	return suit, nil
}

func tryCastRank(v interface{}) (blitz.Rank, error) {
	number, ok := v.(float64)
	if ok {
		if number != math.Floor(number) {
			return 0, fmt.Errorf("expected integer in place of %f", number)
		}
		return blitz.ParseRankToken(strconv.Itoa(int(number)))
	}

	rankString, ok := v.(string)
	if !ok {
		return 0, errors.New("could not cast value to a rank")
	}
	return blitz.ParseRankToken(rankString)
}

func castHandDescMap(handDescIF interface{}) ([]blitz.Card, error) {
	handDescMap, ok := handDescIF.(map[string]interface{})
	if !ok {
		return nil, errors.New("could not cast hand description to an object")
	}

	// Map iteration order is random, collect per suit and emit in suit order.
	cardsOfSuit := make(map[blitz.Suit][]blitz.Card)
	for key, valueIF := range handDescMap {
		suit, err := suitFromKey(key)
		if err != nil {
			return nil, err
		}

		rankList, ok := valueIF.([]interface{})
		if !ok {
			return nil, fmt.Errorf("failed to cast rank-list value to array for suit %s", key)
		}

		for i, rankIF := range rankList {
			rank, err := tryCastRank(rankIF)
			if err != nil {
				return nil, fmt.Errorf("card index %d: %w", i, err)
			}
			cardsOfSuit[suit] = append(cardsOfSuit[suit], blitz.Card{Rank: rank, Suit: suit})
		}
	}

	hand := make([]blitz.Card, 0, blitz.HandSize)
	for _, suit := range blitz.AllSuits {
		hand = append(hand, cardsOfSuit[suit]...)
	}
	return hand, nil
}

func castCodeList(v interface{}) ([]blitz.Card, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("expected an array of card codes")
	}

	cards := make([]blitz.Card, 0, len(list))
	for i, codeIF := range list {
		code, ok := codeIF.(string)
		if !ok {
			return nil, fmt.Errorf("card index %d: expected a card code string", i)
		}
		card, err := blitz.ParseCardCode(code)
		if err != nil {
			return nil, fmt.Errorf("card index %d: %w", i, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

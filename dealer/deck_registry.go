package dealer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nrawrx3/blitz"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type deck struct {
	id       string
	cards    []blitz.Card // top at index 0
	drawn    []blitz.Card
	lastUsed time.Time
}

func (d *deck) remaining() int {
	return len(d.cards)
}

// deckRegistry keeps every deck handed out by the dealer. Decks idle for
// longer than ttl are forgotten by sweep.
type deckRegistry struct {
	mu     sync.Mutex
	decks  map[string]*deck
	rng    *rand.Rand
	ttl    time.Duration
	now    func() time.Time
	logger *zap.SugaredLogger
}

func newDeckRegistry(rng *rand.Rand, ttl time.Duration, logger *zap.SugaredLogger) *deckRegistry {
	return &deckRegistry{
		decks:  make(map[string]*deck),
		rng:    rng,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// shuffled returns cards in a fresh random order. Callers hold mu, the rng is
// not safe for concurrent use.
func (reg *deckRegistry) shuffled(cards []blitz.Card) []blitz.Card {
	order := blitz.ShuffleIntRange(reg.rng, 0, len(cards))
	out := make([]blitz.Card, 0, len(cards))
	for _, i := range order {
		out = append(out, cards[i])
	}
	return out
}

func (reg *deckRegistry) newDeck(deckCount int) (string, int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	cards := make([]blitz.Card, 0, 52*deckCount)
	for i := 0; i < deckCount; i++ {
		cards = append(cards, blitz.NewFullDeck()...)
	}

	d := &deck{
		id:       uuid.NewString(),
		cards:    reg.shuffled(cards),
		drawn:    make([]blitz.Card, 0, len(cards)),
		lastUsed: reg.now(),
	}
	reg.decks[d.id] = d
	reg.logger.Debugw("New deck", "deck_id", d.id, "cards", len(d.cards))
	return d.id, d.remaining()
}

// draw takes up to count cards. Asking for more than remain hands out what is
// left along with a *NotEnoughCardsError.
func (reg *deckRegistry) draw(deckID string, count int) ([]blitz.Card, int, error) {
	if count < 0 {
		return nil, 0, errors.Wrapf(ErrInvalidDrawCount, "count %d", count)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	d, ok := reg.decks[deckID]
	if !ok {
		return nil, 0, errors.Wrapf(ErrDeckNotFound, "deck %s", deckID)
	}
	d.lastUsed = reg.now()

	n := count
	var err error
	if n > d.remaining() {
		err = &NotEnoughCardsError{Requested: count, Remaining: d.remaining()}
		n = d.remaining()
	}

	cards := slices.Clone(d.cards[:n])
	d.cards = slices.Delete(d.cards, 0, n)
	d.drawn = append(d.drawn, cards...)
	return cards, d.remaining(), err
}

// reshuffle shuffles the remaining cards, or returns the drawn ones to the
// deck first when onlyRemaining is false.
func (reg *deckRegistry) reshuffle(deckID string, onlyRemaining bool) (int, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	d, ok := reg.decks[deckID]
	if !ok {
		return 0, errors.Wrapf(ErrDeckNotFound, "deck %s", deckID)
	}
	d.lastUsed = reg.now()

	if !onlyRemaining {
		d.cards = append(d.cards, d.drawn...)
		d.drawn = d.drawn[:0]
	}
	d.cards = reg.shuffled(d.cards)
	return d.remaining(), nil
}

func (reg *deckRegistry) remaining(deckID string) (int, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	d, ok := reg.decks[deckID]
	if !ok {
		return 0, errors.Wrapf(ErrDeckNotFound, "deck %s", deckID)
	}
	return d.remaining(), nil
}

func (reg *deckRegistry) count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.decks)
}

// sweep forgets decks not used within ttl and returns how many it dropped.
func (reg *deckRegistry) sweep() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	deadline := reg.now().Add(-reg.ttl)
	dropped := 0
	for id, d := range reg.decks {
		if d.lastUsed.Before(deadline) {
			delete(reg.decks, id)
			dropped++
		}
	}
	if dropped > 0 {
		reg.logger.Infof("Swept %d idle decks, %d left", dropped, len(reg.decks))
	}
	return dropped
}

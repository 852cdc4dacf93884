package bot

import (
	"math/rand"

	"github.com/nrawrx3/blitz"
)

const (
	// Score at which an opponent stands pat during the final round.
	finalRoundStandScore = 18

	knockChanceFloor = 15.0
	knockChanceSpan  = 15.0
	maxKnockChance   = 0.8

	bigImprovement   = 3
	smallImprovement = 1

	bestSuitDiscardPenalty = 5
)

// RandomSource is the one source of randomness in the decision procedure.
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// View is what an opponent sees when deciding: its own hand and score, the
// top of the discard pile, the number of other active players and whether
// somebody knocked this round.
type View struct {
	Hand       []blitz.Card
	Score      blitz.ScoreSnapshot
	TopDiscard *blitz.Card
	Opponents  int
	Knocked    bool
}

// ViewFor builds the view of seat from a table snapshot.
func ViewFor(state *blitz.State, seat int) View {
	p := state.Players[seat]
	view := View{
		Hand:      p.Hand,
		Score:     p.Score,
		Opponents: state.ActiveCount() - 1,
		Knocked:   state.Round.HasKnocked(),
	}
	if top, ok := state.TopDiscard(); ok {
		view.TopDiscard = &top
	}
	return view
}

// Decision is one of knock, draw from deck or draw from discard. DiscardIndex
// is the hand card to give up after drawing.
type Decision struct {
	Action       blitz.ActionKind
	DiscardIndex int
}

type Brain struct {
	Personality Personality
	Random      RandomSource
}

func NewBrain(seat int, random RandomSource) *Brain {
	if random == nil {
		random = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Brain{Personality: NewPersonality(seat), Random: random}
}

func (b *Brain) Decide(view View) Decision {
	score := view.Score.Best
	draw := func(from blitz.ActionKind) Decision {
		return Decision{Action: from, DiscardIndex: DiscardIndex(view.Hand, view.Score)}
	}

	if view.Knocked {
		if score >= finalRoundStandScore {
			return Decision{Action: blitz.ActionKnock}
		}
		if view.TopDiscard != nil && Improvement(view.Score, *view.TopDiscard) >= smallImprovement {
			return draw(blitz.ActionDrawFromDiscard)
		}
		return draw(blitz.ActionDrawFromDeck)
	}

	if score >= b.Personality.KnockThreshold && b.Random.Float64() < KnockChance(score) {
		return Decision{Action: blitz.ActionKnock}
	}

	if view.TopDiscard != nil {
		improvement := Improvement(view.Score, *view.TopDiscard)
		if improvement >= bigImprovement || (improvement >= smallImprovement && score < b.Personality.ConservativeThreshold) {
			return draw(blitz.ActionDrawFromDiscard)
		}
	}

	return draw(blitz.ActionDrawFromDeck)
}

// KnockChance grows with the distance of score above 15 and is capped at 0.8.
func KnockChance(score int) float64 {
	chance := (float64(score) - knockChanceFloor) / knockChanceSpan
	if chance > maxKnockChance {
		return maxKnockChance
	}
	if chance < 0 {
		return 0
	}
	return chance
}

// Improvement is how much the best score would grow if card were added to
// its suit bucket without giving anything up.
func Improvement(score blitz.ScoreSnapshot, card blitz.Card) int {
	potential := score.Bucket(card.Suit) + card.Value()
	if potential < score.Best {
		potential = score.Best
	}
	return potential - score.Best
}

// DiscardIndex picks the hand card that is cheapest to give up: its value,
// plus a penalty when it belongs to the best suit. Ties go to the lower index.
func DiscardIndex(hand []blitz.Card, score blitz.ScoreSnapshot) int {
	worstIndex := 0
	worstPriority := 0
	for i, card := range hand {
		priority := card.Value()
		if card.Suit == score.BestSuit {
			priority += bestSuitDiscardPenalty
		}
		if i == 0 || priority < worstPriority {
			worstIndex = i
			worstPriority = priority
		}
	}
	return worstIndex
}

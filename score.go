package blitz

import "fmt"

const (
	HandSize   = 3
	BlitzScore = 31
)

// ScoreSnapshot caches the per-suit sums of a hand.
type ScoreSnapshot struct {
	Suits    [SuitCount]int `json:"suits"`
	Best     int            `json:"best"`
	BestSuit Suit           `json:"best_suit"`
}

func (s ScoreSnapshot) Bucket(suit Suit) int {
	return s.Suits[suit]
}

// Total is the sum of all buckets, which equals the sum of the card values.
func (s ScoreSnapshot) Total() int {
	total := 0
	for _, v := range s.Suits {
		total += v
	}
	return total
}

func (s ScoreSnapshot) String() string {
	return fmt.Sprintf("%d in %s (h=%d d=%d c=%d s=%d)", s.Best, s.BestSuit,
		s.Suits[Hearts], s.Suits[Diamonds], s.Suits[Clubs], s.Suits[Spades])
}

// Score sums every card into the bucket of its own suit. Ties for the best
// bucket go to the first suit in enumeration order.
func Score(hand []Card) ScoreSnapshot {
	var snap ScoreSnapshot
	for _, card := range hand {
		snap.Suits[card.Suit] += card.Value()
	}

	snap.BestSuit = Hearts
	snap.Best = snap.Suits[Hearts]
	for _, suit := range AllSuits[1:] {
		if snap.Suits[suit] > snap.Best {
			snap.Best = snap.Suits[suit]
			snap.BestSuit = suit
		}
	}
	return snap
}

// HasBlitz reports a hand of exactly 31. Nothing above 31 is reachable with
// a single 52 card deck since each suit holds only one ace.
func HasBlitz(snap ScoreSnapshot) bool {
	return snap.Best == BlitzScore
}

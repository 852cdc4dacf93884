package bot

import "fmt"

// Personality holds the heuristic parameters of one computer opponent. It is
// built once per seat so the same seat always plays the same way.
type Personality struct {
	Seat                  int
	RiskTolerance         float64
	Aggressiveness        float64
	KnockThreshold        int
	ConservativeThreshold int
}

const (
	baseRiskTolerance  = 0.7
	riskPerSeat        = 0.1
	baseAggressiveness = 0.6
	aggressionPerSeat  = 0.08
)

// NewPersonality derives the parameters from the seat index. Seats 1..3 give
// knock thresholds of 26, 27 and 28.
func NewPersonality(seat int) Personality {
	risk := baseRiskTolerance + float64(seat)*riskPerSeat
	aggr := baseAggressiveness + float64(seat)*aggressionPerSeat
	return Personality{
		Seat:                  seat,
		RiskTolerance:         risk,
		Aggressiveness:        aggr,
		KnockThreshold:        int(20 + risk*8),
		ConservativeThreshold: int(15 + aggr*10),
	}
}

func (p Personality) String() string {
	return fmt.Sprintf("seat %d (risk %.2f, aggr %.2f, knock >= %d, conservative < %d)",
		p.Seat, p.RiskTolerance, p.Aggressiveness, p.KnockThreshold, p.ConservativeThreshold)
}

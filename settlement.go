package blitz

import "fmt"

type SettlementKind string

const (
	SettlementKnock SettlementKind = "knock"
	SettlementBlitz SettlementKind = "blitz"
)

const (
	knockWinAmount  = 1
	knockFailAmount = 2
	blitzAmount     = 1
)

// Settlement is the coin movement decided at the end of a round.
type Settlement struct {
	Kind    SettlementKind
	Seat    int // knocker or blitz achiever
	Score   int
	Success bool
	Changes []CoinChange
}

// SettleKnock compares the knocker against every other active player. If the
// knocker beats the lowest of them, the first seat holding that lowest score
// pays the knocker 1 coin. Otherwise the knocker pays 2 coins to the first
// seat holding the highest other score. The gain is not reduced when the
// payer had fewer coins than the amount.
func SettleKnock(players []Player, knocker int) (Settlement, error) {
	if knocker < 0 || knocker >= len(players) || players[knocker].Eliminated {
		return Settlement{}, fmt.Errorf("settle knock: invalid knocker seat %d", knocker)
	}

	k := players[knocker].Score.Best
	lowest, highest := NoSeat, NoSeat
	for _, p := range players {
		if p.Seat == knocker || p.Eliminated {
			continue
		}
		if lowest == NoSeat || p.Score.Best < players[lowest].Score.Best {
			lowest = p.Seat
		}
		if highest == NoSeat || p.Score.Best > players[highest].Score.Best {
			highest = p.Seat
		}
	}
	if lowest == NoSeat {
		return Settlement{}, fmt.Errorf("settle knock: %w", ErrNoEligiblePlayer)
	}

	settlement := Settlement{Kind: SettlementKnock, Seat: knocker, Score: k}

	if k > players[lowest].Score.Best {
		settlement.Success = true
		settlement.Changes = []CoinChange{
			{Seat: lowest, Player: players[lowest].Name, Delta: -knockWinAmount},
			{Seat: knocker, Player: players[knocker].Name, Delta: knockWinAmount},
		}
		return settlement, nil
	}

	settlement.Changes = []CoinChange{
		{Seat: knocker, Player: players[knocker].Name, Delta: -knockFailAmount},
		{Seat: highest, Player: players[highest].Name, Delta: knockFailAmount},
	}
	return settlement, nil
}

// SettleBlitz takes 1 coin from every other active player and hands the
// achiever one coin per payer.
func SettleBlitz(players []Player, achiever int) Settlement {
	settlement := Settlement{
		Kind:    SettlementBlitz,
		Seat:    achiever,
		Score:   players[achiever].Score.Best,
		Success: true,
	}

	paid := 0
	for _, p := range players {
		if p.Seat == achiever || p.Eliminated || p.Coins == 0 {
			continue
		}
		settlement.Changes = append(settlement.Changes, CoinChange{Seat: p.Seat, Player: p.Name, Delta: -blitzAmount})
		paid++
	}
	settlement.Changes = append(settlement.Changes, CoinChange{Seat: achiever, Player: players[achiever].Name, Delta: paid * blitzAmount})
	return settlement
}

// Apply mutates coins, flooring at zero, recomputes elimination and returns
// the seats eliminated by this settlement.
func (s Settlement) Apply(players []Player) []int {
	for _, change := range s.Changes {
		p := &players[change.Seat]
		p.Coins += change.Delta
		if p.Coins < 0 {
			p.Coins = 0
		}
	}
	return refreshEliminations(players)
}

// refreshEliminations marks zero-coin players eliminated and returns the
// seats newly marked. Elimination is permanent.
func refreshEliminations(players []Player) []int {
	var newly []int
	for i := range players {
		if players[i].Coins == 0 && !players[i].Eliminated {
			players[i].Eliminated = true
			newly = append(newly, i)
		}
	}
	return newly
}

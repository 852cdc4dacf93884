package blitz

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Phase is the lifecycle stage of the game. PhaseRoundEnd is held while a
// settlement runs and is what keeps a second settlement out.
type Phase string

const (
	PhaseSetup      Phase = "setup"
	PhasePlaying    Phase = "playing"
	PhaseFinalRound Phase = "final_round"
	PhaseRoundEnd   Phase = "round_end"
	PhaseGameEnd    Phase = "game_end"
)

func (p Phase) IsActive() bool {
	return p == PhasePlaying || p == PhaseFinalRound
}

// TurnPhase is where the current player is inside their turn.
type TurnPhase string

const (
	TurnDecision TurnPhase = "decision"
	TurnDiscard  TurnPhase = "discard"
)

const (
	NoSeat               = -1
	DefaultStartingCoins = 4
	MinPlayers           = 2
	MaxPlayers           = 8
)

type Player struct {
	Seat       int           `json:"seat"`
	Name       string        `json:"name"`
	IsHuman    bool          `json:"is_human"`
	Coins      int           `json:"coins"`
	Hand       []Card        `json:"hand"`
	Score      ScoreSnapshot `json:"score"`
	Eliminated bool          `json:"eliminated"`
}

func (p *Player) rescore() {
	p.Score = Score(p.Hand)
}

func (p *Player) resetHand() {
	p.Hand = nil
	p.Score = Score(nil)
}

type DiscardRecord struct {
	Player string `json:"player"`
	Card   Card   `json:"card"`
	Round  int    `json:"round"`
}

// RoundState is the knock bookkeeping of one round.
type RoundState struct {
	Knocker        int `json:"knocker"`
	FinalTurnsLeft int `json:"final_turns_left"`
}

func (r RoundState) HasKnocked() bool {
	return r.Knocker != NoSeat
}

// HandReveal is a concluded hand kept for end of round display.
type HandReveal struct {
	Seat  int           `json:"seat"`
	Name  string        `json:"name"`
	Hand  []Card        `json:"hand"`
	Score ScoreSnapshot `json:"score"`
}

type State struct {
	GameID        string          `json:"game_id"`
	Players       []Player        `json:"players"`
	DeckID        string          `json:"deck_id"`
	DeckRemaining int             `json:"deck_remaining"`
	Discard       Pile            `json:"discard"`
	DiscardLog    []DiscardRecord `json:"discard_log"`
	Phase         Phase           `json:"phase"`
	Turn          TurnPhase       `json:"turn"`
	Current       int             `json:"current"`
	Pending       *Card           `json:"pending,omitempty"`
	Round         RoundState      `json:"round"`
	RoundNumber   int             `json:"round_number"`
	Winner        int             `json:"winner"`
	Message       string          `json:"message"`
	LastReveal    []HandReveal    `json:"last_reveal,omitempty"`
}

// NewState seats the players with their starting coins and empty hands.
func NewState(config Config) (*State, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	coins := config.StartingCoins
	if coins == 0 {
		coins = DefaultStartingCoins
	}

	s := &State{
		GameID:      config.GameID,
		Players:     make([]Player, 0, len(config.PlayerNames)),
		Discard:     Pile{},
		DiscardLog:  make([]DiscardRecord, 0, 64),
		Phase:       PhaseSetup,
		Turn:        TurnDecision,
		Current:     0,
		Round:       RoundState{Knocker: NoSeat},
		RoundNumber: 1,
		Winner:      NoSeat,
		Message:     "Starting new game...",
	}

	for seat, name := range config.PlayerNames {
		s.Players = append(s.Players, Player{
			Seat:    seat,
			Name:    name,
			IsHuman: seat == config.HumanSeat,
			Coins:   coins,
			Score:   Score(nil),
		})
	}
	return s, nil
}

// Clone deep copies the state so a transition can run without touching the original.
func (s *State) Clone() *State {
	c := *s
	c.Players = slices.Clone(s.Players)
	for i := range c.Players {
		c.Players[i].Hand = slices.Clone(s.Players[i].Hand)
	}
	c.Discard = slices.Clone(s.Discard)
	c.DiscardLog = slices.Clone(s.DiscardLog)
	if s.Pending != nil {
		pending := *s.Pending
		c.Pending = &pending
	}
	c.LastReveal = slices.Clone(s.LastReveal)
	for i := range c.LastReveal {
		c.LastReveal[i].Hand = slices.Clone(s.LastReveal[i].Hand)
	}
	return &c
}

func (s *State) CurrentPlayer() *Player {
	return &s.Players[s.Current]
}

func (s *State) ActiveSeats() []int {
	seats := make([]int, 0, len(s.Players))
	for _, p := range s.Players {
		if !p.Eliminated {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

func (s *State) ActiveCount() int {
	return len(s.ActiveSeats())
}

func (s *State) TopDiscard() (Card, bool) {
	top, err := s.Discard.Top()
	return top, err == nil
}

func (s *State) TotalCoins() int {
	total := 0
	for _, p := range s.Players {
		total += p.Coins
	}
	return total
}

func (s *State) WinnerPlayer() *Player {
	if s.Winner == NoSeat {
		return nil
	}
	return &s.Players[s.Winner]
}

func (s *State) Summary() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Round %d, phase %s/%s\n", s.RoundNumber, s.Phase, s.Turn))
	sb.WriteString(fmt.Sprintf("Deck %s remaining: %d\n", s.DeckID, s.DeckRemaining))
	sb.WriteString(fmt.Sprintf("Discard pile count: %d\n", s.Discard.Len()))
	sb.WriteString("Players (coins, best):\n----------\n")
	for _, p := range s.Players {
		marker := " "
		if p.Seat == s.Current {
			marker = "*"
		}
		status := ""
		if p.Eliminated {
			status = " (eliminated)"
		}
		sb.WriteString(fmt.Sprintf("%s%d %s: %d, %d%s\n", marker, p.Seat, p.Name, p.Coins, p.Score.Best, status))
	}
	if s.Round.HasKnocked() {
		sb.WriteString(fmt.Sprintf("Knocker: %s, final turns left: %d\n", s.Players[s.Round.Knocker].Name, s.Round.FinalTurnsLeft))
	}

	return sb.String()
}

// Config seats a new table. HumanSeat is NoSeat for an all-computer table.
type Config struct {
	GameID        string
	PlayerNames   []string
	HumanSeat     int
	StartingCoins int
}

// DefaultConfig seats the human at 0 followed by numbered opponents.
func DefaultConfig(humanName string, opponents int) Config {
	names := []string{humanName}
	for i := 0; i < opponents; i++ {
		names = append(names, fmt.Sprintf("Player %d", i+2))
	}
	return Config{
		PlayerNames:   names,
		HumanSeat:     0,
		StartingCoins: DefaultStartingCoins,
	}
}

func (c Config) Validate() error {
	if n := len(c.PlayerNames); n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: need %d..%d players, got %d", ErrInvalidConfig, MinPlayers, MaxPlayers, n)
	}
	for i, name := range c.PlayerNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty name at seat %d", ErrInvalidConfig, i)
		}
		if slices.Index(c.PlayerNames, name) != i {
			return fmt.Errorf("%w: duplicate player name %q", ErrInvalidConfig, name)
		}
	}
	if c.HumanSeat != NoSeat && (c.HumanSeat < 0 || c.HumanSeat >= len(c.PlayerNames)) {
		return fmt.Errorf("%w: human seat %d out of range", ErrInvalidConfig, c.HumanSeat)
	}
	if c.StartingCoins < 0 {
		return fmt.Errorf("%w: negative starting coins", ErrInvalidConfig)
	}
	return nil
}

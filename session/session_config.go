package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/nrawrx3/blitz"
)

type EnvConfig struct {
	// Empty means an embedded dealer.
	DeckApiUrl string `split_words:"true"`

	PlayerName          string `split_words:"true" default:"You"`
	Opponents           int    `split_words:"true" default:"3"`
	StartingCoins       int    `split_words:"true" default:"4"`
	OpponentDelayMsecs  int    `split_words:"true" default:"800"`
	RequestTimeoutMsecs int    `split_words:"true" default:"5000"`
	Seed                int64  `split_words:"true" default:"0"`

	// Testing, debugging related options
	Debug               bool   `split_words:"true" default:"false"`
	DebugHandConfigJson string `split_words:"true"`
}

func (c *EnvConfig) OpponentDelay() time.Duration {
	return time.Duration(c.OpponentDelayMsecs) * time.Millisecond
}

func (c *EnvConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMsecs) * time.Millisecond
}

// TableConfig seats the local player first, followed by the opponents.
func (c *EnvConfig) TableConfig() (blitz.Config, error) {
	name := strings.TrimSpace(c.PlayerName)
	if !blitz.IsUserNameAllowed(name) {
		return blitz.Config{}, fmt.Errorf("%w: only letters, digits, spaces and underscores allowed in name %q", blitz.ErrInvalidConfig, c.PlayerName)
	}
	if c.StartingCoins < 1 {
		return blitz.Config{}, fmt.Errorf("%w: starting coins must be at least 1", blitz.ErrInvalidConfig)
	}

	config := blitz.DefaultConfig(name, c.Opponents)
	config.StartingCoins = c.StartingCoins
	return config, config.Validate()
}

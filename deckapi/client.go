// Package deckapi is the HTTP deck gateway for deckofcardsapi.com and the
// local dealer, which speaks the same protocol.
package deckapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nrawrx3/blitz"
	"github.com/nrawrx3/blitz/internal/messages"
	"github.com/nrawrx3/blitz/internal/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://deckofcardsapi.com/api/deck"

const defaultRequestTimeout = 5 * time.Second

type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
	logger         *zap.SugaredLogger
}

type ConfigNewClient struct {
	BaseURL        string // e.g. http://localhost:9000/api/deck
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Logger         *zap.SugaredLogger
}

func NewClient(config *ConfigNewClient) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(config.BaseURL, "/"),
		httpClient:     config.HTTPClient,
		requestTimeout: config.RequestTimeout,
		logger:         config.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = defaultRequestTimeout
	}
	if c.httpClient == nil {
		c.httpClient = utils.CreateHTTPClient(c.requestTimeout)
	}
	if c.logger == nil {
		c.logger = zap.NewNop().Sugar()
	}
	return c
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, context.CancelFunc, error) {
	sender := utils.RequestSender{
		Client: c.httpClient,
		Method: "GET",
		URL:    url,
	}
	resp, cancel, err := sender.SendWithTimeout(ctx, c.requestTimeout)
	if err != nil {
		return nil, cancel, err
	}
	if err := utils.CheckResponseCode(resp); err != nil {
		return nil, cancel, err
	}
	return resp, cancel, nil
}

func (c *Client) CreateDeck(ctx context.Context) (blitz.DeckHandle, error) {
	url := c.baseURL + "/new/shuffle/?deck_count=1"

	resp, cancel, err := c.get(ctx, url)
	defer cancel()
	if err != nil {
		c.logger.Warnf("Create deck failed: %s", err)
		return blitz.DeckHandle{}, blitz.NewGatewayError("create deck", err)
	}
	defer resp.Body.Close()

	body, err := messages.DecodeNewDeckResponse(resp.Body)
	if err != nil {
		return blitz.DeckHandle{}, blitz.NewGatewayError("create deck", errors.Wrap(err, "decoding new deck response"))
	}
	if !body.Success || body.DeckID == "" {
		return blitz.DeckHandle{}, blitz.NewGatewayError("create deck", errors.Wrapf(blitz.ErrMalformedDraw, "new deck response %+v", body))
	}

	c.logger.Debugw("Created deck", "deck_id", body.DeckID, "remaining", body.Remaining)
	return blitz.DeckHandle{ID: body.DeckID, Remaining: body.Remaining}, nil
}

// Draw asks for count cards. A short or empty draw is passed through as is,
// the table decides what exhaustion means.
func (c *Client) Draw(ctx context.Context, deckID string, count int) (blitz.DrawResult, error) {
	url := fmt.Sprintf("%s/%s/draw/?count=%d", c.baseURL, deckID, count)

	resp, cancel, err := c.get(ctx, url)
	defer cancel()
	if err != nil {
		c.logger.Warnf("Draw of %d from %s failed: %s", count, deckID, err)
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", err)
	}
	defer resp.Body.Close()

	body, err := messages.DecodeDrawResponse(resp.Body)
	if err != nil {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", errors.Wrap(err, "decoding draw response"))
	}

	// A failed draw still carries whatever was left in the deck.
	if !body.Success && len(body.Cards) == 0 && body.Remaining != 0 {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", errors.Errorf("deck service refused draw: %s", body.Error))
	}

	cards, err := body.DecodeCards()
	if err != nil {
		return blitz.DrawResult{}, blitz.NewGatewayError("draw", errors.Wrap(blitz.ErrMalformedDraw, err.Error()))
	}

	return blitz.DrawResult{Cards: cards, Remaining: body.Remaining}, nil
}

// Reshuffle puts every card of the deck back and shuffles it. The table never
// needs this, it asks for a new deck instead.
func (c *Client) Reshuffle(ctx context.Context, deckID string) (blitz.DeckHandle, error) {
	url := fmt.Sprintf("%s/%s/shuffle/", c.baseURL, deckID)

	resp, cancel, err := c.get(ctx, url)
	defer cancel()
	if err != nil {
		return blitz.DeckHandle{}, blitz.NewGatewayError("reshuffle", err)
	}
	defer resp.Body.Close()

	body, err := messages.DecodeNewDeckResponse(resp.Body)
	if err != nil {
		return blitz.DeckHandle{}, blitz.NewGatewayError("reshuffle", errors.Wrap(err, "decoding shuffle response"))
	}
	return blitz.DeckHandle{ID: body.DeckID, Remaining: body.Remaining}, nil
}

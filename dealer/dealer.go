// Package dealer serves shuffled decks over HTTP with the same routes and
// bodies as deckofcardsapi.com, so games can run without the public service.
package dealer

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/nrawrx3/blitz/internal/messages"
	"github.com/nrawrx3/blitz/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxDeckCount    = 8
	maxDrawCount    = 52 * maxDeckCount
	sweepInterval   = time.Minute
	shutdownTimeout = 5 * time.Second
	defaultDeckTTL  = 2 * time.Hour
)

type Dealer struct {
	registry   *deckRegistry
	router     *mux.Router
	httpServer *http.Server
	logger     *zap.SugaredLogger
}

type ConfigNewDealer struct {
	ListenAddr utils.HostPortProtocol
	Seed       int64 // 0 seeds from the clock
	DeckTTL    time.Duration
	Logger     *zap.SugaredLogger
}

func NewDealer(config *ConfigNewDealer) *Dealer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ttl := config.DeckTTL
	if ttl <= 0 {
		ttl = defaultDeckTTL
	}

	dealer := &Dealer{
		registry: newDeckRegistry(rand.New(rand.NewSource(seed)), ttl, logger),
		logger:   logger,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/deck").Subrouter()
	api.Path("/new/shuffle/").Methods("GET", "POST").HandlerFunc(dealer.handleNewDeck)
	api.Path("/{deck_id}/draw/").Methods("GET", "POST").HandlerFunc(dealer.handleDraw)
	api.Path("/{deck_id}/shuffle/").Methods("GET", "POST").HandlerFunc(dealer.handleShuffle)
	api.Path("/{deck_id}/").Methods("GET").HandlerFunc(dealer.handleDeckInfo)
	utils.RoutesSummary(r, logger)
	dealer.router = r

	dealer.httpServer = &http.Server{
		Handler:           r,
		Addr:              config.ListenAddr.BindString(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       1 * time.Minute,
		ReadHeaderTimeout: 2 * time.Second,
	}

	return dealer
}

func (dealer *Dealer) Router() http.Handler {
	return dealer.router
}

// RunServer listens on the configured address and serves until ctx is done.
func (dealer *Dealer) RunServer(ctx context.Context) error {
	listener, err := net.Listen("tcp", dealer.httpServer.Addr)
	if err != nil {
		return err
	}
	return dealer.Serve(ctx, listener)
}

// Serve runs the server on listener next to the idle deck sweeper. When ctx is
// done the server is shut down and Serve returns.
func (dealer *Dealer) Serve(ctx context.Context, listener net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dealer.logger.Infof("Running dealer server at addr: %s", listener.Addr())
		err := dealer.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				dealer.registry.sweep()
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return dealer.httpServer.Shutdown(shutdownCtx)
			}
		}
	})

	return g.Wait()
}

// Req:		GET /api/deck/new/shuffle/?deck_count=N
// Resp:	NewDeckResponse
func (dealer *Dealer) handleNewDeck(w http.ResponseWriter, r *http.Request) {
	deckCount := 1
	if v := r.URL.Query().Get("deck_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxDeckCount {
			utils.WriteErrorPayload(w, http.StatusBadRequest, ErrInvalidDeckCount)
			return
		}
		deckCount = n
	}

	deckID, remaining := dealer.registry.newDeck(deckCount)
	utils.WriteJSON(w, http.StatusOK, messages.NewDeckResponse{
		Success:   true,
		DeckID:    deckID,
		Shuffled:  true,
		Remaining: remaining,
	})
}

// Req:		GET /api/deck/{deck_id}/draw/?count=N
// Resp:	DrawResponse. Drawing past the end answers with the cards that were
// left and success false, the way the public service does.
func (dealer *Dealer) handleDraw(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deck_id"]

	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxDrawCount {
			utils.WriteErrorPayload(w, http.StatusBadRequest, ErrInvalidDrawCount)
			return
		}
		count = n
	}

	cards, remaining, err := dealer.registry.draw(deckID, count)

	var notEnough *NotEnoughCardsError
	switch {
	case errors.As(err, &notEnough):
		resp := messages.NewDrawResponse(deckID, cards, remaining)
		resp.Success = false
		resp.Error = notEnough.Error()
		utils.WriteJSON(w, http.StatusOK, resp)

	case errors.Is(err, ErrDeckNotFound):
		dealer.logger.Warnf("Draw from unknown deck %s", deckID)
		utils.WriteErrorPayload(w, http.StatusNotFound, err)

	case err != nil:
		utils.WriteErrorPayload(w, http.StatusBadRequest, err)

	default:
		utils.WriteJSON(w, http.StatusOK, messages.NewDrawResponse(deckID, cards, remaining))
	}
}

// Req:		GET /api/deck/{deck_id}/shuffle/?remaining=true
// Resp:	NewDeckResponse
func (dealer *Dealer) handleShuffle(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deck_id"]
	onlyRemaining := r.URL.Query().Get("remaining") == "true"

	remaining, err := dealer.registry.reshuffle(deckID, onlyRemaining)
	if err != nil {
		utils.WriteErrorPayload(w, http.StatusNotFound, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, messages.NewDeckResponse{
		Success:   true,
		DeckID:    deckID,
		Shuffled:  true,
		Remaining: remaining,
	})
}

func (dealer *Dealer) handleDeckInfo(w http.ResponseWriter, r *http.Request) {
	deckID := mux.Vars(r)["deck_id"]

	remaining, err := dealer.registry.remaining(deckID)
	if err != nil {
		utils.WriteErrorPayload(w, http.StatusNotFound, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, messages.NewDeckResponse{
		Success:   true,
		DeckID:    deckID,
		Shuffled:  true,
		Remaining: remaining,
	})
}

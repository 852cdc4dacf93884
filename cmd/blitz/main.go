package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"

	"github.com/nrawrx3/blitz"
	cmdcommon "github.com/nrawrx3/blitz/cmd"
	"github.com/nrawrx3/blitz/console"
	"github.com/nrawrx3/blitz/dealer"
	"github.com/nrawrx3/blitz/deckapi"
	"github.com/nrawrx3/blitz/hand_reader"
	"github.com/nrawrx3/blitz/internal/utils"
	"github.com/nrawrx3/blitz/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "conf", ".env", "Dotenv config file")
	flag.Parse()

	var envConfig session.EnvConfig
	if err := cmdcommon.LoadEnvConfig(configFile, "BLITZ", &envConfig); err != nil {
		log.Fatal(err.Error())
	}

	if err := run(envConfig); err != nil {
		log.Fatal(err.Error())
	}
}

func run(envConfig session.EnvConfig) error {
	logger, err := utils.CreateFileLogger("blitz", envConfig.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tableConfig, err := envConfig.TableConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	gateway, err := createGateway(ctx, g, envConfig, len(tableConfig.PlayerNames), logger)
	if err != nil {
		return err
	}

	s, err := session.New(session.Config{
		Table:         tableConfig,
		Gateway:       gateway,
		OpponentDelay: envConfig.OpponentDelay(),
		Seed:          envConfig.Seed,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	replCtx, cancelRepl := context.WithCancel(ctx)
	g.Go(func() error {
		// The dealer goroutine stops with the REPL.
		defer stop()
		defer cancelRepl()
		return console.New(s, os.Stdout, logger.Named("console")).RunREPL(replCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	log.Printf("Logs written to %s", utils.LogFilePath("blitz"))
	return err
}

// createGateway picks the scripted deck, a remote deck API, or a dealer
// served on a loopback port, in that order.
func createGateway(ctx context.Context, g *errgroup.Group, envConfig session.EnvConfig, players int, logger *zap.SugaredLogger) (blitz.DeckGateway, error) {
	if envConfig.DebugHandConfigJson != "" {
		gateway, err := hand_reader.LoadConfigFile(envConfig.DebugHandConfigJson, logger.Named("hand_reader"))
		if err != nil {
			return nil, err
		}
		if err := gateway.CheckPlayerCount(players); err != nil {
			return nil, err
		}
		return gateway, nil
	}

	baseURL := envConfig.DeckApiUrl
	if baseURL == "" {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, err
		}

		d := dealer.NewDealer(&dealer.ConfigNewDealer{
			Seed:   envConfig.Seed,
			Logger: logger.Named("dealer"),
		})
		g.Go(func() error {
			return d.Serve(ctx, listener)
		})

		tcpAddr := listener.Addr().(*net.TCPAddr)
		var addr utils.HostPortProtocol
		addr.SetHostPort(tcpAddr.IP.String(), tcpAddr.Port)
		baseURL = addr.HTTPAddressString() + "/api/deck"
		logger.Infof("Embedded dealer at %s", baseURL)
	}

	return deckapi.NewClient(&deckapi.ConfigNewClient{
		BaseURL:        baseURL,
		HTTPClient:     utils.CreateHTTPClient(envConfig.RequestTimeout()),
		RequestTimeout: envConfig.RequestTimeout(),
		Logger:         logger.Named("deckapi"),
	}), nil
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	cmdcommon "github.com/nrawrx3/blitz/cmd"
	"github.com/nrawrx3/blitz/dealer"
	"github.com/nrawrx3/blitz/internal/utils"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "conf", ".env", "Dotenv config file for the dealer server")
	flag.Parse()

	var envConfig dealer.EnvConfig
	if err := cmdcommon.LoadEnvConfig(configFile, "DEALER", &envConfig); err != nil {
		log.Fatal(err.Error())
	}

	logger := utils.CreateConsoleLogger("dealer", envConfig.Debug)
	defer logger.Sync()

	config := &dealer.ConfigNewDealer{
		Seed:    envConfig.Seed,
		DeckTTL: time.Duration(envConfig.DeckTtlMinutes) * time.Minute,
		Logger:  logger,
	}
	config.ListenAddr.SetHostPort(envConfig.ListenAddr, envConfig.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := dealer.NewDealer(config).RunServer(ctx); err != nil {
		logger.Fatalf("Dealer stopped: %s", err)
	}
}

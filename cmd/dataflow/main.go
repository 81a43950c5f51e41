// Command dataflow is a development probe for the market data clients:
// it prints the last price and recent history of one MOEX ticker as JSON.
//
// Usage: go run ./cmd/dataflow [TICKER]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyike/MoexGo/internal/config"
	"github.com/dyike/MoexGo/internal/dataflows"
	"github.com/dyike/MoexGo/internal/monitor"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	ticker := "SBER"
	if len(os.Args) > 1 {
		ticker = os.Args[1]
	}

	moex := dataflows.NewMoexClient(cfg, monitor.New(0))

	price, err := moex.GetLastPrice(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "last price: %v\n", err)
	} else {
		fmt.Printf("%s last price: %.2f RUB\n", ticker, price)
	}

	candles, err := moex.GetTickerHistory(ctx, ticker, cfg.RecentDataDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history: %v\n", err)
		os.Exit(1)
	}

	payload, _ := json.MarshalIndent(candles, "", "  ")
	fmt.Println(string(payload))
}

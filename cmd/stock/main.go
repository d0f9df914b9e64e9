package main

import (
	"context"
	"flag"
	"log"

	"dermo-chatbot-platform/internal/config"
	"dermo-chatbot-platform/internal/logger"
	"dermo-chatbot-platform/internal/stock"
)

// One-shot stock sync against the inventory spreadsheet. By default it pulls
// the sheet into the local CSV; with -push it also writes discounted prices
// back to the sheet.
func main() {
	push := flag.Bool("push", false, "write discounted prices back to the spreadsheet")
	multiplier := flag.Float64("multiplier", 0, "price multiplier for -push (defaults to PRICE_MULTIPLIER)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if *multiplier == 0 {
		*multiplier = cfg.PriceMultiplier
	}

	logger.InitLogger(cfg)

	ctx := context.Background()
	syncer, err := stock.NewSyncer(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to init stock syncer:", err)
	}

	n, err := syncer.Pull(ctx)
	if err != nil {
		log.Fatal("Failed to pull stock:", err)
	}
	logger.Info("stock pulled", "items", n, "path", cfg.StockCSVPath)

	if *push {
		if err := syncer.Push(ctx, *multiplier); err != nil {
			log.Fatal("Failed to push prices:", err)
		}
		logger.Info("prices pushed", "multiplier", *multiplier)
	}
}

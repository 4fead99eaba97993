// Seed script for loading the demo statements and one outcome into the durable log.
// Run with: go run ./scripts/seed.go
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/config"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/graph"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/store"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	engine, err := service.OpenEngine(ctx, service.EngineConfig{
		Store: store.Options{
			Driver:      config.StoreDriver(),
			SQLitePath:  config.SQLitePath(),
			DatabaseURL: config.DatabaseURL(),
			BadgerPath:  config.BadgerPath(),
		},
		Breaker:         store.DefaultBreakerConfig(),
		VocabularyPath:  config.VocabularyPath(),
		Graph:           graph.DefaultConfig(),
		HistoryCapacity: config.HistoryCapacity(),
		ReplayOnStart:   true,
	}, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to open learning engine: %v", err)
	}
	defer engine.Close()

	fmt.Printf("Opened %s store (%d edges already known)\n", config.StoreDriver(), engine.Graph.Stats().Edges)

	quotes := []struct {
		actor   string
		text    string
		context domain.MarketContext
	}{
		{
			"Warren Buffett",
			"Apple has a consumer product that is extraordinarily sticky. People love their iPhone.",
			domain.MarketContext{MarketPhase: "bull_market", KeyThemes: []string{"technology", "consumer"}},
		},
		{
			"Peter Lynch",
			"I'm always looking for companies with 20-30% earnings growth that the market doesn't recognize yet.",
			domain.MarketContext{MarketPhase: "transition", KeyThemes: []string{"growth", "undervalued"}},
		},
		{
			"Warren Buffett",
			"Coca-Cola sells 1.9 billion servings a day. That's a business I can understand.",
			domain.MarketContext{MarketPhase: "neutral", KeyThemes: []string{"consumer", "simple"}},
		},
	}

	for _, q := range quotes {
		triples, err := engine.Learning.LearnFromQuote(ctx, q.actor, q.text, q.context)
		if err != nil {
			log.Printf("Warning: %v", err)
		}
		fmt.Printf("Learned %d triple(s) from %s quote\n", len(triples), q.actor)
	}

	vol := 0.8
	current := domain.MarketContext{
		MarketPhase:        "bear_market",
		KeyThemes:          []string{"ai_hype", "inflation_concerns"},
		MentionedCompanies: []string{"Apple", "Tesla"},
		Volatility:         &vol,
	}

	fmt.Println("\nPredictions for the current market:")
	for _, actor := range []string{"Warren Buffett", "Peter Lynch"} {
		d := engine.Prediction.PredictInvestorBehavior(actor, current)
		fmt.Printf("  %s: %s (%.2f) %s\n", actor, d.Action, d.Confidence, d.Reasoning)
	}

	exp, err := engine.Learning.LearnFromOutcome(ctx,
		domain.Prediction{ActorID: "Warren Buffett", Action: domain.ActionBuy, Context: current},
		domain.Outcome{Performance: 0.25, TimeHorizon: "2y"})
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	fmt.Printf("\nLearned from Warren Buffett outcome (25%% gain, accuracy %.2f)\n", exp.Accuracy)

	fmt.Println("\n=== Seed Complete ===")
	fmt.Println("\nTo query the API, use:")
	fmt.Println(`curl -X POST http://localhost:8080/v1/predictions -d '{"actor_id":"Warren Buffett","context":{"market_phase":"bear_market","mentioned_companies":["Apple"]}}'`)
}

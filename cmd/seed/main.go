// Command seed populates a journal database with sample trades so the
// dashboard has something to show on a fresh install.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"time"

	"tradecraft/internal/adapters/logger"
	"tradecraft/internal/adapters/sqlite"
	"tradecraft/internal/domain"
)

var (
	dbPath = flag.String("db", "./data/journal.db", "Path to the SQLite database")
	userID = flag.String("user", "demo", "User to own the sample trades")
	count  = flag.Int("count", 50, "Number of sample trades to create")
	seed   = flag.Int64("seed", 1, "Random seed for reproducible data")
)

var symbols = []string{"AAPL", "TSLA", "NVDA", "SPY", "QQQ", "AMD", "MSFT"}

var tagSets = [][]string{
	{"breakout"},
	{"earnings", "gap-up"},
	{"reversal"},
	{"scalp"},
	nil, // some trades go untagged
}

func main() {
	flag.Parse()

	appLogger := logger.NewStdLogger(logger.LevelInfo)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: *dbPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: failed to open repository: %v", err)
	}
	defer repo.Close()

	rng := rand.New(rand.NewSource(*seed))
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < *count; i++ {
		entryTime := now.AddDate(0, 0, -rng.Intn(60)).Add(-time.Duration(rng.Intn(6)) * time.Hour)
		qty := float64(rng.Intn(190) + 10)
		price := 20 + rng.Float64()*480

		trade := &domain.Trade{
			UserID:    *userID,
			Symbol:    symbols[rng.Intn(len(symbols))],
			AssetType: domain.AssetStock,
			CreatedAt: entryTime,
			Tags:      tagSets[rng.Intn(len(tagSets))],
			Legs: []domain.Leg{{
				Action:   domain.Buy,
				Time:     entryTime,
				Quantity: qty,
				Price:    price,
				Fee:      1,
			}},
		}

		// Roughly one in six trades stays open.
		if rng.Intn(6) != 0 {
			move := price * (rng.Float64()*0.08 - 0.035) // skewed slightly positive
			trade.Legs = append(trade.Legs, domain.Leg{
				Action:   domain.Sell,
				Time:     entryTime.Add(time.Duration(rng.Intn(72)+1) * time.Hour),
				Quantity: qty,
				Price:    price + move,
				Fee:      1,
			})
		}

		if _, err := repo.Create(ctx, trade); err != nil {
			log.Fatalf("FATAL: failed to seed trade %d: %v", i, err)
		}
	}

	appLogger.Info(ctx, "Sample trades created", map[string]interface{}{"count": *count, "user": *userID, "db": *dbPath})
}

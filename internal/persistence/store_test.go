package persistence_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atlas-desktop/discover/internal/persistence"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *persistence.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "discover.db")
	store, err := persistence.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(hash string, score int64, winRate int64, trades int) (string, persistence.Record) {
	result := types.DiscoveryResult{
		Descriptor:   types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 30}},
		StrategyName: "rsi",
		Symbol:       "BTC-USD",
		Days:         30,
		SizingMode:   types.SizingFixed,
		CompositeScore: decimal.NewFromInt(score),
		Metrics: types.MetricsRecord{
			TotalPnL:    decimal.NewFromInt(100),
			TotalTrades: trades,
			WinRate:     decimal.NewFromInt(winRate),
		},
	}
	rec, err := persistence.FromResult(hash, result)
	if err != nil {
		panic(err)
	}
	return hash, rec
}

func TestSaveAndGetByHash(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	hash, rec := sampleResult("hash-1", 50, 60, 10)
	if _, err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, found, err := store.GetByHash(ctx, hash)
	if err != nil {
		t.Fatalf("get_by_hash errored: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.StrategyName != "rsi" {
		t.Fatalf("strategy_name = %q, want rsi", got.StrategyName)
	}
}

func TestGetByHashMiss(t *testing.T) {
	store := openTestStore(t)
	_, found, err := store.GetByHash(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error on miss: %v", err)
	}
	if found {
		t.Fatal("expected cache miss")
	}
}

func TestSaveIgnoresDuplicateHash(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	hash, rec := sampleResult("dup-hash", 10, 50, 5)
	if _, err := store.Save(ctx, rec); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	_, rec2 := sampleResult(hash, 999, 99, 99)
	if _, err := store.Save(ctx, rec2); err != nil {
		t.Fatalf("second save (ignored) failed: %v", err)
	}

	got, found, err := store.GetByHash(ctx, hash)
	if err != nil || !found {
		t.Fatalf("expected the first row to survive: err=%v found=%v", err, found)
	}
	if got.CompositeScore != "10" {
		t.Fatalf("expected original composite_score=10 to be preserved, got %s", got.CompositeScore)
	}
}

func TestGetAllPaginated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, rec := sampleResult(string(rune('a'+i)), int64(i*10), 60, 10)
		if _, err := store.Save(ctx, rec); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	rows, total, err := store.GetAllPaginated(ctx, 2, 0, persistence.Filters{}, "score")
	if err != nil {
		t.Fatalf("get_all_paginated failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if len(rows) != 2 {
		t.Fatalf("page length = %d, want 2", len(rows))
	}
}

func TestGetTopUniqueStrategiesRequiresMinTrades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, lowTrades := sampleResult("low", 100, 90, 3)
	_, highTrades := sampleResult("high", 50, 60, 10)
	if _, err := store.Save(ctx, lowTrades); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, highTrades); err != nil {
		t.Fatal(err)
	}

	rows, err := store.GetTopUniqueStrategies(ctx, 10, "win_rate")
	if err != nil {
		t.Fatalf("get_top_unique_strategies failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (total_trades>=5 filter), got %d", len(rows))
	}
	if rows[0].ParamsHash != "high" {
		t.Fatalf("expected the >=5-trade row to survive, got %s", rows[0].ParamsHash)
	}
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, rec := sampleResult("stats-1", 50, 75, 10)
	if _, err := store.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("get_stats failed: %v", err)
	}
	if stats.TotalRows != 1 {
		t.Fatalf("total_rows = %d, want 1", stats.TotalRows)
	}
	if stats.UniqueStrategies != 1 || stats.UniqueSymbols != 1 {
		t.Fatalf("unexpected unique counts: %+v", stats)
	}
}

package evaluator

import (
	"testing"

	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/internal/signal"
	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

func makeBars(prices []float64) []types.Bar {
	bars := make([]types.Bar, len(prices))
	for i, p := range prices {
		price := decimal.NewFromFloat(p)
		bars[i] = types.Bar{
			OpenTime:  int64(i) * 60000,
			CloseTime: int64(i+1)*60000 - 1,
			Open:      price,
			High:      price.Add(decimal.NewFromInt(1)),
			Low:       price.Sub(decimal.NewFromInt(1)),
			Close:     price,
			Volume:    decimal.NewFromInt(100),
		}
	}
	return bars
}

func defaultCfg() Config {
	return Config{
		InitialCapital:  decimal.NewFromInt(10000),
		BasePositionPct: decimal.NewFromInt(10),
		SizingMode:      types.SizingFixed,
		Fees:            fees.DefaultConfig(),
	}
}

func TestEmptyBars(t *testing.T) {
	gen, _ := signal.Build(types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 30}})
	result := Run(gen, nil, defaultCfg())
	if result.Metrics.TotalTrades != 0 {
		t.Fatalf("expected 0 trades on empty bars, got %d", result.Metrics.TotalTrades)
	}
	if !result.Metrics.TotalPnL.IsZero() {
		t.Fatalf("expected 0 pnl on empty bars")
	}
}

func TestRunsWithoutPanic(t *testing.T) {
	prices := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		prices = append(prices, 100-float64(i)*2)
	}
	for i := 0; i < 20; i++ {
		prices = append(prices, 60+float64(i)*3)
	}
	gen, err := signal.Build(types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 14, Overbought: 70, Oversold: 30}})
	if err != nil {
		t.Fatal(err)
	}
	result := Run(gen, makeBars(prices), defaultCfg())
	if result.Metrics.TotalTrades < 0 {
		t.Fatal("trade count must not be negative")
	}
	if len(result.Equity) != len(prices) {
		t.Fatalf("expected one equity point per bar, got %d", len(result.Equity))
	}
}

func TestWinRateInvariant(t *testing.T) {
	prices := make([]float64, 0, 60)
	for i := 0; i < 30; i++ {
		prices = append(prices, 100-float64(i))
	}
	for i := 0; i < 30; i++ {
		prices = append(prices, 70+float64(i))
	}
	gen, _ := signal.Build(types.Descriptor{Kind: types.FamilyRSI, RSI: &types.RSIParams{Period: 5, Overbought: 65, Oversold: 35}})
	result := Run(gen, makeBars(prices), defaultCfg())
	m := result.Metrics
	if m.WinningTrades+m.LosingTrades != m.TotalTrades {
		t.Fatalf("winning+losing != total: %d+%d != %d", m.WinningTrades, m.LosingTrades, m.TotalTrades)
	}
	if m.TotalTrades > 0 {
		expected := decimal.NewFromInt(int64(m.WinningTrades)).Div(decimal.NewFromInt(int64(m.TotalTrades))).Mul(decimal.NewFromInt(100))
		if !m.WinRate.Equal(expected) {
			t.Fatalf("win_rate = %s, want %s", m.WinRate, expected)
		}
	}
}

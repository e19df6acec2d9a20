// Package types holds the data model shared across the discovery pipeline:
// bars, trades, sizing modes, metrics, and discovery results.
package types

import "github.com/shopspring/decimal"

// Bar is one OHLCV observation, addressed in integer-millisecond epoch time.
type Bar struct {
	OpenTime  int64           `json:"openTime"`
	CloseTime int64           `json:"closeTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

// BarsPerDay is the assumed cadence for annualization: 96 bars/day at 15m.
const BarsPerDay = 96

// SizingMode selects how position size is derived from equity and confidence.
type SizingMode string

const (
	SizingFixed               SizingMode = "fixed"
	SizingKelly               SizingMode = "kelly"
	SizingConfidenceWeighted  SizingMode = "confidence_weighted"
)

// AllSizingModes lists every sizing mode in a stable order.
func AllSizingModes() []SizingMode {
	return []SizingMode{SizingFixed, SizingKelly, SizingConfidenceWeighted}
}

// Signal is the output of a signal generator for one bar.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Position is the single open position an evaluator may hold at a time.
type Position struct {
	EntryTime  int64
	EntryPrice decimal.Decimal
	Size       decimal.Decimal
}

// Trade is a closed position.
type Trade struct {
	EntryTime  int64           `json:"entryTime"`
	ExitTime   int64           `json:"exitTime"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Size       decimal.Decimal `json:"size"`
	PnL        decimal.Decimal `json:"pnl"`
	PnLPct     decimal.Decimal `json:"pnlPct"`
}

// MetricsRecord is the fixed set of metrics an evaluator produces for one candidate.
type MetricsRecord struct {
	TotalPnL              decimal.Decimal `json:"totalPnl"`
	TotalFees             decimal.Decimal `json:"totalFees"`
	TotalTrades           int             `json:"totalTrades"`
	WinningTrades         int             `json:"winningTrades"`
	LosingTrades          int             `json:"losingTrades"`
	WinRate               decimal.Decimal `json:"winRate"`
	Sharpe                decimal.Decimal `json:"sharpe"`
	Sortino               decimal.Decimal `json:"sortino"`
	MaxDrawdownPct         decimal.Decimal `json:"maxDrawdownPct"`
	ProfitFactor           decimal.Decimal `json:"profitFactor"`
	AvgTradePnL            decimal.Decimal `json:"avgTradePnl"`
	MaxConsecutiveLosses   int             `json:"maxConsecutiveLosses"`
	AvgWinPnL              decimal.Decimal `json:"avgWinPnl"`
	AvgLossPnL             decimal.Decimal `json:"avgLossPnl"`
	TotalVolume            decimal.Decimal `json:"totalVolume"`
	AnnualizedReturnPct    decimal.Decimal `json:"annualizedReturnPct"`
	AnnualizedSharpe       decimal.Decimal `json:"annualizedSharpe"`
	StrategyConfidence     decimal.Decimal `json:"strategyConfidence"`

	// Arbitrage-only fields; zero for indicator strategies.
	HitRate          decimal.Decimal `json:"hitRate"`
	AvgLockedProfit  decimal.Decimal `json:"avgLockedProfit"`
}

// DiscoveryResult is one ranked, scored, fully-evaluated candidate.
type DiscoveryResult struct {
	Descriptor     Descriptor      `json:"descriptor"`
	StrategyName   string          `json:"strategyName"`
	Symbol         string          `json:"symbol"`
	Days           int             `json:"days"`
	SizingMode     SizingMode      `json:"sizingMode"`
	CompositeScore decimal.Decimal `json:"compositeScore"`
	Metrics        MetricsRecord   `json:"metrics"`
	Rank           int             `json:"rank"`
	DiscoveryRunID string          `json:"discoveryRunId"`
	Phase          string          `json:"phase"`
	CreatedAt      int64           `json:"createdAt"`
}

// NetPnL returns the fee-adjusted PnL stored as net_pnl. For indicator
// strategies total_pnl is already net (the evaluator deducts fees from
// equity as it runs); the arbitrage engine reports gross locked profit in
// total_pnl instead, so that family still needs the fee subtracted here.
func (r DiscoveryResult) NetPnL() decimal.Decimal {
	if r.Descriptor.Kind == FamilyArbitrage {
		return r.Metrics.TotalPnL.Sub(r.Metrics.TotalFees)
	}
	return r.Metrics.TotalPnL
}

// GrossPnL returns PnL before fees, the value stored as gross_pnl.
func (r DiscoveryResult) GrossPnL() decimal.Decimal {
	if r.Descriptor.Kind == FamilyArbitrage {
		return r.Metrics.TotalPnL
	}
	return r.Metrics.TotalPnL.Add(r.Metrics.TotalFees)
}

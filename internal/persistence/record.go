package persistence

import (
	"database/sql"
	"encoding/json"

	"github.com/atlas-desktop/discover/pkg/types"
	"github.com/shopspring/decimal"
)

// Record is the row shape stored in discovery_backtests, grounded on
// original_source/crates/persistence/src/repository/discovery.rs's
// DiscoveryBacktestRecord. Every decimal field is TEXT in the database so
// shopspring/decimal values round-trip without losing fixed-point precision.
type Record struct {
	ID                   int64
	ParamsHash           string
	StrategyType         string
	StrategyName         string
	StrategyParams       string
	Symbol               string
	Days                 int
	SizingMode           string
	CompositeScore       string
	NetPnL               string
	GrossPnL             string
	TotalFees            string
	WinRate              string
	TotalTrades          int
	SharpeRatio          string
	MaxDrawdownPct       string
	ProfitFactor         string
	AvgTradePnL          string
	HitRate              sql.NullString
	AvgLockedProfit      sql.NullString
	DiscoveryRunID       sql.NullString
	Phase                sql.NullString
	SortinoRatio         sql.NullString
	MaxConsecutiveLosses sql.NullInt64
	AvgWinPnL            sql.NullString
	AvgLossPnL           sql.NullString
	TotalVolume          sql.NullString
	AnnualizedReturnPct  sql.NullString
	AnnualizedSharpe     sql.NullString
	StrategyConfidence   sql.NullString
	CreatedAt            int64
}

// FromResult converts a DiscoveryResult into the row shape ready for save(),
// computing params_hash and serialising the descriptor as its params JSON.
func FromResult(hash string, r types.DiscoveryResult) (Record, error) {
	paramsJSON, err := json.Marshal(r.Descriptor)
	if err != nil {
		return Record{}, err
	}

	m := r.Metrics
	rec := Record{
		ParamsHash:           hash,
		StrategyType:         string(r.Descriptor.Kind),
		StrategyName:         r.StrategyName,
		StrategyParams:       string(paramsJSON),
		Symbol:               r.Symbol,
		Days:                 r.Days,
		SizingMode:           string(r.SizingMode),
		CompositeScore:       r.CompositeScore.String(),
		NetPnL:               r.NetPnL().String(),
		GrossPnL:             r.GrossPnL().String(),
		TotalFees:            m.TotalFees.String(),
		WinRate:              m.WinRate.String(),
		TotalTrades:          m.TotalTrades,
		SharpeRatio:          m.Sharpe.String(),
		MaxDrawdownPct:       m.MaxDrawdownPct.String(),
		ProfitFactor:         m.ProfitFactor.String(),
		AvgTradePnL:          m.AvgTradePnL.String(),
		DiscoveryRunID:       nullableString(r.DiscoveryRunID),
		Phase:                nullableString(r.Phase),
		SortinoRatio:         sql.NullString{String: m.Sortino.String(), Valid: true},
		MaxConsecutiveLosses: sql.NullInt64{Int64: int64(m.MaxConsecutiveLosses), Valid: true},
		AvgWinPnL:            sql.NullString{String: m.AvgWinPnL.String(), Valid: true},
		AvgLossPnL:           sql.NullString{String: m.AvgLossPnL.String(), Valid: true},
		TotalVolume:          sql.NullString{String: m.TotalVolume.String(), Valid: true},
		AnnualizedReturnPct:  sql.NullString{String: m.AnnualizedReturnPct.String(), Valid: true},
		AnnualizedSharpe:     sql.NullString{String: m.AnnualizedSharpe.String(), Valid: true},
		StrategyConfidence:   sql.NullString{String: m.StrategyConfidence.String(), Valid: true},
		CreatedAt:            r.CreatedAt,
	}

	if r.Descriptor.Kind == types.FamilyArbitrage {
		rec.HitRate = sql.NullString{String: m.HitRate.String(), Valid: true}
		rec.AvgLockedProfit = sql.NullString{String: m.AvgLockedProfit.String(), Valid: true}
	}

	return rec, nil
}

// ToResult converts a stored row back into a DiscoveryResult, parsing the
// stringified decimals and the descriptor's params JSON.
func (rec Record) ToResult() (types.DiscoveryResult, error) {
	var descriptor types.Descriptor
	if err := json.Unmarshal([]byte(rec.StrategyParams), &descriptor); err != nil {
		return types.DiscoveryResult{}, err
	}

	parse := func(s string) decimal.Decimal {
		d, _ := decimal.NewFromString(s)
		return d
	}
	parseNull := func(s sql.NullString) decimal.Decimal {
		if !s.Valid {
			return decimal.Zero
		}
		return parse(s.String)
	}

	m := types.MetricsRecord{
		TotalFees:            parse(rec.TotalFees),
		TotalTrades:          rec.TotalTrades,
		WinRate:              parse(rec.WinRate),
		Sharpe:               parse(rec.SharpeRatio),
		Sortino:              parseNull(rec.SortinoRatio),
		MaxDrawdownPct:       parse(rec.MaxDrawdownPct),
		ProfitFactor:         parse(rec.ProfitFactor),
		AvgTradePnL:          parse(rec.AvgTradePnL),
		AvgWinPnL:            parseNull(rec.AvgWinPnL),
		AvgLossPnL:           parseNull(rec.AvgLossPnL),
		TotalVolume:          parseNull(rec.TotalVolume),
		AnnualizedReturnPct:  parseNull(rec.AnnualizedReturnPct),
		AnnualizedSharpe:     parseNull(rec.AnnualizedSharpe),
		StrategyConfidence:   parseNull(rec.StrategyConfidence),
		HitRate:              parseNull(rec.HitRate),
		AvgLockedProfit:      parseNull(rec.AvgLockedProfit),
	}
	if rec.MaxConsecutiveLosses.Valid {
		m.MaxConsecutiveLosses = int(rec.MaxConsecutiveLosses.Int64)
	}
	// Indicator strategies store total_pnl already net of fees; only the
	// arbitrage family's total_pnl is gross locked profit.
	m.TotalPnL = parse(rec.NetPnL)
	if descriptor.Kind == types.FamilyArbitrage {
		m.TotalPnL = m.TotalPnL.Add(m.TotalFees)
	}

	result := types.DiscoveryResult{
		Descriptor:     descriptor,
		StrategyName:   rec.StrategyName,
		Symbol:         rec.Symbol,
		Days:           rec.Days,
		SizingMode:     types.SizingMode(rec.SizingMode),
		CompositeScore: parse(rec.CompositeScore),
		Metrics:        m,
		DiscoveryRunID: rec.DiscoveryRunID.String,
		Phase:          rec.Phase.String,
		CreatedAt:      rec.CreatedAt,
	}
	return result, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

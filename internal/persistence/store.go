// Package persistence is the SQLite-backed deduplicating knowledge base
// (spec §4.7, §6): every evaluated candidate is stored once, keyed by its
// content-addressed params_hash, so repeat scans skip already-tested
// configurations. Grounded on original_source/crates/persistence (schema.rs,
// repository/discovery.rs) and on the teacher's internal/data/store.go for
// the logging and constructor idiom.
package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

// Store is a handle to the discovery knowledge base. Safe for concurrent use:
// database/sql pools and serialises connections itself, and every write here
// is a single atomic statement.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open creates (or reuses) the SQLite file at path and ensures the schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serialises writers; avoid SQLITE_BUSY races

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: create schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts one evaluation result. INSERT OR IGNORE means a hash already
// present is left untouched and the duplicate evaluation work is silently
// discarded — the dedup cache is idempotent under races (spec §5).
func (s *Store) Save(ctx context.Context, rec Record) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO discovery_backtests (
			params_hash, strategy_type, strategy_name, strategy_params,
			symbol, days, sizing_mode,
			composite_score, net_pnl, gross_pnl, total_fees,
			win_rate, total_trades, sharpe_ratio, max_drawdown_pct,
			profit_factor, avg_trade_pnl,
			hit_rate, avg_locked_profit,
			discovery_run_id, phase,
			sortino_ratio, max_consecutive_losses, avg_win_pnl, avg_loss_pnl,
			total_volume, annualized_return_pct, annualized_sharpe, strategy_confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ParamsHash, rec.StrategyType, rec.StrategyName, rec.StrategyParams,
		rec.Symbol, rec.Days, rec.SizingMode,
		rec.CompositeScore, rec.NetPnL, rec.GrossPnL, rec.TotalFees,
		rec.WinRate, rec.TotalTrades, rec.SharpeRatio, rec.MaxDrawdownPct,
		rec.ProfitFactor, rec.AvgTradePnL,
		rec.HitRate, rec.AvgLockedProfit,
		rec.DiscoveryRunID, rec.Phase,
		rec.SortinoRatio, rec.MaxConsecutiveLosses, rec.AvgWinPnL, rec.AvgLossPnL,
		rec.TotalVolume, rec.AnnualizedReturnPct, rec.AnnualizedSharpe, rec.StrategyConfidence,
	)
	if err != nil {
		s.logger.Warn("discovery cache insert failed", zap.Error(err), zap.String("params_hash", rec.ParamsHash))
		return 0, err
	}
	return result.LastInsertId()
}

// GetByHash performs an exact-match lookup; a miss (including a failed read)
// returns (Record{}, false, nil) so callers treat it as cache-miss, not error.
func (s *Store) GetByHash(ctx context.Context, hash string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM discovery_backtests WHERE params_hash = ?", hash)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		s.logger.Warn("discovery cache read failed", zap.Error(err))
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Filters narrows GetAllPaginated queries.
type Filters struct {
	StrategyType string
	Symbol       string
	MinWinRate   *float64
}

var sortColumns = map[string]string{
	"score":             "CAST(composite_score AS REAL)",
	"win_rate":          "CAST(win_rate AS REAL)",
	"net_pnl":           "CAST(net_pnl AS REAL)",
	"sharpe":            "CAST(sharpe_ratio AS REAL)",
	"trades":            "total_trades",
	"drawdown":          "CAST(max_drawdown_pct AS REAL)",
	"created_at":        "created_at",
	"annualized_return": "CAST(annualized_return_pct AS REAL)",
	"sortino":           "CAST(sortino_ratio AS REAL)",
	"confidence":        "CAST(strategy_confidence AS REAL)",
}

func sortColumn(sortBy string) string {
	if col, ok := sortColumns[sortBy]; ok {
		return col
	}
	return sortColumns["score"]
}

// GetAllPaginated lists rows matching Filters, sorted by sortBy (one of the
// keys in sortColumns; defaults to composite_score), returning the page and
// the total matching row count.
func (s *Store) GetAllPaginated(ctx context.Context, limit, offset int, f Filters, sortBy string) ([]Record, int, error) {
	where := "1=1"
	var args []any

	if f.StrategyType != "" {
		where += " AND strategy_type = ?"
		args = append(args, f.StrategyType)
	}
	if f.Symbol != "" {
		where += " AND symbol = ?"
		args = append(args, f.Symbol)
	}
	if f.MinWinRate != nil {
		where += " AND CAST(win_rate AS REAL) >= ?"
		args = append(args, *f.MinWinRate)
	}

	var total int
	countRow := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM discovery_backtests WHERE "+where, args...)
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("persistence: count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM discovery_backtests WHERE %s ORDER BY %s DESC LIMIT ? OFFSET ?",
		recordColumns, where, sortColumn(sortBy))
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("persistence: query: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetTopUniqueStrategies dedups to one row per strategy_name via a
// ROW_NUMBER() window partitioned on strategy_name, restricted to rows with
// total_trades >= 5, ordered by sortBy.
func (s *Store) GetTopUniqueStrategies(ctx context.Context, limit int, sortBy string) ([]Record, error) {
	col := sortColumn(sortBy)
	query := fmt.Sprintf(`
		WITH best_ids AS (
			SELECT id, ROW_NUMBER() OVER (PARTITION BY strategy_name ORDER BY %s DESC) AS rn
			FROM discovery_backtests
			WHERE total_trades >= 5
		)
		SELECT %s
		FROM best_ids b
		JOIN discovery_backtests d ON d.id = b.id
		WHERE b.rn = 1
		ORDER BY %s DESC
		LIMIT ?
	`, col, qualifyColumns("d"), col)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("persistence: top unique strategies: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Stats summarises the knowledge base's contents, per spec §4.7/§6.
type Stats struct {
	TotalRows          int
	UniqueStrategies   int
	UniqueSymbols      int
	BestWinRate        string
	BestNetPnL         string
	BestStrategyName   string
	TotalDiscoveryRuns int
}

// GetStats computes aggregate counters over the whole knowledge base.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM discovery_backtests")
	if err := row.Scan(&stats.TotalRows); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT strategy_type) FROM discovery_backtests")
	if err := row.Scan(&stats.UniqueStrategies); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT symbol) FROM discovery_backtests")
	if err := row.Scan(&stats.UniqueSymbols); err != nil {
		return stats, err
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT discovery_run_id) FROM discovery_backtests WHERE discovery_run_id IS NOT NULL")
	if err := row.Scan(&stats.TotalDiscoveryRuns); err != nil {
		return stats, err
	}

	var winRate, strategyName sql.NullString
	row = s.db.QueryRowContext(ctx, `
		SELECT win_rate, strategy_name FROM discovery_backtests
		WHERE total_trades >= 5 ORDER BY CAST(win_rate AS REAL) DESC LIMIT 1
	`)
	if err := row.Scan(&winRate, &strategyName); err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	stats.BestWinRate = stringOr(winRate, "0")
	stats.BestStrategyName = stringOr(strategyName, "N/A")

	var netPnL sql.NullString
	row = s.db.QueryRowContext(ctx, `
		SELECT net_pnl FROM discovery_backtests
		WHERE total_trades >= 5 ORDER BY CAST(net_pnl AS REAL) DESC LIMIT 1
	`)
	if err := row.Scan(&netPnL); err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	stats.BestNetPnL = stringOr(netPnL, "0")

	return stats, nil
}

func stringOr(s sql.NullString, fallback string) string {
	if s.Valid {
		return s.String
	}
	return fallback
}

func qualifyColumns(alias string) string {
	cols := []string{
		"id", "params_hash", "strategy_type", "strategy_name", "strategy_params",
		"symbol", "days", "sizing_mode",
		"composite_score", "net_pnl", "gross_pnl", "total_fees",
		"win_rate", "total_trades", "sharpe_ratio", "max_drawdown_pct",
		"profit_factor", "avg_trade_pnl",
		"hit_rate", "avg_locked_profit",
		"discovery_run_id", "phase",
		"sortino_ratio", "max_consecutive_losses", "avg_win_pnl", "avg_loss_pnl",
		"total_volume", "annualized_return_pct", "annualized_sharpe", "strategy_confidence",
		"created_at",
	}
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.ParamsHash, &rec.StrategyType, &rec.StrategyName, &rec.StrategyParams,
		&rec.Symbol, &rec.Days, &rec.SizingMode,
		&rec.CompositeScore, &rec.NetPnL, &rec.GrossPnL, &rec.TotalFees,
		&rec.WinRate, &rec.TotalTrades, &rec.SharpeRatio, &rec.MaxDrawdownPct,
		&rec.ProfitFactor, &rec.AvgTradePnL,
		&rec.HitRate, &rec.AvgLockedProfit,
		&rec.DiscoveryRunID, &rec.Phase,
		&rec.SortinoRatio, &rec.MaxConsecutiveLosses, &rec.AvgWinPnL, &rec.AvgLossPnL,
		&rec.TotalVolume, &rec.AnnualizedReturnPct, &rec.AnnualizedSharpe, &rec.StrategyConfidence,
		&rec.CreatedAt,
	)
	return rec, err
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("persistence: scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

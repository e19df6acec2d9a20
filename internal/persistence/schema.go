package persistence

// createTables is the DDL applied once when the store opens, grounded on
// original_source/crates/persistence/src/schema.rs. Every decimal-valued
// column is TEXT so shopspring/decimal values round-trip without losing
// fixed-point precision.
const createTables = `
CREATE TABLE IF NOT EXISTS discovery_backtests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	params_hash TEXT NOT NULL UNIQUE,
	strategy_type TEXT NOT NULL,
	strategy_name TEXT NOT NULL,
	strategy_params TEXT NOT NULL,
	symbol TEXT NOT NULL,
	days INTEGER NOT NULL,
	sizing_mode TEXT NOT NULL,
	composite_score TEXT NOT NULL DEFAULT '0',
	net_pnl TEXT NOT NULL DEFAULT '0',
	gross_pnl TEXT NOT NULL DEFAULT '0',
	total_fees TEXT NOT NULL DEFAULT '0',
	win_rate TEXT NOT NULL DEFAULT '0',
	total_trades INTEGER NOT NULL DEFAULT 0,
	sharpe_ratio TEXT NOT NULL DEFAULT '0',
	max_drawdown_pct TEXT NOT NULL DEFAULT '0',
	profit_factor TEXT NOT NULL DEFAULT '0',
	avg_trade_pnl TEXT NOT NULL DEFAULT '0',
	hit_rate TEXT,
	avg_locked_profit TEXT,
	discovery_run_id TEXT,
	phase TEXT,
	sortino_ratio TEXT,
	max_consecutive_losses INTEGER,
	avg_win_pnl TEXT,
	avg_loss_pnl TEXT,
	total_volume TEXT,
	annualized_return_pct TEXT,
	annualized_sharpe TEXT,
	strategy_confidence TEXT,
	created_at INTEGER DEFAULT (strftime('%s', 'now'))
);

CREATE INDEX IF NOT EXISTS idx_discovery_strategy_name ON discovery_backtests(strategy_name);
CREATE INDEX IF NOT EXISTS idx_discovery_symbol ON discovery_backtests(symbol);
`

// recordColumns is the shared SELECT column list for every read query.
const recordColumns = `
	id, params_hash, strategy_type, strategy_name, strategy_params,
	symbol, days, sizing_mode,
	composite_score, net_pnl, gross_pnl, total_fees,
	win_rate, total_trades, sharpe_ratio, max_drawdown_pct,
	profit_factor, avg_trade_pnl,
	hit_rate, avg_locked_profit,
	discovery_run_id, phase,
	sortino_ratio, max_consecutive_losses, avg_win_pnl, avg_loss_pnl,
	total_volume, annualized_return_pct, annualized_sharpe, strategy_confidence,
	created_at
`

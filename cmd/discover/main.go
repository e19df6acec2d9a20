// Package main provides the entry point for the discovery engine: a
// strategy-search CLI that scans the descriptor parameter space against
// historical bars, scores every candidate, and ranks the survivors.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlas-desktop/discover/internal/barsource"
	"github.com/atlas-desktop/discover/internal/descriptor"
	"github.com/atlas-desktop/discover/internal/discovery"
	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/internal/metrics"
	"github.com/atlas-desktop/discover/internal/persistence"
	"github.com/atlas-desktop/discover/pkg/config"
	"github.com/atlas-desktop/discover/pkg/types"
)

func main() {
	configPath := flag.String("config", "", "Path to discover.yaml (optional)")
	profilesPath := flag.String("profiles", "", "Path to a profile-overrides YAML file (optional)")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols, overrides config")
	days := flag.Int("days", 0, "Lookback window in days, overrides config (0 = use config)")
	topN := flag.Int("top", 20, "Number of ranked results to keep/print")
	sizing := flag.String("sizing", string(types.SizingFixed), "Sizing mode: fixed, kelly, confidence_weighted")
	continuous := flag.Bool("continuous", false, "Run continuous discovery instead of a single shot")
	statsOnly := flag.Bool("stats", false, "Print the metrics registry snapshot after the run and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	overrides, err := config.LoadProfileOverrides(*profilesPath)
	if err != nil {
		logger.Fatal("load profile overrides", zap.Error(err))
	}
	descriptor.SetProfileOverrides(overrides)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := persistence.Open(cfg.Persistence.Path, logger)
	if err != nil {
		logger.Fatal("open persistence store", zap.Error(err))
	}
	defer store.Close()

	var bars barsource.Source
	if cfg.BarSource.UseSample {
		bars = barsource.SampleSource{Seed: time.Now().UnixNano()}
	} else {
		bars = barsource.NewHTTPSource(cfg.BarSource.BaseURL, cfg.BarSource.RequestsPerSec, cfg.BarSource.Burst, logger)
	}

	reg := metrics.New()

	runner := discovery.NewRunner(bars, store, reg, logger, discovery.Config{
		InitialCapital:  decimal.NewFromFloat(cfg.Discovery.InitialCapital),
		BasePositionPct: decimal.NewFromInt(10),
		Fees:            fees.DefaultConfig(),
	})

	req := buildRequest(cfg, *symbolsFlag, *days, *topN, *sizing, *continuous)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received, cancelling run")
		runner.Progress().Cancel()
		cancel()
	}()

	logger.Info("starting discovery run",
		zap.Strings("symbols", req.Symbols),
		zap.Int("days", req.Days),
		zap.Bool("continuous", req.Continuous),
		zap.String("sizing", string(req.SizingMode)),
	)

	runErr := runDiscovery(ctx, runner, req)

	snap := runner.Progress().Snapshot()
	printResults(snap.Results)

	if *statsOnly {
		printStats(reg)
	}

	if runErr != nil {
		logger.Error("discovery run ended with error", zap.Error(runErr))
		os.Exit(1)
	}
}

func runDiscovery(ctx context.Context, runner *discovery.Runner, req discovery.Request) error {
	if req.Continuous {
		return runner.RunContinuous(ctx, req)
	}
	return runner.RunSingleShot(ctx, req)
}

func buildRequest(cfg *config.Config, symbolsFlag string, days, topN int, sizing string, continuous bool) discovery.Request {
	symbols := cfg.Discovery.Symbols
	if symbolsFlag != "" {
		symbols = splitCSV(symbolsFlag)
	}
	if days == 0 {
		days = cfg.Discovery.Days
	}
	if continuous || cfg.Discovery.Continuous {
		continuous = true
	}
	return discovery.Request{
		Symbols:    symbols,
		Days:       days,
		TopN:       topN,
		SizingMode: types.SizingMode(sizing),
		Continuous: continuous,
	}
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func printResults(results []types.DiscoveryResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Strategy", "Symbol", "Score", "Net PnL", "Win Rate", "Sharpe", "Trades")

	for _, r := range results {
		table.Append(
			fmt.Sprintf("%d", r.Rank),
			r.StrategyName,
			r.Symbol,
			r.CompositeScore.StringFixed(2),
			humanize.FormatFloat("#,###.##", floatOf(r.NetPnL())),
			r.Metrics.WinRate.StringFixed(2),
			r.Metrics.Sharpe.StringFixed(2),
			fmt.Sprintf("%d", r.Metrics.TotalTrades),
		)
	}
	table.Render()
}

func printStats(reg *metrics.Registry) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gather metrics:", err)
		return
	}
	fmt.Printf("cache hit ratio: %.2f%%\n", reg.CacheHitRatio()*100)
	for _, f := range families {
		fmt.Println(f.GetName(), "-", f.GetHelp())
	}
}

func floatOf(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "console"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	if format == "json" {
		encoding = "json"
		encodeLevel = zapcore.CapitalLevelEncoder
	}

	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

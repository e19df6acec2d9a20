package discovery_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/atlas-desktop/discover/internal/barsource"
	"github.com/atlas-desktop/discover/internal/discovery"
	"github.com/atlas-desktop/discover/internal/fees"
	"github.com/atlas-desktop/discover/internal/metrics"
	"github.com/atlas-desktop/discover/internal/persistence"
	"github.com/atlas-desktop/discover/internal/progress"
	"github.com/atlas-desktop/discover/pkg/types"
)

func newTestRunner(t *testing.T) *discovery.Runner {
	t.Helper()
	store, err := persistence.Open(filepath.Join(t.TempDir(), "discover.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := discovery.Config{
		InitialCapital:  decimal.NewFromInt(10000),
		BasePositionPct: decimal.NewFromInt(10),
		Fees:            fees.DefaultConfig(),
	}
	return discovery.NewRunner(barsource.SampleSource{Seed: 1}, store, metrics.New(), zap.NewNop(), cfg)
}

func TestRunSingleShotCompletesAndRanks(t *testing.T) {
	r := newTestRunner(t)
	req := discovery.Request{
		Symbols:    []string{"BTCUSDT"},
		Days:       5,
		TopN:       5,
		SizingMode: types.SizingFixed,
	}

	if err := r.RunSingleShot(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := r.Progress().Snapshot()
	if snap.Status != progress.StatusComplete {
		t.Fatalf("status = %v, want complete", snap.Status)
	}
	if len(snap.Results) == 0 {
		t.Fatal("expected at least one ranked result")
	}
	for i, res := range snap.Results {
		if res.Rank != i+1 {
			t.Fatalf("result %d has rank %d, want %d", i, res.Rank, i+1)
		}
	}
	if snap.Completed+snap.Skipped == 0 {
		t.Fatal("expected completed+skipped candidates to be nonzero")
	}
}

func TestRunSingleShotAllFetchesFailReturnsError(t *testing.T) {
	r := discovery.NewRunner(failingSource{}, mustOpenStore(t), metrics.New(), zap.NewNop(), discovery.Config{
		InitialCapital:  decimal.NewFromInt(10000),
		BasePositionPct: decimal.NewFromInt(10),
		Fees:            fees.DefaultConfig(),
	})
	req := discovery.Request{Symbols: []string{"BTCUSDT"}, Days: 5, TopN: 5, SizingMode: types.SizingFixed}

	err := r.RunSingleShot(context.Background(), req)
	if err == nil {
		t.Fatal("expected an error when every symbol fails to fetch")
	}
	if r.Progress().Snapshot().Status != progress.StatusError {
		t.Fatalf("status = %v, want error", r.Progress().Snapshot().Status)
	}
}

func mustOpenStore(t *testing.T) *persistence.Store {
	t.Helper()
	store, err := persistence.Open(filepath.Join(t.TempDir(), "discover.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

type failingSource struct{}

func (failingSource) GetKlinesPaginated(ctx context.Context, symbol string, startMs, endMs int64) ([]types.Bar, error) {
	return nil, context.DeadlineExceeded
}

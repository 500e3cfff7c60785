package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.ItemStagger = 0
	cfg.RetryBaseDelay = time.Millisecond
	cfg.InterItemRetryDelay = 0
	return cfg
}

func TestDispatchChunkBatchSuccess(t *testing.T) {
	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		out := make([][]string, len(items))
		for i := range items {
			out[i] = []string{"r"}
		}
		return out, nil
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		t.Error("single must not be called when batch succeeds")
		return nil, nil
	}
	d := NewDispatcher(testLogger(t), fastConfig(), batch, single)

	results, failed := d.DispatchChunk(context.Background(), Chunk[int]{Key: "g", Items: []int{1, 2, 3}}, 2)
	if len(results) != 3 || len(failed) != 0 {
		t.Fatalf("results=%d failed=%d", len(results), len(failed))
	}
}

func TestDispatchChunkDegradesToPerItem(t *testing.T) {
	// Batch dispatch of 10 items fails with a network error: exactly 10
	// individual calls are attempted, never more in flight than the cap.
	var singleCalls int32
	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex

	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		return nil, errors.New("connection refused")
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if cur > maxInFlight {
			maxInFlight = cur
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&singleCalls, 1)
		return []string{"ok"}, nil
	}

	cfg := fastConfig()
	cfg.FallbackConcurrency = 3
	d := NewDispatcher(testLogger(t), cfg, batch, single)

	items := make([]int, 10)
	results, failed := d.DispatchChunk(context.Background(), Chunk[int]{Key: "g", Items: items}, 8)
	if got := atomic.LoadInt32(&singleCalls); got != 10 {
		t.Errorf("expected 10 individual calls, got %d", got)
	}
	if len(results) != 10 || len(failed) != 0 {
		t.Errorf("results=%d failed=%d", len(results), len(failed))
	}
	if maxInFlight > 3 {
		t.Errorf("in-flight calls exceeded cap: %d > 3", maxInFlight)
	}
}

func TestDispatchChunkConcurrencyHintLowersCap(t *testing.T) {
	var inFlight int32
	var maxInFlight int32
	var mu sync.Mutex

	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		return nil, errors.New("boom")
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		cur := atomic.AddInt32(&inFlight, 1)
		mu.Lock()
		if cur > maxInFlight {
			maxInFlight = cur
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil, nil
	}

	cfg := fastConfig()
	cfg.FallbackConcurrency = 8
	d := NewDispatcher(testLogger(t), cfg, batch, single)

	d.DispatchChunk(context.Background(), Chunk[int]{Key: "g", Items: make([]int, 12)}, 2)
	if maxInFlight > 2 {
		t.Errorf("concurrency hint should bound fallback, max in flight = %d", maxInFlight)
	}
}

func TestRetrySequentialRecoversAndExhausts(t *testing.T) {
	attempts := map[int]int{}
	var mu sync.Mutex
	single := func(ctx context.Context, item int) ([]string, error) {
		mu.Lock()
		attempts[item]++
		n := attempts[item]
		mu.Unlock()
		if item == 1 && n >= 2 {
			return []string{"recovered"}, nil
		}
		return nil, errors.New("still failing")
	}

	cfg := fastConfig()
	cfg.MaxRetries = 3
	d := NewDispatcher[int, string](testLogger(t), cfg, nil, single)

	results, permanent := d.RetrySequential(context.Background(), []int{1, 2})
	if len(results) != 1 {
		t.Errorf("expected 1 recovered result, got %d", len(results))
	}
	if len(permanent) != 1 || permanent[0] != 2 {
		t.Errorf("expected item 2 permanently failed, got %v", permanent)
	}
	if attempts[2] != 3 {
		t.Errorf("item 2 should be attempted MaxRetries times, got %d", attempts[2])
	}
}

func TestRetrySequentialIsSequential(t *testing.T) {
	var inFlight int32
	single := func(ctx context.Context, item int) ([]string, error) {
		if atomic.AddInt32(&inFlight, 1) > 1 {
			t.Error("sequential retry ran concurrently")
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return []string{"ok"}, nil
	}

	d := NewDispatcher[int, string](testLogger(t), fastConfig(), nil, single)
	d.RetrySequential(context.Background(), []int{1, 2, 3})
}

func TestDispatchChunkBatchPanicDegradesToPerItem(t *testing.T) {
	var singleCalls int32
	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		panic("nil response body")
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		atomic.AddInt32(&singleCalls, 1)
		return []string{"ok"}, nil
	}
	d := NewDispatcher(testLogger(t), fastConfig(), batch, single)

	results, failed := d.DispatchChunk(context.Background(), Chunk[int]{Key: "g", Items: []int{1, 2, 3}}, 2)
	if len(results) != 3 || len(failed) != 0 {
		t.Fatalf("results=%d failed=%d", len(results), len(failed))
	}
	if got := atomic.LoadInt32(&singleCalls); got != 3 {
		t.Errorf("expected 3 individual calls after batch panic, got %d", got)
	}
}

func TestRunContainsSingleCallPanics(t *testing.T) {
	// A panicking item callback must behave like any failed item: the run
	// finishes, the healthy items' results survive, and the panicking item
	// counts as permanently failed after its retries.
	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		return nil, errors.New("batch down")
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		if item == 2 {
			panic("corrupt payload")
		}
		return []string{"ok"}, nil
	}

	cfg := fastConfig()
	cfg.MaxRetries = 2
	d := NewDispatcher(testLogger(t), cfg, batch, single)

	results, permFailed := d.Run(context.Background(), []int{1, 2, 3}, func(int) string { return "g" })
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if permFailed != 1 {
		t.Errorf("expected 1 permanent failure, got %d", permFailed)
	}
}

func TestRunCollectsAcrossChunksAndNeverErrors(t *testing.T) {
	// Half the items fail batch + fallback + retries; Run still returns
	// the other half and the permanent-failure count.
	batch := func(ctx context.Context, items []int, concurrency int) ([][]string, error) {
		return nil, errors.New("batch down")
	}
	single := func(ctx context.Context, item int) ([]string, error) {
		if item%2 == 0 {
			return []string{"ok"}, nil
		}
		return nil, errors.New("bad item")
	}

	cfg := fastConfig()
	cfg.MaxRetries = 2
	d := NewDispatcher(testLogger(t), cfg, batch, single)

	items := []int{0, 1, 2, 3, 4, 5}
	results, permFailed := d.Run(context.Background(), items, func(i int) string {
		if i < 3 {
			return "low"
		}
		return "high"
	})
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
	if permFailed != 3 {
		t.Errorf("expected 3 permanent failures, got %d", permFailed)
	}
}

func TestRunEmptyInput(t *testing.T) {
	d := NewDispatcher[int, string](testLogger(t), fastConfig(), nil, nil)
	results, failed := d.Run(context.Background(), nil, func(int) string { return "" })
	if results != nil || failed != 0 {
		t.Fatalf("empty input should yield nothing, got %v/%d", results, failed)
	}
}

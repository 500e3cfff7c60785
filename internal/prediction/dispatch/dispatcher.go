package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

// BatchFunc sends a whole chunk in one call; the int is the concurrency
// hint forwarded to the service. The outer slice must be index-aligned
// with the input items.
type BatchFunc[I, R any] func(ctx context.Context, items []I, concurrency int) ([][]R, error)

// SingleFunc predicts one item.
type SingleFunc[I, R any] func(ctx context.Context, item I) ([]R, error)

// Dispatcher drives one pipeline's chunks through the degradation ladder:
// batch call → per-item fallback → sequential retry. Failures are
// collected, never propagated; an unreachable service yields zero results,
// not an error.
type Dispatcher[I, R any] struct {
	log    *logger.Logger
	cfg    Config
	batch  BatchFunc[I, R]
	single SingleFunc[I, R]
}

func NewDispatcher[I, R any](log *logger.Logger, cfg Config, batch BatchFunc[I, R], single SingleFunc[I, R]) *Dispatcher[I, R] {
	return &Dispatcher[I, R]{
		log:    log.With("component", "DispatchExecutor"),
		cfg:    cfg,
		batch:  batch,
		single: single,
	}
}

// safeBatch converts a panic in the batch callback into an ordinary
// dispatch failure. The callbacks run on errgroup goroutines, where an
// escaped panic would take the whole process down.
func (d *Dispatcher[I, R]) safeBatch(ctx context.Context, items []I, concurrency int) (out [][]R, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Batch dispatch panic", "items", len(items), "panic", r)
			out, err = nil, fmt.Errorf("batch dispatch panic: %v", r)
		}
	}()
	return d.batch(ctx, items, concurrency)
}

func (d *Dispatcher[I, R]) safeSingle(ctx context.Context, item I) (out []R, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Item dispatch panic", "panic", r)
			out, err = nil, fmt.Errorf("item dispatch panic: %v", r)
		}
	}()
	return d.single(ctx, item)
}

// DispatchChunk attempts one batched call for the chunk. The batch call is
// never retried: any failure degrades immediately to per-item requests
// under a concurrency limiter, with a fixed stagger between launches.
// Returns the successful results and the items that still failed.
func (d *Dispatcher[I, R]) DispatchChunk(ctx context.Context, chunk Chunk[I], concurrency int) ([]R, []I) {
	perItem, err := d.safeBatch(ctx, chunk.Items, concurrency)
	if err == nil {
		var out []R
		for _, rs := range perItem {
			out = append(out, rs...)
		}
		return out, nil
	}

	d.log.Warn("Batch dispatch failed, degrading to per-item calls",
		"group", chunk.Key,
		"items", len(chunk.Items),
		"error", err.Error(),
	)
	return d.dispatchItems(ctx, chunk.Items, concurrency)
}

func (d *Dispatcher[I, R]) dispatchItems(ctx context.Context, items []I, concurrency int) ([]R, []I) {
	limit := d.cfg.FallbackConcurrency
	if limit < 1 {
		limit = 1
	}
	if concurrency > 0 && concurrency < limit {
		limit = concurrency
	}

	var (
		mu      sync.Mutex
		results []R
		failed  []I
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		if i > 0 && d.cfg.ItemStagger > 0 {
			time.Sleep(d.cfg.ItemStagger)
		}
		item := item
		g.Go(func() error {
			rs, err := d.safeSingle(gctx, item)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, item)
				return nil
			}
			results = append(results, rs...)
			return nil
		})
	}
	_ = g.Wait()
	return results, failed
}

// RetrySequential replays items that failed individual dispatch, one at a
// time. Sequential on purpose: retrying concurrently would compound the
// overload that caused the failures. Each item gets up to MaxRetries
// attempts with RetryBaseDelay × attempt between attempts, and a fixed
// delay separates distinct items. Items exhausting their attempts come
// back as permanently failed.
func (d *Dispatcher[I, R]) RetrySequential(ctx context.Context, items []I) ([]R, []I) {
	var (
		results   []R
		permanent []I
	)
	for i, item := range items {
		if i > 0 && d.cfg.InterItemRetryDelay > 0 {
			time.Sleep(d.cfg.InterItemRetryDelay)
		}
		recovered := false
		for attempt := 1; attempt <= d.cfg.MaxRetries; attempt++ {
			if ctx.Err() != nil {
				permanent = append(permanent, items[i:]...)
				return results, permanent
			}
			rs, err := d.safeSingle(ctx, item)
			if err == nil {
				results = append(results, rs...)
				recovered = true
				break
			}
			d.log.Warn("Sequential retry failed",
				"attempt", attempt,
				"max_retries", d.cfg.MaxRetries,
				"error", err.Error(),
			)
			if attempt < d.cfg.MaxRetries {
				time.Sleep(d.cfg.RetryBaseDelay * time.Duration(attempt))
			}
		}
		if !recovered {
			permanent = append(permanent, item)
		}
	}
	return results, permanent
}

// Run executes the full ladder for one pipeline: plan chunks by key, fan
// them out under the cross-group bound, and push each chunk through
// dispatch and sequential retry. Returns every recovered result and the
// count of permanently failed items.
func (d *Dispatcher[I, R]) Run(ctx context.Context, items []I, keyFn func(I) string) ([]R, int) {
	chunks := PlanChunks(d.cfg, items, keyFn)
	if len(chunks) == 0 {
		return nil, 0
	}
	concurrency := d.cfg.DynamicConcurrency(len(items))

	var (
		mu        sync.Mutex
		all       []R
		permCount int
	)

	groupLimit := d.cfg.GroupConcurrency
	if groupLimit < 1 {
		groupLimit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(groupLimit)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			results, failed := d.DispatchChunk(gctx, chunk, concurrency)
			if len(failed) > 0 {
				retried, permanent := d.RetrySequential(gctx, failed)
				results = append(results, retried...)
				if len(permanent) > 0 {
					d.log.Warn("Items permanently failed after retry ladder",
						"group", chunk.Key,
						"failed", len(permanent),
					)
				}
				mu.Lock()
				permCount += len(permanent)
				mu.Unlock()
			}
			mu.Lock()
			all = append(all, results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return all, permCount
}

package dispatch

import "math"

const minChunkSize = 8

// Chunk is a bounded batch of input records sharing a partition key.
type Chunk[I any] struct {
	Key   string
	Items []I
}

// adaptiveChunkSize shrinks chunks as the workload spreads over more
// server workers or grows in per-item complexity.
func adaptiveChunkSize(totalInputs, serverConcurrencyHint, complexityHint int) int {
	if serverConcurrencyHint < 1 {
		serverConcurrencyHint = 1
	}
	if complexityHint < 1 {
		complexityHint = 1
	}
	size := int(math.Ceil(float64(totalInputs) / float64(serverConcurrencyHint*complexityHint)))
	if size < minChunkSize {
		size = minChunkSize
	}
	return size
}

// DynamicConcurrency computes the per-invocation concurrency hint:
// clamp(ceil(inputCount/InputsPerWorker), MinConcurrency, MaxConcurrency).
// It is passed to the batch endpoint and bounds local fallback fan-out.
func (c Config) DynamicConcurrency(inputCount int) int {
	perWorker := c.InputsPerWorker
	if perWorker < 1 {
		perWorker = 1
	}
	n := int(math.Ceil(float64(inputCount) / float64(perWorker)))
	if n < c.MinConcurrency {
		n = c.MinConcurrency
	}
	if c.MaxConcurrency > 0 && n > c.MaxConcurrency {
		n = c.MaxConcurrency
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PlanChunks partitions items by key, preserving first-seen key order, and
// slices each group into chunks of at most
// min(MaxChunkSize, adaptiveChunkSize(...)).
func PlanChunks[I any](cfg Config, items []I, keyFn func(I) string) []Chunk[I] {
	if len(items) == 0 {
		return nil
	}

	groups := make(map[string][]I)
	order := make([]string, 0)
	for _, it := range items {
		k := keyFn(it)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], it)
	}

	concurrency := cfg.DynamicConcurrency(len(items))
	size := adaptiveChunkSize(len(items), concurrency, cfg.ComplexityHint)
	if cfg.MaxChunkSize > 0 && size > cfg.MaxChunkSize {
		size = cfg.MaxChunkSize
	}

	var out []Chunk[I]
	for _, k := range order {
		group := groups[k]
		for start := 0; start < len(group); start += size {
			end := start + size
			if end > len(group) {
				end = len(group)
			}
			out = append(out, Chunk[I]{Key: k, Items: group[start:end]})
		}
	}
	return out
}

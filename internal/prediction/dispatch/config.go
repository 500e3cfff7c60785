package dispatch

import (
	"time"

	"github.com/yungbote/admitbridge-backend/internal/platform/envutil"
)

// Config carries every pipeline tunable. It is built once at startup and
// threaded through constructors; nothing reads ambient state after that.
type Config struct {
	// Chunk planning.
	MaxChunkSize   int
	ComplexityHint int

	// Dynamic concurrency: clamp(ceil(inputs/InputsPerWorker), Min, Max).
	InputsPerWorker int
	MinConcurrency  int
	MaxConcurrency  int

	// Cross-group bound: how many chunks are in flight at once.
	GroupConcurrency int

	// Per-item fallback after a failed batch call.
	FallbackConcurrency int
	ItemStagger         time.Duration

	// Sequential retry ladder.
	MaxRetries          int
	RetryBaseDelay      time.Duration
	InterItemRetryDelay time.Duration

	// Startup health gate.
	HealthAttempts int
	HealthDelay    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxChunkSize:        50,
		ComplexityHint:      1,
		InputsPerWorker:     25,
		MinConcurrency:      2,
		MaxConcurrency:      8,
		GroupConcurrency:    3,
		FallbackConcurrency: 4,
		ItemStagger:         50 * time.Millisecond,
		MaxRetries:          3,
		RetryBaseDelay:      500 * time.Millisecond,
		InterItemRetryDelay: 100 * time.Millisecond,
		HealthAttempts:      10,
		HealthDelay:         3 * time.Second,
	}
}

func ConfigFromEnv() Config {
	def := DefaultConfig()
	return Config{
		MaxChunkSize:        envutil.Int("PREDICT_MAX_CHUNK_SIZE", def.MaxChunkSize),
		ComplexityHint:      envutil.Int("PREDICT_COMPLEXITY_HINT", def.ComplexityHint),
		InputsPerWorker:     envutil.Int("PREDICT_INPUTS_PER_WORKER", def.InputsPerWorker),
		MinConcurrency:      envutil.Int("PREDICT_MIN_CONCURRENCY", def.MinConcurrency),
		MaxConcurrency:      envutil.Int("PREDICT_MAX_CONCURRENCY", def.MaxConcurrency),
		GroupConcurrency:    envutil.Int("PREDICT_GROUP_CONCURRENCY", def.GroupConcurrency),
		FallbackConcurrency: envutil.Int("PREDICT_FALLBACK_CONCURRENCY", def.FallbackConcurrency),
		ItemStagger:         envutil.Duration("PREDICT_ITEM_STAGGER", def.ItemStagger),
		MaxRetries:          envutil.Int("PREDICT_MAX_RETRIES", def.MaxRetries),
		RetryBaseDelay:      envutil.Duration("PREDICT_RETRY_BASE_DELAY", def.RetryBaseDelay),
		InterItemRetryDelay: envutil.Duration("PREDICT_INTER_ITEM_RETRY_DELAY", def.InterItemRetryDelay),
		HealthAttempts:      envutil.Int("PREDICTOR_HEALTH_ATTEMPTS", def.HealthAttempts),
		HealthDelay:         envutil.Duration("PREDICTOR_HEALTH_DELAY", def.HealthDelay),
	}
}

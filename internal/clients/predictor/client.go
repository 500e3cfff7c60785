package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/admitbridge-backend/internal/pkg/httpx"
	"github.com/yungbote/admitbridge-backend/internal/platform/envutil"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

// Client is the external prediction service API. Calls are single-shot:
// degradation and retry policy belong to the dispatch layer, not here.
type Client interface {
	PredictL1(ctx context.Context, in L1Input) ([]L1Result, error)
	PredictL1Batch(ctx context.Context, items []L1Input, concurrency int) ([][]L1Result, error)
	PredictL2(ctx context.Context, in L2Input) ([]L2Result, error)
	PredictL2Batch(ctx context.Context, items []L2Input, concurrency int) ([][]L2Result, error)
	Health(ctx context.Context) error
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimRight(envutil.String("PREDICTOR_BASE_URL", "http://localhost:8000"), "/")

	// The HTTP client timeout is the only cancellation mechanism for an
	// in-flight prediction; it surfaces as a per-item failure upstream.
	timeout := envutil.Duration("PREDICTOR_TIMEOUT", 60*time.Second)

	return &client{
		log:        log.With("service", "PredictorClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// HTTPError is a non-2xx response from the prediction service.
type HTTPError struct {
	StatusCode int
	Body       string
	Detail     []ValidationDetail
}

// ValidationDetail is one entry of the service's 422 body.
type ValidationDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func (e *HTTPError) Error() string {
	if len(e.Detail) > 0 {
		parts := make([]string, 0, len(e.Detail))
		for _, d := range e.Detail {
			parts = append(parts, strings.Join(d.Loc, ".")+": "+d.Msg)
		}
		return fmt.Sprintf("predictor http %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("predictor http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

var _ httpx.HTTPStatusCoder = (*HTTPError)(nil)

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		he := &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
		if resp.StatusCode == http.StatusUnprocessableEntity {
			var ve struct {
				Detail []ValidationDetail `json:"detail"`
			}
			if uErr := json.Unmarshal(raw, &ve); uErr == nil {
				he.Detail = ve.Detail
			}
		}
		return he
	}

	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("predictor decode error: %w; raw=%s", uErr, string(raw))
	}
	return nil
}

func (c *client) PredictL1(ctx context.Context, in L1Input) ([]L1Result, error) {
	var out []L1Result
	if err := c.do(ctx, "POST", "/predict/l1", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) PredictL1Batch(ctx context.Context, items []L1Input, concurrency int) ([][]L1Result, error) {
	if len(items) == 0 {
		return [][]L1Result{}, nil
	}
	body := map[string]any{"items": items}
	var out [][]L1Result
	if err := c.do(ctx, "POST", "/predict/l1/batch?concurrency="+strconv.Itoa(concurrency), body, &out); err != nil {
		return nil, err
	}
	if len(out) != len(items) {
		return nil, fmt.Errorf("predictor l1 batch size mismatch (got %d want %d)", len(out), len(items))
	}
	return out, nil
}

func (c *client) PredictL2(ctx context.Context, in L2Input) ([]L2Result, error) {
	var out []L2Result
	if err := c.do(ctx, "POST", "/predict/l2", in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) PredictL2Batch(ctx context.Context, items []L2Input, concurrency int) ([][]L2Result, error) {
	if len(items) == 0 {
		return [][]L2Result{}, nil
	}
	body := map[string]any{"items": items}
	var out [][]L2Result
	if err := c.do(ctx, "POST", "/predict/l2/batch?concurrency="+strconv.Itoa(concurrency), body, &out); err != nil {
		return nil, err
	}
	if len(out) != len(items) {
		return nil, fmt.Errorf("predictor l2 batch size mismatch (got %d want %d)", len(out), len(items))
	}
	return out, nil
}

func (c *client) Health(ctx context.Context) error {
	return c.do(ctx, "GET", "/health", nil, nil)
}

// WaitHealthy polls the service's health endpoint with bounded retries.
// The orchestrator is not allowed to consume triggers before this passes.
func WaitHealthy(ctx context.Context, c Client, log *logger.Logger, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = c.Health(ctx)
		if lastErr == nil {
			return nil
		}
		// A definitive rejection (wrong base URL, auth) will not fix
		// itself; only transport failures are worth waiting out.
		if !httpx.IsRetryableError(lastErr) {
			return fmt.Errorf("predictor health check rejected: %w", lastErr)
		}
		log.Warn("Predictor health check failed",
			"attempt", i,
			"max_attempts", attempts,
			"error", lastErr.Error(),
		)
		if i < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(httpx.JitterSleep(delay)):
			}
		}
	}
	return fmt.Errorf("predictor not healthy after %d attempts: %w", attempts, lastErr)
}

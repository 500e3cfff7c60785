package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server) Client {
	t.Helper()
	t.Setenv("PREDICTOR_BASE_URL", srv.URL)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	c, err := NewClient(log)
	if err != nil {
		t.Fatalf("init client: %v", err)
	}
	return c
}

func TestPredictL2BatchFlattensPerItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict/l2/batch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("concurrency"); got != "3" {
			t.Errorf("concurrency hint = %q want 3", got)
		}
		var body struct {
			Items []L2Input `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		out := make([][]L2Result, len(body.Items))
		for i := range body.Items {
			out[i] = []L2Result{{AdmissionCode: "XT001", Score: float64(i)}}
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	items := []L2Input{{MajorCode: "7480201"}, {MajorCode: "7480101"}}
	got, err := c.PredictL2Batch(context.Background(), items, 3)
	if err != nil {
		t.Fatalf("PredictL2Batch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected one result slice per item, got %d", len(got))
	}
}

func TestBatchSizeMismatchIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([][]L2Result{})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.PredictL2Batch(context.Background(), []L2Input{{}}, 1); err == nil {
		t.Fatal("size mismatch should be an error")
	}
}

func TestValidationErrorParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","ma_nganh"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.PredictL1(context.Background(), L1Input{})
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.StatusCode != 422 || len(he.Detail) != 1 {
		t.Fatalf("unexpected error: %+v", he)
	}
	if he.Detail[0].Msg != "field required" {
		t.Errorf("detail msg = %q", he.Detail[0].Msg)
	}
	if he.Error() == "" || he.Error() == "predictor http 422: " {
		t.Errorf("error message should carry the detail, got %q", he.Error())
	}
}

func TestWaitHealthyBoundedRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	log, _ := logger.New("test")
	if err := WaitHealthy(context.Background(), c, log, 5, time.Millisecond); err != nil {
		t.Fatalf("WaitHealthy: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 health calls, got %d", calls)
	}
}

func TestWaitHealthyFailsFastOnRejection(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	log, _ := logger.New("test")
	if err := WaitHealthy(context.Background(), c, log, 5, time.Millisecond); err == nil {
		t.Fatal("expected error for a 404 health endpoint")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("a definitive rejection must not be retried, got %d calls", calls)
	}
}

func TestWaitHealthyGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	log, _ := logger.New("test")
	if err := WaitHealthy(context.Background(), c, log, 2, time.Millisecond); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}

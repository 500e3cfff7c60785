package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type staticRunRepo struct {
	runs []*domain.PredictionRun
}

func (s *staticRunRepo) Create(_ dbctx.Context, run *domain.PredictionRun) (*domain.PredictionRun, error) {
	return run, nil
}

func (s *staticRunRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*domain.PredictionRun, error) {
	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (s *staticRunRepo) ListByStudent(_ dbctx.Context, studentID uuid.UUID) ([]*domain.PredictionRun, error) {
	var out []*domain.PredictionRun
	for _, r := range s.runs {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *staticRunRepo) UpdateFields(dbctx.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}

func runRouter(t *testing.T, repo *staticRunRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	r := gin.New()
	h := NewPredictionRunHandler(repo, log)
	r.GET("/api/students/:id/prediction-runs", h.ListByStudent)
	r.GET("/api/prediction-runs/:id", h.Get)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListRunsByStudent(t *testing.T) {
	studentID := uuid.New()
	repo := &staticRunRepo{runs: []*domain.PredictionRun{
		{ID: uuid.New(), StudentID: studentID, Status: domain.RunStatusCompleted},
		{ID: uuid.New(), StudentID: uuid.New(), Status: domain.RunStatusFailed},
	}}
	r := runRouter(t, repo)

	w := get(r, "/api/students/"+studentID.String()+"/prediction-runs")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d want %d", w.Code, http.StatusOK)
	}
}

func TestListRunsBadStudentID(t *testing.T) {
	r := runRouter(t, &staticRunRepo{})
	if w := get(r, "/api/students/not-a-uuid/prediction-runs"); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetRunNotFound(t *testing.T) {
	r := runRouter(t, &staticRunRepo{})
	if w := get(r, "/api/prediction-runs/"+uuid.NewString()); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetRunOK(t *testing.T) {
	run := &domain.PredictionRun{ID: uuid.New(), StudentID: uuid.New(), Status: domain.RunStatusPartial}
	r := runRouter(t, &staticRunRepo{runs: []*domain.PredictionRun{run}})
	if w := get(r, "/api/prediction-runs/"+run.ID.String()); w.Code != http.StatusOK {
		t.Fatalf("status = %d want %d", w.Code, http.StatusOK)
	}
}

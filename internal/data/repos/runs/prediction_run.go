package runs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type PredictionRunRepo interface {
	Create(dbc dbctx.Context, run *domain.PredictionRun) (*domain.PredictionRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PredictionRun, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*domain.PredictionRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type predictionRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictionRunRepo(db *gorm.DB, baseLog *logger.Logger) PredictionRunRepo {
	return &predictionRunRepo{
		db:  db,
		log: baseLog.With("repo", "PredictionRunRepo"),
	}
}

func (r *predictionRunRepo) Create(dbc dbctx.Context, run *domain.PredictionRun) (*domain.PredictionRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if run == nil {
		return nil, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *predictionRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PredictionRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run domain.PredictionRun
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *predictionRunRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*domain.PredictionRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.PredictionRun
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *predictionRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.PredictionRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

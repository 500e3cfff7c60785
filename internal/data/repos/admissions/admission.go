package admissions

import (
	"gorm.io/gorm"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

// AdmissionRepo reads the admission catalogue. The catalogue is owned by a
// separate ingestion process; nothing here writes it.
type AdmissionRepo interface {
	GetByCodes(dbc dbctx.Context, codes []string) ([]*domain.Admission, error)
}

type admissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdmissionRepo(db *gorm.DB, baseLog *logger.Logger) AdmissionRepo {
	return &admissionRepo{
		db:  db,
		log: baseLog.With("repo", "AdmissionRepo"),
	}
}

func (r *admissionRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*domain.Admission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Admission
	if len(codes) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("code IN ?", codes).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

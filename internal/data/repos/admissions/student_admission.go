package admissions

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type StudentAdmissionRepo interface {
	ListAdmissionIDsByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]uuid.UUID, error)
	// CreateBatch inserts the links in one write. ON CONFLICT DO NOTHING
	// backs up the reconciler's idempotence at the constraint level.
	CreateBatch(dbc dbctx.Context, links []*domain.StudentAdmission) error
}

type studentAdmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentAdmissionRepo(db *gorm.DB, baseLog *logger.Logger) StudentAdmissionRepo {
	return &studentAdmissionRepo{
		db:  db,
		log: baseLog.With("repo", "StudentAdmissionRepo"),
	}
}

func (r *studentAdmissionRepo) ListAdmissionIDsByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []uuid.UUID
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.StudentAdmission{}).
		Where("student_id = ?", studentID).
		Pluck("admission_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *studentAdmissionRepo) CreateBatch(dbc dbctx.Context, links []*domain.StudentAdmission) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(links) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "admission_id"}},
			DoNothing: true,
		}).
		Create(&links).Error
}

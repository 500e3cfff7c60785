package students

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

type StudentRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Student, error)
	// LockByID acquires an exclusive row lock on the student. Must be
	// called inside a transaction; the lock is held until it ends.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.Student, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{
		db:  db,
		log: baseLog.With("repo", "StudentRepo"),
	}
}

func (r *studentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var s domain.Student
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var s domain.Student
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

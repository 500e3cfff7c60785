package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/admitbridge-backend/internal/data/repos/admissions"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/students"
	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/pkg/errors"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

// Reconciler folds a run's predicted admission codes into the
// student_admission link table. The whole operation runs in one
// transaction under an exclusive lock on the student row, so two runs
// finishing at the same time serialize instead of double-inserting.
type Reconciler struct {
	db                *gorm.DB
	studentRepo       students.StudentRepo
	admissionRepo     admissions.AdmissionRepo
	studentAdmissions admissions.StudentAdmissionRepo
	log               *logger.Logger
}

func NewReconciler(
	db *gorm.DB,
	studentRepo students.StudentRepo,
	admissionRepo admissions.AdmissionRepo,
	studentAdmissions admissions.StudentAdmissionRepo,
	baseLog *logger.Logger,
) *Reconciler {
	return &Reconciler{
		db:                db,
		studentRepo:       studentRepo,
		admissionRepo:     admissionRepo,
		studentAdmissions: studentAdmissions,
		log:               baseLog.With("component", "Reconciler"),
	}
}

// Reconcile links the student to every catalogue admission named in codes
// that is not already linked. Codes absent from the catalogue are dropped.
// Existing links are never removed. Returns the number of links created.
func (r *Reconciler) Reconcile(ctx context.Context, studentID uuid.UUID, codes []string) (int, error) {
	if studentID == uuid.Nil {
		return 0, fmt.Errorf("reconcile: %w: student id is required", errors.ErrInvalidArgument)
	}
	if len(codes) == 0 {
		return 0, nil
	}

	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		student, err := r.studentRepo.LockByID(dbc, studentID)
		if err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		if student == nil {
			return fmt.Errorf("reconcile student %s: %w", studentID, errors.ErrNotFound)
		}

		catalogue, err := r.admissionRepo.GetByCodes(dbc, codes)
		if err != nil {
			return fmt.Errorf("resolve admission codes: %w", err)
		}
		if len(catalogue) < len(codes) {
			r.log.Warn("some predicted admission codes are not in the catalogue",
				"student_id", studentID,
				"predicted", len(codes),
				"resolved", len(catalogue),
			)
		}
		if len(catalogue) == 0 {
			return nil
		}

		existing, err := r.studentAdmissions.ListAdmissionIDsByStudent(dbc, studentID)
		if err != nil {
			return fmt.Errorf("list existing links: %w", err)
		}
		have := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			have[id] = struct{}{}
		}

		var links []*domain.StudentAdmission
		for _, adm := range catalogue {
			if _, ok := have[adm.ID]; ok {
				continue
			}
			links = append(links, &domain.StudentAdmission{
				StudentID:   studentID,
				AdmissionID: adm.ID,
			})
		}
		if len(links) == 0 {
			return nil
		}

		// Deterministic insert order keeps concurrent reconciliations
		// from deadlocking on each other.
		sort.Slice(links, func(i, j int) bool {
			return links[i].AdmissionID.String() < links[j].AdmissionID.String()
		})

		if err := r.studentAdmissions.CreateBatch(dbc, links); err != nil {
			return fmt.Errorf("insert links: %w", err)
		}
		created = len(links)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		r.log.Info("reconciled student admissions", "student_id", studentID, "created", created)
	}
	return created, nil
}

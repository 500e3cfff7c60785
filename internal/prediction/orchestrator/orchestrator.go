package orchestrator

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/admitbridge-backend/internal/clients/predictor"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/runs"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/students"
	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/pkg/errors"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
	"github.com/yungbote/admitbridge-backend/internal/prediction/aggregate"
	"github.com/yungbote/admitbridge-backend/internal/prediction/combo"
	"github.com/yungbote/admitbridge-backend/internal/prediction/dispatch"
	"github.com/yungbote/admitbridge-backend/internal/prediction/scenario"
)

// AdmissionReconciler folds predicted admission codes into the student's
// admission links after a run finishes.
type AdmissionReconciler interface {
	Reconcile(ctx context.Context, studentID uuid.UUID, codes []string) (int, error)
}

// Orchestrator owns one prediction run end to end: build inputs from the
// student profile, fan both pipelines out against the prediction service,
// aggregate, persist, then reconcile. The run row is created in PROCESSING
// before any dispatch so an observer always sees the run exists.
type Orchestrator struct {
	runRepo     runs.PredictionRunRepo
	studentRepo students.StudentRepo
	client      predictor.Client
	reconciler  AdmissionReconciler
	generator   *combo.Generator
	cfg         dispatch.Config
	log         *logger.Logger
}

func NewOrchestrator(
	runRepo runs.PredictionRunRepo,
	studentRepo students.StudentRepo,
	client predictor.Client,
	reconciler AdmissionReconciler,
	cfg dispatch.Config,
	baseLog *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		runRepo:     runRepo,
		studentRepo: studentRepo,
		client:      client,
		reconciler:  reconciler,
		generator:   combo.NewGenerator(baseLog),
		cfg:         cfg,
		log:         baseLog.With("component", "PredictionOrchestrator"),
	}
}

// RunPrediction executes one run for the student. userID is uuid.Nil for
// anonymous triggers. The run is finalized exactly once; a reconciliation
// failure is logged and does not change the run's status.
func (o *Orchestrator) RunPrediction(ctx context.Context, studentID, userID uuid.UUID) (*domain.PredictionRun, error) {
	dbc := dbctx.Context{Ctx: ctx}

	student, err := o.studentRepo.GetByID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %s: %w", studentID, errors.ErrNotFound)
	}
	profile, err := student.DecodeProfile()
	if err != nil {
		return nil, fmt.Errorf("decode profile for student %s: %w", studentID, err)
	}

	run, err := o.runRepo.Create(dbc, &domain.PredictionRun{
		StudentID: studentID,
		UserID:    userID,
		Status:    domain.RunStatusProcessing,
	})
	if err != nil {
		return nil, fmt.Errorf("create prediction run: %w", err)
	}
	o.log.Info("prediction run started", "run_id", run.ID, "student_id", studentID)

	// An unexpected panic must not strand the run in PROCESSING: mark it
	// FAILED first, then let the trigger's recovery log the propagated
	// panic. Runs that already reached a terminal status keep it.
	defer func() {
		if r := recover(); r != nil {
			if run.Status == domain.RunStatusProcessing {
				if _, ferr := o.finalize(dbc, run, nil, nil, domain.RunStatusFailed, fmt.Sprintf("panic: %v", r)); ferr != nil {
					o.log.Error("failed to mark panicked run FAILED",
						"run_id", run.ID,
						"error", ferr.Error(),
					)
				}
			}
			panic(r)
		}
	}()

	scenarios := scenario.Collect(profile)

	l1Inputs, err := o.generator.GenerateL1(profile, scenarios)
	if err != nil && !stderrors.Is(err, errors.ErrNoInputs) {
		return o.finalize(dbc, run, nil, nil, domain.RunStatusFailed, err.Error())
	}
	l2Inputs, err := o.generator.GenerateL2(profile, scenarios)
	if err != nil && !stderrors.Is(err, errors.ErrNoInputs) {
		return o.finalize(dbc, run, nil, nil, domain.RunStatusFailed, err.Error())
	}
	if len(l1Inputs) == 0 && len(l2Inputs) == 0 {
		return o.finalize(dbc, run, nil, nil, domain.RunStatusFailed, "profile yields no prediction inputs")
	}

	var (
		l1Results []predictor.L1Result
		l2Results []predictor.L2Result
		l1Failed  int
		l2Failed  int
	)

	// The two pipelines are independent; one failing wholesale must not
	// stop the other.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d := dispatch.NewDispatcher(o.log, o.cfg, o.client.PredictL1Batch, o.client.PredictL1)
		// L1 inputs partition by major: the award axis multiplies records
		// within a major, so that is where the volume clusters.
		l1Results, l1Failed = d.Run(gctx, l1Inputs, func(in predictor.L1Input) string { return in.MajorCode })
		return nil
	})
	g.Go(func() error {
		d := dispatch.NewDispatcher(o.log, o.cfg, o.client.PredictL2Batch, o.client.PredictL2)
		l2Results, l2Failed = d.Run(gctx, l2Inputs, func(in predictor.L2Input) string { return in.SubjectGroup })
		return nil
	})
	_ = g.Wait()

	if n := countMalformed(l1Results, l2Results); n > 0 {
		o.log.Warn("discarding prediction results without an admission code",
			"run_id", run.ID,
			"discarded", n,
		)
	}
	mergedL1 := aggregate.MergeL1(l1Results)
	mergedL2 := aggregate.MergeL2(l2Results)

	status := domain.RunStatusCompleted
	errMsg := ""
	switch {
	case len(mergedL1) == 0 && len(mergedL2) == 0:
		status = domain.RunStatusFailed
		errMsg = "prediction service returned no results"
	case l1Failed > 0 || l2Failed > 0:
		status = domain.RunStatusPartial
		errMsg = fmt.Sprintf("%d inputs permanently failed", l1Failed+l2Failed)
	}

	run, err = o.finalize(dbc, run, mergedL1, mergedL2, status, errMsg)
	if err != nil {
		return nil, err
	}

	if status != domain.RunStatusFailed {
		codes := aggregate.AdmissionCodes(mergedL1, mergedL2)
		if _, rerr := o.reconciler.Reconcile(ctx, studentID, codes); rerr != nil {
			// The run's results are already committed; a reconciliation
			// failure only loses the link refresh, not the prediction.
			o.log.Error("admission reconciliation failed",
				"run_id", run.ID,
				"student_id", studentID,
				"error", rerr.Error(),
			)
		}
	}

	o.log.Info("prediction run finished",
		"run_id", run.ID,
		"status", run.Status,
		"l1_results", len(mergedL1),
		"l2_results", len(mergedL2),
		"failed_inputs", l1Failed+l2Failed,
	)
	return run, nil
}

func countMalformed(l1 []predictor.L1Result, l2 []predictor.L2Result) int {
	n := 0
	for _, r := range l1 {
		for code := range r.AdmissionCodes {
			if code == "" {
				n++
			}
		}
	}
	for _, r := range l2 {
		if r.AdmissionCode == "" {
			n++
		}
	}
	return n
}

// finalize persists results and the terminal status in one write.
func (o *Orchestrator) finalize(
	dbc dbctx.Context,
	run *domain.PredictionRun,
	l1 []aggregate.L1Entry,
	l2 []predictor.L2Result,
	status, errMsg string,
) (*domain.PredictionRun, error) {
	updates := map[string]interface{}{
		"status": status,
		"error":  errMsg,
	}
	if l1 != nil {
		raw, err := json.Marshal(l1)
		if err != nil {
			return nil, fmt.Errorf("marshal l1 results: %w", err)
		}
		updates["l1_results"] = datatypes.JSON(raw)
		run.L1Results = datatypes.JSON(raw)
	}
	if l2 != nil {
		raw, err := json.Marshal(l2)
		if err != nil {
			return nil, fmt.Errorf("marshal l2 results: %w", err)
		}
		updates["l2_results"] = datatypes.JSON(raw)
		run.L2Results = datatypes.JSON(raw)
	}
	if err := o.runRepo.UpdateFields(dbc, run.ID, updates); err != nil {
		return nil, fmt.Errorf("finalize prediction run %s: %w", run.ID, err)
	}
	run.Status = status
	run.Error = errMsg
	return run, nil
}

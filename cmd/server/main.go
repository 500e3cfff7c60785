package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/admitbridge-backend/internal/clients/predictor"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/admissions"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/runs"
	"github.com/yungbote/admitbridge-backend/internal/data/repos/students"
	"github.com/yungbote/admitbridge-backend/internal/db"
	apphttp "github.com/yungbote/admitbridge-backend/internal/http"
	httpH "github.com/yungbote/admitbridge-backend/internal/http/handlers"
	"github.com/yungbote/admitbridge-backend/internal/platform/envutil"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
	"github.com/yungbote/admitbridge-backend/internal/prediction/dispatch"
	"github.com/yungbote/admitbridge-backend/internal/prediction/orchestrator"
	"github.com/yungbote/admitbridge-backend/internal/prediction/reconcile"
	"github.com/yungbote/admitbridge-backend/internal/realtime/bus"
	"github.com/yungbote/admitbridge-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	studentRepo := students.NewStudentRepo(thePG, log)
	admissionRepo := admissions.NewAdmissionRepo(thePG, log)
	studentAdmissionRepo := admissions.NewStudentAdmissionRepo(thePG, log)
	runRepo := runs.NewPredictionRunRepo(thePG, log)

	// Prediction service client
	predictorClient, err := predictor.NewClient(log)
	if err != nil {
		log.Error("Could not init predictor client", "error", err)
		os.Exit(1)
	}

	// Event bus
	eventBus, err := bus.NewRedisBus(log)
	if err != nil {
		log.Error("Could not init redis event bus", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Pipeline
	dispatchCfg := dispatch.ConfigFromEnv()
	reconciler := reconcile.NewReconciler(thePG, studentRepo, admissionRepo, studentAdmissionRepo, log)
	orch := orchestrator.NewOrchestrator(runRepo, studentRepo, predictorClient, reconciler, dispatchCfg, log)

	ctx := context.Background()

	// Triggers only start flowing once the prediction service answers its
	// health endpoint; a cold model server can take a while to load.
	if err := predictor.WaitHealthy(ctx, predictorClient, log, dispatchCfg.HealthAttempts, dispatchCfg.HealthDelay); err != nil {
		log.Error("Prediction service never became healthy", "error", err)
		os.Exit(1)
	}

	trigger := services.NewPredictionTrigger(eventBus, orch, log)
	if err := trigger.Start(ctx); err != nil {
		log.Error("Could not start prediction trigger subscriber", "error", err)
		os.Exit(1)
	}

	// Handlers
	log.Info("Setting up handlers...")
	eventHandler := httpH.NewEventHandler(eventBus, log)
	runHandler := httpH.NewPredictionRunHandler(runRepo, log)
	healthHandler := httpH.NewHealthHandler()

	// Router
	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:                  log,
		EventHandler:         eventHandler,
		PredictionRunHandler: runHandler,
		HealthHandler:        healthHandler,
	})

	port := envutil.String("PORT", "8080")
	log.Info("Server listening", "port", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

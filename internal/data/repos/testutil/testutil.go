package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/admitbridge-backend/internal/domain"
	"github.com/yungbote/admitbridge-backend/internal/pkg/dbctx"
	"github.com/yungbote/admitbridge-backend/internal/platform/logger"
)

// DB opens the test database named by TEST_POSTGRES_DSN, or skips the
// test when it is unset so the suite still runs without Postgres.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		t.Fatalf("create uuid extension: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Student{},
		&domain.Admission{},
		&domain.StudentAdmission{},
		&domain.PredictionRun{},
	); err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}
	return db
}

// Tx wraps a test in a transaction that is always rolled back.
func Tx(t *testing.T, db *gorm.DB) dbctx.Context {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin test transaction: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return dbctx.Context{Ctx: context.Background(), Tx: tx}
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("create test logger: %v", err)
	}
	return log
}

func SeedStudent(t *testing.T, dbc dbctx.Context, profile domain.StudentProfile) *domain.Student {
	t.Helper()
	raw, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal seed profile: %v", err)
	}
	s := &domain.Student{
		FullName: fmt.Sprintf("Seed Student %s", uuid.NewString()[:8]),
		Province: profile.Province,
		Profile:  datatypes.JSON(raw),
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedAdmission(t *testing.T, dbc dbctx.Context, code string) *domain.Admission {
	t.Helper()
	a := &domain.Admission{
		Code:           code,
		UniversityName: "Seed University",
		MajorName:      "Seed Major",
		MajorCode:      "7480201",
	}
	if err := dbc.Tx.WithContext(dbc.Ctx).Create(a).Error; err != nil {
		t.Fatalf("seed admission %s: %v", code, err)
	}
	return a
}

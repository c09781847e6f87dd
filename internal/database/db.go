package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM.
// TranslateError turns driver unique-violation errors into
// gorm.ErrDuplicatedKey, which the maturity workflow relies on.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.RefreshToken{},
		&model.Journey{},
		&model.Process{},
		&model.Task{},
		&model.MaturityRequest{},
		&model.ProcessEvaluation{},
		&model.MaturityEvaluationHistory{},
		&model.JourneyMaturitySnapshot{},
		&model.Indicator{},
		&model.IndicatorEntry{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	if err := createPartialIndexes(db); err != nil {
		log.Println("WARNING: Failed to create partial indexes:", err)
	}

	return db, nil
}

// createPartialIndexes adds constraints AutoMigrate cannot express.
//
// The maturity_requests index is the concurrency guard for the approval
// workflow: at most one active (pending or gestor_approved) request may
// exist per process. Terminal rows are excluded so a process can be
// re-requested after rejection.
//
// The process_evaluations index backs the ON CONFLICT upsert of the
// current evaluation row (diagnosis-scoped rows are a separate lineage).
func createPartialIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_maturity_request_active
			ON maturity_requests (process_id, company_id)
			WHERE status IN ('pending', 'gestor_approved')`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_process_evaluation_current
			ON process_evaluations (process_id, company_id)
			WHERE diagnosis_id IS NULL`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

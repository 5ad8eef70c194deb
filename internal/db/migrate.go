package db

import (
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},
		&types.UserSlotTime{},

		// =========================
		// Catalog reference data
		// =========================
		&types.Medicine{},
		&types.Material{},
		&types.InteractionRule{},
		&types.AlarmCombo{},
		&types.SlotTime{},
		&types.EventKind{},
		&types.Effect{},

		// =========================
		// Medication graph
		// =========================
		&types.Medication{},
		&types.MedicationItem{},
		&types.Cycle{},
		&types.AlarmTime{},
		&types.Quiz{},
		&types.QuizOption{},

		// =========================
		// Events + reporting
		// =========================
		&types.Description{},
		&types.Event{},
		&types.Condition{},
		&types.Report{},
	)
}

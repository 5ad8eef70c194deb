package services

import (
	"math/rand"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dosecare/dosecare-backend/internal/db"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// testEnv wires the repo layer over an in-memory sqlite database with the
// reference rows seeded, mirroring how main wires the real thing.
type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	users         repos.UserRepo
	slotTimes     repos.SlotTimeRepo
	userSlotTimes repos.UserSlotTimeRepo
	medicines     repos.MedicineRepo
	materials     repos.MaterialRepo
	rules         repos.InteractionRuleRepo
	combos        repos.AlarmComboRepo
	medications   repos.MedicationRepo
	items         repos.MedicationItemRepo
	cycles        repos.CycleRepo
	alarmTimes    repos.AlarmTimeRepo
	quizzes       repos.QuizRepo
	quizOptions   repos.QuizOptionRepo
	eventKinds    repos.EventKindRepo
	descriptions  repos.DescriptionRepo
	events        repos.EventRepo
	effects       repos.EffectRepo
	conditions    repos.ConditionRepo
	reports       repos.ReportRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.SeedReferenceData(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := logger.NewNop()
	return &testEnv{
		db:            gdb,
		log:           log,
		users:         repos.NewUserRepo(gdb, log),
		slotTimes:     repos.NewSlotTimeRepo(gdb, log),
		userSlotTimes: repos.NewUserSlotTimeRepo(gdb, log),
		medicines:     repos.NewMedicineRepo(gdb, log),
		materials:     repos.NewMaterialRepo(gdb, log),
		rules:         repos.NewInteractionRuleRepo(gdb, log),
		combos:        repos.NewAlarmComboRepo(gdb, log),
		medications:   repos.NewMedicationRepo(gdb, log),
		items:         repos.NewMedicationItemRepo(gdb, log),
		cycles:        repos.NewCycleRepo(gdb, log),
		alarmTimes:    repos.NewAlarmTimeRepo(gdb, log),
		quizzes:       repos.NewQuizRepo(gdb, log),
		quizOptions:   repos.NewQuizOptionRepo(gdb, log),
		eventKinds:    repos.NewEventKindRepo(gdb, log),
		descriptions:  repos.NewDescriptionRepo(gdb, log),
		events:        repos.NewEventRepo(gdb, log),
		effects:       repos.NewEffectRepo(gdb, log),
		conditions:    repos.NewConditionRepo(gdb, log),
		reports:       repos.NewReportRepo(gdb, log),
	}
}

func (e *testEnv) scheduleBuilder() ScheduleBuilder {
	return NewScheduleBuilder(e.db, e.log, e.medications, e.combos, e.alarmTimes, e.slotTimes, e.userSlotTimes)
}

func (e *testEnv) quizGenerator(seed int64) QuizGenerator {
	return NewQuizGenerator(e.log, rand.New(rand.NewSource(seed)), e.quizzes, e.quizOptions, e.medicines, e.materials)
}

func (e *testEnv) eventService(seed int64) EventService {
	return NewEventService(e.db, e.log, rand.New(rand.NewSource(seed)), NewTTSService(e.log, nil),
		e.medications, e.cycles, e.alarmTimes, e.events, e.eventKinds, e.descriptions, e.quizzes, e.quizOptions)
}

func (e *testEnv) mustCreate(t *testing.T, value interface{}) {
	t.Helper()
	if err := e.db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func (e *testEnv) newUser(t *testing.T) *types.User {
	t.Helper()
	user := &types.User{Name: "Dana", Birth: "1954-03-02", Phone: "010-1234-5678", IsActive: true}
	e.mustCreate(t, user)
	return user
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/clients/openai"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// Adherence day colors: everything taken, something taken, nothing taken.
const (
	ColorGreen  = "g"
	ColorYellow = "y"
	ColorRed    = "r"
)

// ReportApology is returned when the adherence summary cannot be generated.
const ReportApology = "We could not prepare your adherence summary this time. Please try again later."

type ReportListItem struct {
	ReportID     uuid.UUID `json:"report_id"`
	MedicationID uuid.UUID `json:"medication_id"`
	Hospital     string    `json:"hospital"`
	Category     string    `json:"category"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
}

type WeeklyEffectStat struct {
	Week   int            `json:"week"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Counts map[string]int `json:"counts"`
}

type ReportDetail struct {
	ReportListItem
	Medicines   []string           `json:"medicines"`
	TotalCycle  int                `json:"total_cycle"`
	CurCycle    int                `json:"cur_cycle"`
	SaveCycle   int                `json:"save_cycle"`
	Weekly      []WeeklyEffectStat `json:"weekly"`
	Description string             `json:"description"`
}

// ReportService serves the adherence views over a medication's cycle.
type ReportService interface {
	List(ctx context.Context, userID uuid.UUID) ([]ReportListItem, error)
	// Summary colors each day of the cycle window: no entry when nothing was
	// scheduled, otherwise g/y/r by how much of the day was completed.
	Summary(ctx context.Context, userID, medicationID uuid.UUID) (map[string]string, error)
	Detail(ctx context.Context, userID, medicationID uuid.UUID) (*ReportDetail, error)
}

type reportService struct {
	db    *gorm.DB
	log   *logger.Logger
	llm   openai.Client
	clock func() time.Time

	medicationRepo repos.MedicationRepo
	cycleRepo      repos.CycleRepo
	reportRepo     repos.ReportRepo
	eventRepo      repos.EventRepo
	itemRepo       repos.MedicationItemRepo
	conditionRepo  repos.ConditionRepo
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	llm openai.Client,
	medicationRepo repos.MedicationRepo,
	cycleRepo repos.CycleRepo,
	reportRepo repos.ReportRepo,
	eventRepo repos.EventRepo,
	itemRepo repos.MedicationItemRepo,
	conditionRepo repos.ConditionRepo,
) ReportService {
	return &reportService{
		db:             db,
		log:            log.With("service", "ReportService"),
		llm:            llm,
		clock:          time.Now,
		medicationRepo: medicationRepo,
		cycleRepo:      cycleRepo,
		reportRepo:     reportRepo,
		eventRepo:      eventRepo,
		itemRepo:       itemRepo,
		conditionRepo:  conditionRepo,
	}
}

func (s *reportService) List(ctx context.Context, userID uuid.UUID) ([]ReportListItem, error) {
	medications, err := s.medicationRepo.GetAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(medications))
	byID := make(map[uuid.UUID]*types.Medication, len(medications))
	for i := range medications {
		ids = append(ids, medications[i].ID)
		byID[medications[i].ID] = &medications[i]
	}

	reports, err := s.reportRepo.GetByMedicationIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	cycles, err := s.cycleRepo.GetByMedicationIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	cycleByMedication := make(map[uuid.UUID]*types.Cycle, len(cycles))
	for i := range cycles {
		cycleByMedication[cycles[i].MedicationID] = &cycles[i]
	}

	items := make([]ReportListItem, 0, len(reports))
	for _, r := range reports {
		medication := byID[r.MedicationID]
		cycle := cycleByMedication[r.MedicationID]
		if medication == nil || cycle == nil {
			continue
		}
		items = append(items, ReportListItem{
			ReportID:     r.ID,
			MedicationID: r.MedicationID,
			Hospital:     medication.Hospital,
			Category:     medication.Category,
			StartDate:    formatDate(time.Time(cycle.StartDate)),
			EndDate:      formatDate(time.Time(cycle.EndDate)),
		})
	}
	return items, nil
}

func (s *reportService) Summary(ctx context.Context, userID, medicationID uuid.UUID) (map[string]string, error) {
	_, cycle, err := s.loadMedicationCycle(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.GetByMedicationIDs(ctx, nil, []uuid.UUID{medicationID})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	createdByDay := map[string]int{}
	completedByDay := map[string]int{}
	for i := range events {
		day := formatDate(time.Time(events[i].EventDate))
		createdByDay[day]++
		// A completion only counts toward the event's own day. A day-1 event
		// completed on day 2 leaves day 1 partial instead of inflating day 2.
		if events[i].Status == types.EventCompleted &&
			events[i].UpdatedAt != nil &&
			formatDate(*events[i].UpdatedAt) == day {
			completedByDay[day]++
		}
	}

	colors := map[string]string{}
	start := truncateDay(time.Time(cycle.StartDate))
	end := truncateDay(time.Time(cycle.EndDate))
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := formatDate(d)
		created := createdByDay[day]
		if created == 0 {
			continue
		}
		completed := completedByDay[day]
		switch {
		case completed == 0:
			colors[day] = ColorRed
		case completed == created:
			colors[day] = ColorGreen
		default:
			colors[day] = ColorYellow
		}
	}
	return colors, nil
}

func (s *reportService) Detail(ctx context.Context, userID, medicationID uuid.UUID) (*ReportDetail, error) {
	medication, cycle, err := s.loadMedicationCycle(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}
	report, err := s.reportRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if report == nil {
		return nil, apperr.NotFound("medication %s has no report", medicationID)
	}
	items, err := s.itemRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medication items: %w", err)
	}

	detail := &ReportDetail{
		ReportListItem: ReportListItem{
			ReportID:     report.ID,
			MedicationID: medicationID,
			Hospital:     medication.Hospital,
			Category:     medication.Category,
			StartDate:    formatDate(time.Time(cycle.StartDate)),
			EndDate:      formatDate(time.Time(cycle.EndDate)),
		},
		TotalCycle: cycle.TotalCycle,
		CurCycle:   cycle.CurCycle,
		SaveCycle:  cycle.SaveCycle,
	}
	for i := range items {
		if items[i].Medicine != nil {
			detail.Medicines = append(detail.Medicines, items[i].Medicine.Name)
		}
	}

	weekly, err := s.weeklyEffectStats(ctx, userID, cycle)
	if err != nil {
		return nil, err
	}
	detail.Weekly = weekly

	detail.Description, err = s.overallDescription(ctx, medication, cycle, report)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// weeklyEffectStats slices the cycle window into 7-day windows and counts
// the user's recorded side effects per window.
func (s *reportService) weeklyEffectStats(ctx context.Context, userID uuid.UUID, cycle *types.Cycle) ([]WeeklyEffectStat, error) {
	start := truncateDay(time.Time(cycle.StartDate))
	end := truncateDay(time.Time(cycle.EndDate))

	var stats []WeeklyEffectStat
	week := 1
	for from := start; !from.After(end); from = from.AddDate(0, 0, 7) {
		to := from.AddDate(0, 0, 7)
		if lastDay := end.AddDate(0, 0, 1); to.After(lastDay) {
			to = lastDay
		}
		conditions, err := s.conditionRepo.GetByUserRecordedBetween(ctx, nil, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to load conditions: %w", err)
		}
		counts := map[string]int{}
		for i := range conditions {
			if conditions[i].Effect != nil {
				counts[conditions[i].Effect.Name]++
			}
		}
		stats = append(stats, WeeklyEffectStat{
			Week:   week,
			From:   formatDate(from),
			To:     formatDate(to.AddDate(0, 0, -1)),
			Counts: counts,
		})
		week++
	}
	return stats, nil
}

// overallDescription fills the report text once the cycle is over. Generated
// once, persisted, then served from the row. An LLM failure degrades to a
// fixed apology without failing the request.
func (s *reportService) overallDescription(ctx context.Context, medication *types.Medication, cycle *types.Cycle, report *types.Report) (string, error) {
	if report.Description != "" {
		return report.Description, nil
	}
	endExclusive := truncateDay(time.Time(cycle.EndDate)).AddDate(0, 0, 1)
	if s.clock().Before(endExclusive) {
		return "", nil
	}

	system := "You summarize medication adherence for a patient in a couple of warm, plain sentences."
	user := fmt.Sprintf("Category: %s\nScheduled doses: %d\nReminded doses: %d\nCompleted doses: %d\nWindow: %s to %s",
		medication.Category, cycle.TotalCycle, cycle.CurCycle, cycle.SaveCycle,
		formatDate(time.Time(cycle.StartDate)), formatDate(time.Time(cycle.EndDate)))

	text, err := s.llm.GenerateText(ctx, system, user)
	if err != nil {
		s.log.Warn("Report summary generation failed, serving apology",
			"medication_id", medication.ID,
			"error", err,
		)
		return ReportApology, nil
	}

	report.Description = text
	if err := s.reportRepo.Save(ctx, nil, report); err != nil {
		return "", fmt.Errorf("failed to persist report description: %w", err)
	}
	return text, nil
}

func (s *reportService) loadMedicationCycle(ctx context.Context, userID, medicationID uuid.UUID) (*types.Medication, *types.Cycle, error) {
	medication, err := s.medicationRepo.GetByIDForUser(ctx, nil, medicationID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load medication: %w", err)
	}
	if medication == nil {
		return nil, nil, apperr.NotFound("medication %s not found", medicationID)
	}
	cycle, err := s.cycleRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cycle: %w", err)
	}
	if cycle == nil {
		return nil, nil, apperr.NotFound("medication %s has no cycle", medicationID)
	}
	return medication, cycle, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/clients/ocr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/parser"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

// FallbackCategory labels a prescription when no classification is known.
const FallbackCategory = "general"

const maxCategoryLen = 20

type RegisteredItem struct {
	MedicineID  uuid.UUID `json:"medicine_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type RegistrationResult struct {
	MedicationID uuid.UUID        `json:"medication_id"`
	Hospital     string           `json:"hospital"`
	Category     string           `json:"category"`
	Taken        int              `json:"taken"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	Items        []RegisteredItem `json:"items"`
}

type MedicationSummary struct {
	MedicationID uuid.UUID `json:"medication_id"`
	Hospital     string    `json:"hospital"`
	Category     string    `json:"category"`
	Taken        int       `json:"taken"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	CurCycle     int       `json:"cur_cycle"`
	TotalCycle   int       `json:"total_cycle"`
}

type MedicationItemDetail struct {
	Name           string   `json:"name"`
	Classification string   `json:"classification"`
	Description    string   `json:"description"`
	Image          string   `json:"image,omitempty"`
	Materials      []string `json:"materials"`
	Audio          string   `json:"audio,omitempty"`
}

type MedicationDetail struct {
	MedicationSummary
	SaveCycle int                    `json:"save_cycle"`
	Items     []MedicationItemDetail `json:"items"`
}

type SlotTimeDTO struct {
	AlarmTimeID uuid.UUID  `json:"alarm_time_id"`
	Slot        types.Slot `json:"slot"`
	Hour        int        `json:"hour"`
}

type CombinationDTO struct {
	Taken int           `json:"taken"`
	Slots []SlotTimeDTO `json:"slots"`
}

// MedicationService runs the registration pipeline off a prescription photo
// and serves the queries hanging off a registered medication.
type MedicationService interface {
	Register(ctx context.Context, userID uuid.UUID, mode string, image []byte, filename string) (*RegistrationResult, error)
	ListSummaries(ctx context.Context, userID uuid.UUID) ([]MedicationSummary, error)
	ListToday(ctx context.Context, userID uuid.UUID) ([]MedicationSummary, error)
	GetDetail(ctx context.Context, userID, medicationID uuid.UUID) (*MedicationDetail, error)
	GetCombination(ctx context.Context, userID, medicationID uuid.UUID) (*CombinationDTO, error)
	RenameCategory(ctx context.Context, userID, medicationID uuid.UUID, category string) error
}

type medicationService struct {
	db    *gorm.DB
	log   *logger.Logger
	clock func() time.Time

	ocrClient ocr.Client
	parser    parser.Parser
	resolver  MedicineResolver
	schedule  ScheduleBuilder
	quizzes   QuizGenerator
	tts       TTSService

	medicationRepo repos.MedicationRepo
	itemRepo       repos.MedicationItemRepo
	cycleRepo      repos.CycleRepo
	reportRepo     repos.ReportRepo
	descRepo       repos.DescriptionRepo
	eventKindRepo  repos.EventKindRepo
	alarmTimeRepo  repos.AlarmTimeRepo
	ruleRepo       repos.InteractionRuleRepo
}

func NewMedicationService(
	db *gorm.DB,
	log *logger.Logger,
	ocrClient ocr.Client,
	prescriptionParser parser.Parser,
	resolver MedicineResolver,
	schedule ScheduleBuilder,
	quizzes QuizGenerator,
	tts TTSService,
	medicationRepo repos.MedicationRepo,
	itemRepo repos.MedicationItemRepo,
	cycleRepo repos.CycleRepo,
	reportRepo repos.ReportRepo,
	descRepo repos.DescriptionRepo,
	eventKindRepo repos.EventKindRepo,
	alarmTimeRepo repos.AlarmTimeRepo,
	ruleRepo repos.InteractionRuleRepo,
) MedicationService {
	return &medicationService{
		db:             db,
		log:            log.With("service", "MedicationService"),
		clock:          time.Now,
		ocrClient:      ocrClient,
		parser:         prescriptionParser,
		resolver:       resolver,
		schedule:       schedule,
		quizzes:        quizzes,
		tts:            tts,
		medicationRepo: medicationRepo,
		itemRepo:       itemRepo,
		cycleRepo:      cycleRepo,
		reportRepo:     reportRepo,
		descRepo:       descRepo,
		eventKindRepo:  eventKindRepo,
		alarmTimeRepo:  alarmTimeRepo,
		ruleRepo:       ruleRepo,
	}
}

// Register runs the full pipeline: recognize the image, parse it, match the
// catalog, derive interactions and guidance, then persist the medication with
// its cycle, quizzes, items, spoken description, and alarm rows in one
// transaction.
func (s *medicationService) Register(ctx context.Context, userID uuid.UUID, mode string, image []byte, filename string) (*RegistrationResult, error) {
	raw, err := s.ocrClient.Recognize(ctx, image, filename, mode)
	if err != nil {
		return nil, apperr.External("prescription recognition failed", err)
	}

	parsed, err := s.parser.Parse([]byte(raw), mode)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		names = append(names, item.Name)
	}

	medicines, err := s.resolver.Resolve(ctx, nil, names)
	if err != nil {
		return nil, err
	}
	if len(medicines) == 0 {
		return nil, apperr.NotFound("no catalog medicine matched the prescription")
	}

	rules, err := s.resolver.FindInteractions(ctx, nil, medicines)
	if err != nil {
		return nil, err
	}

	category, err := s.resolver.RepresentativeCategory(ctx, medicines)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = FallbackCategory
	}

	descriptions := make(map[uuid.UUID]string, len(medicines))
	for _, m := range medicines {
		text, err := s.resolver.ComposeDescription(ctx, m, rules)
		if err != nil {
			return nil, err
		}
		descriptions[m.ID] = text
	}

	primary := s.schedule.PrimaryItem(parsed.Items)
	taken := primary.DoseCount
	if taken < 1 {
		taken = 1
	}
	cycle := s.schedule.BuildCycle(taken, primary.DoseDays, s.clock())

	var result *RegistrationResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		combo, err := s.schedule.ComboForTaken(ctx, tx, taken)
		if err != nil {
			return err
		}

		medication := &types.Medication{
			UserID:       userID,
			Hospital:     parsed.Hospital,
			Category:     category,
			Taken:        taken,
			AlarmComboID: combo.ID,
		}
		if err := s.medicationRepo.Create(ctx, tx, medication); err != nil {
			return fmt.Errorf("failed to create medication: %w", err)
		}

		cycle.MedicationID = medication.ID
		if err := s.cycleRepo.Create(ctx, tx, cycle); err != nil {
			return fmt.Errorf("failed to create cycle: %w", err)
		}

		report := &types.Report{MedicationID: medication.ID, CycleID: cycle.ID}
		if err := s.reportRepo.Create(ctx, tx, report); err != nil {
			return fmt.Errorf("failed to create report skeleton: %w", err)
		}

		if _, err := s.quizzes.Generate(ctx, tx, medication.ID, category, medicines, rules); err != nil {
			return err
		}

		items := make([]types.MedicationItem, 0, len(medicines))
		resultItems := make([]RegisteredItem, 0, len(medicines))
		for _, m := range medicines {
			items = append(items, types.MedicationItem{
				MedicationID: medication.ID,
				MedicineID:   m.ID,
				Description:  descriptions[m.ID],
			})
			resultItems = append(resultItems, RegisteredItem{
				MedicineID:  m.ID,
				Name:        m.Name,
				Description: descriptions[m.ID],
			})
		}
		if err := s.itemRepo.CreateBatch(ctx, tx, items); err != nil {
			return fmt.Errorf("failed to create medication items: %w", err)
		}

		aiCallKind, err := s.eventKindRepo.GetByName(ctx, tx, types.EventKindAICall)
		if err != nil {
			return fmt.Errorf("failed to load event kind: %w", err)
		}
		if aiCallKind == nil {
			return apperr.Config("event kind %s is not seeded", types.EventKindAICall)
		}
		joined := make([]string, 0, len(medicines))
		for _, m := range medicines {
			joined = append(joined, descriptions[m.ID])
		}
		aiCallDesc := &types.Description{
			MedicationID: medication.ID,
			EventKindID:  aiCallKind.ID,
			Text:         strings.Join(joined, "\n"),
		}
		if err := s.descRepo.Create(ctx, tx, aiCallDesc); err != nil {
			return fmt.Errorf("failed to create call description: %w", err)
		}

		if _, err := s.schedule.InstantiateAlarmTimes(ctx, tx, userID, medication.ID, combo); err != nil {
			return err
		}

		result = &RegistrationResult{
			MedicationID: medication.ID,
			Hospital:     medication.Hospital,
			Category:     medication.Category,
			Taken:        taken,
			StartDate:    formatDate(time.Time(cycle.StartDate)),
			EndDate:      formatDate(time.Time(cycle.EndDate)),
			Items:        resultItems,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Medication registered",
		"user_id", userID,
		"medication_id", result.MedicationID,
		"items", len(result.Items),
		"taken", taken,
	)
	return result, nil
}

func (s *medicationService) ListSummaries(ctx context.Context, userID uuid.UUID) ([]MedicationSummary, error) {
	medications, err := s.medicationRepo.GetAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	return s.summarize(ctx, medications, nil)
}

// ListToday keeps only the medications whose cycle window contains today.
func (s *medicationService) ListToday(ctx context.Context, userID uuid.UUID) ([]MedicationSummary, error) {
	medications, err := s.medicationRepo.GetAllByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	today := s.clock()
	return s.summarize(ctx, medications, func(c *types.Cycle) bool {
		return c.ContainsDay(today)
	})
}

func (s *medicationService) summarize(ctx context.Context, medications []types.Medication, keep func(*types.Cycle) bool) ([]MedicationSummary, error) {
	ids := make([]uuid.UUID, 0, len(medications))
	for _, m := range medications {
		ids = append(ids, m.ID)
	}
	cycles, err := s.cycleRepo.GetByMedicationIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	cycleByMedication := make(map[uuid.UUID]*types.Cycle, len(cycles))
	for i := range cycles {
		cycleByMedication[cycles[i].MedicationID] = &cycles[i]
	}

	summaries := make([]MedicationSummary, 0, len(medications))
	for _, m := range medications {
		cycle := cycleByMedication[m.ID]
		if cycle == nil {
			continue
		}
		if keep != nil && !keep(cycle) {
			continue
		}
		summaries = append(summaries, MedicationSummary{
			MedicationID: m.ID,
			Hospital:     m.Hospital,
			Category:     m.Category,
			Taken:        m.Taken,
			StartDate:    formatDate(time.Time(cycle.StartDate)),
			EndDate:      formatDate(time.Time(cycle.EndDate)),
			CurCycle:     cycle.CurCycle,
			TotalCycle:   cycle.TotalCycle,
		})
	}
	return summaries, nil
}

func (s *medicationService) GetDetail(ctx context.Context, userID, medicationID uuid.UUID) (*MedicationDetail, error) {
	medication, err := s.medicationRepo.GetByIDForUser(ctx, nil, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medication: %w", err)
	}
	if medication == nil {
		return nil, apperr.NotFound("medication %s not found", medicationID)
	}
	cycle, err := s.cycleRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle: %w", err)
	}
	if cycle == nil {
		return nil, apperr.NotFound("medication %s has no cycle", medicationID)
	}
	items, err := s.itemRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medication items: %w", err)
	}

	medicines := make([]*types.Medicine, 0, len(items))
	for i := range items {
		if items[i].Medicine != nil {
			medicines = append(medicines, items[i].Medicine)
		}
	}
	rules, err := s.resolver.FindInteractions(ctx, nil, medicines)
	if err != nil {
		return nil, err
	}

	detail := &MedicationDetail{
		MedicationSummary: MedicationSummary{
			MedicationID: medication.ID,
			Hospital:     medication.Hospital,
			Category:     medication.Category,
			Taken:        medication.Taken,
			StartDate:    formatDate(time.Time(cycle.StartDate)),
			EndDate:      formatDate(time.Time(cycle.EndDate)),
			CurCycle:     cycle.CurCycle,
			TotalCycle:   cycle.TotalCycle,
		},
		SaveCycle: cycle.SaveCycle,
	}

	for _, item := range items {
		d := MedicationItemDetail{Description: item.Description}
		if item.Medicine != nil {
			d.Name = item.Medicine.Name
			d.Classification = item.Medicine.Classification
			d.Image = item.Medicine.Image
			d.Materials = materialsFor(item.Medicine, rules)
		}
		d.Audio = s.tts.Speak(ctx, item.Description)
		detail.Items = append(detail.Items, d)
	}
	return detail, nil
}

// materialsFor lists the interaction materials applying to one medicine.
func materialsFor(medicine *types.Medicine, rules []*types.InteractionRule) []string {
	tokens := types.SplitIngredients(medicine.Ingredient)
	seen := map[string]bool{}
	materials := []string{}
	for _, rule := range rules {
		if rule.Material == nil || !rule.Matches(medicine, tokens) {
			continue
		}
		if seen[rule.Material.Name] {
			continue
		}
		seen[rule.Material.Name] = true
		materials = append(materials, rule.Material.Name)
	}
	return materials
}

func (s *medicationService) GetCombination(ctx context.Context, userID, medicationID uuid.UUID) (*CombinationDTO, error) {
	medication, err := s.medicationRepo.GetByIDForUser(ctx, nil, medicationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medication: %w", err)
	}
	if medication == nil {
		return nil, apperr.NotFound("medication %s not found", medicationID)
	}
	alarmTimes, err := s.alarmTimeRepo.GetByMedicationID(ctx, nil, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alarm times: %w", err)
	}
	dto := &CombinationDTO{Taken: medication.Taken}
	for _, at := range alarmTimes {
		slot := SlotTimeDTO{AlarmTimeID: at.ID}
		if at.SlotTime != nil {
			slot.Slot = at.SlotTime.Slot
			slot.Hour = at.SlotTime.Clock
		}
		dto.Slots = append(dto.Slots, slot)
	}
	return dto, nil
}

func (s *medicationService) RenameCategory(ctx context.Context, userID, medicationID uuid.UUID, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return apperr.Validation("category must not be blank")
	}
	if len([]rune(category)) > maxCategoryLen {
		return apperr.Validation("category longer than %d characters", maxCategoryLen)
	}
	medication, err := s.medicationRepo.GetByIDForUser(ctx, nil, medicationID, userID)
	if err != nil {
		return fmt.Errorf("failed to load medication: %w", err)
	}
	if medication == nil {
		return apperr.NotFound("medication %s not found", medicationID)
	}
	medication.Category = category
	if err := s.medicationRepo.Save(ctx, nil, medication); err != nil {
		return fmt.Errorf("failed to save medication: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

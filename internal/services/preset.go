package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type EffectDTO struct {
	EffectID uuid.UUID `json:"effect_id"`
	Name     string    `json:"name"`
}

// PresetService serves the fixed catalogs the client picks from.
type PresetService interface {
	SlotHours(ctx context.Context, slot types.Slot) ([]int, error)
	Effects(ctx context.Context) ([]EffectDTO, error)
}

type presetService struct {
	log          *logger.Logger
	slotTimeRepo repos.SlotTimeRepo
	effectRepo   repos.EffectRepo
}

func NewPresetService(
	log *logger.Logger,
	slotTimeRepo repos.SlotTimeRepo,
	effectRepo repos.EffectRepo,
) PresetService {
	return &presetService{
		log:          log.With("service", "PresetService"),
		slotTimeRepo: slotTimeRepo,
		effectRepo:   effectRepo,
	}
}

func (s *presetService) SlotHours(ctx context.Context, slot types.Slot) ([]int, error) {
	presets, err := s.slotTimeRepo.ListBySlot(ctx, nil, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot time presets: %w", err)
	}
	hours := make([]int, 0, len(presets))
	for _, p := range presets {
		hours = append(hours, p.Clock)
	}
	return hours, nil
}

func (s *presetService) Effects(ctx context.Context) ([]EffectDTO, error) {
	effects, err := s.effectRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load effects: %w", err)
	}
	dtos := make([]EffectDTO, 0, len(effects))
	for _, e := range effects {
		dtos = append(dtos, EffectDTO{EffectID: e.ID, Name: e.Name})
	}
	return dtos, nil
}

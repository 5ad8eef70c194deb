package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/repos"
	"github.com/dosecare/dosecare-backend/internal/types"
	"github.com/dosecare/dosecare-backend/internal/utils"
)

type SignupInput struct {
	Name     string `json:"name"`
	Birth    string `json:"birth"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	FcmToken string `json:"fcm_token"`
}

type UserInfo struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Birth  string    `json:"birth"`
	Phone  string    `json:"phone"`
}

type UserUpdateInput struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	FcmToken *string `json:"fcm_token,omitempty"`
}

// UserService covers account lifecycle and the user's per-slot clock times.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*types.User, error)
	GetInfo(ctx context.Context, userID uuid.UUID) (*UserInfo, error)
	Update(ctx context.Context, userID uuid.UUID, in UserUpdateInput) (*UserInfo, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
	GetSlotTime(ctx context.Context, userID uuid.UUID, slot types.Slot) (int, error)
	SetSlotTime(ctx context.Context, userID uuid.UUID, slot types.Slot, hour int) error
}

type userService struct {
	db  *gorm.DB
	log *logger.Logger

	userRepo         repos.UserRepo
	slotTimeRepo     repos.SlotTimeRepo
	userSlotTimeRepo repos.UserSlotTimeRepo
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	slotTimeRepo repos.SlotTimeRepo,
	userSlotTimeRepo repos.UserSlotTimeRepo,
) UserService {
	return &userService{
		db:               db,
		log:              log.With("service", "UserService"),
		userRepo:         userRepo,
		slotTimeRepo:     slotTimeRepo,
		userSlotTimeRepo: userSlotTimeRepo,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*types.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Birth = strings.TrimSpace(in.Birth)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Name == "" || in.Birth == "" || in.Phone == "" || in.Password == "" {
		return nil, apperr.Validation("name, birth, phone and password are required")
	}

	existing, err := s.userRepo.GetByNameBirthPhone(ctx, nil, in.Name, in.Birth, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apperr.Validation("user already registered")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Name:         in.Name,
		Birth:        in.Birth,
		Phone:        in.Phone,
		PasswordHash: hash,
		FcmToken:     in.FcmToken,
		IsActive:     true,
	}
	created, err := s.userRepo.Create(ctx, nil, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("User signed up", "user_id", created.ID)
	return created, nil
}

func (s *userService) GetInfo(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserInfo{UserID: user.ID, Name: user.Name, Birth: user.Birth, Phone: user.Phone}, nil
}

func (s *userService) Update(ctx context.Context, userID uuid.UUID, in UserUpdateInput) (*UserInfo, error) {
	user, err := s.loadActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be blank")
		}
		user.Name = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			return nil, apperr.Validation("phone must not be blank")
		}
		user.Phone = phone
	}
	if in.FcmToken != nil {
		user.FcmToken = *in.FcmToken
	}
	if err := s.userRepo.Save(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &UserInfo{UserID: user.ID, Name: user.Name, Birth: user.Birth, Phone: user.Phone}, nil
}

// Deactivate soft-disables the account. History stays; the daily batch stops
// seeing the user.
func (s *userService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.loadActive(ctx, userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.userRepo.Save(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	s.log.Info("User deactivated", "user_id", userID)
	return nil
}

// GetSlotTime returns the user's configured hour for a slot, falling back to
// the catalog default preset.
func (s *userService) GetSlotTime(ctx context.Context, userID uuid.UUID, slot types.Slot) (int, error) {
	ust, err := s.userSlotTimeRepo.GetByUserAndSlot(ctx, nil, userID, slot)
	if err != nil {
		return 0, fmt.Errorf("failed to load user slot time: %w", err)
	}
	if ust != nil && ust.SlotTime != nil {
		return ust.SlotTime.Clock, nil
	}
	preset, err := s.slotTimeRepo.DefaultForSlot(ctx, nil, slot)
	if err != nil {
		return 0, fmt.Errorf("failed to load slot time preset: %w", err)
	}
	if preset == nil {
		return 0, apperr.Config("no slot time preset seeded for slot %s", slot)
	}
	return preset.Clock, nil
}

// SetSlotTime points the user's slot at the preset for (slot, hour). The
// preset row must exist.
func (s *userService) SetSlotTime(ctx context.Context, userID uuid.UUID, slot types.Slot, hour int) error {
	if hour < 0 || hour > 23 {
		return apperr.Validation("hour %d outside 0..23", hour)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		preset, err := s.slotTimeRepo.GetBySlotAndClock(ctx, tx, slot, hour)
		if err != nil {
			return fmt.Errorf("failed to load slot time preset: %w", err)
		}
		if preset == nil {
			return apperr.Validation("no %s preset at hour %d", slot, hour)
		}
		ust, err := s.userSlotTimeRepo.GetByUserAndSlot(ctx, tx, userID, slot)
		if err != nil {
			return fmt.Errorf("failed to load user slot time: %w", err)
		}
		if ust == nil {
			_, err := s.userSlotTimeRepo.Create(ctx, tx, &types.UserSlotTime{
				UserID:     userID,
				SlotTimeID: preset.ID,
				Slot:       slot,
			})
			if err != nil {
				return fmt.Errorf("failed to create user slot time: %w", err)
			}
			return nil
		}
		ust.SlotTimeID = preset.ID
		ust.SlotTime = nil
		if err := s.userSlotTimeRepo.Save(ctx, tx, ust); err != nil {
			return fmt.Errorf("failed to save user slot time: %w", err)
		}
		return nil
	})
}

func (s *userService) loadActive(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperr.NotFound("user %s not found", userID)
	}
	return user, nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dosecare/dosecare-backend/internal/clients/fcm"
	"github.com/dosecare/dosecare-backend/internal/logger"
	"github.com/dosecare/dosecare-backend/internal/services"
	"github.com/dosecare/dosecare-backend/internal/types"
)

type stubUsers struct {
	users []*types.User
	err   error
}

func (s *stubUsers) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUsers) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUsers) GetByNameBirthPhone(ctx context.Context, tx *gorm.DB, name, birth, phone string) (*types.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUsers) GetByPhone(ctx context.Context, tx *gorm.DB, phone string) (*types.User, error) {
	return nil, errors.New("not used")
}
func (s *stubUsers) GetAllActive(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	return s.users, s.err
}
func (s *stubUsers) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
	return errors.New("not used")
}

type stubEvents struct {
	mu      sync.Mutex
	perUser map[uuid.UUID][]services.EventDTO
	fails   map[uuid.UUID]bool
	calls   []uuid.UUID
}

func (s *stubEvents) GenerateForUser(ctx context.Context, userID uuid.UUID, day time.Time) ([]services.EventDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, userID)
	if s.fails[userID] {
		return nil, errors.New("generation blew up")
	}
	return s.perUser[userID], nil
}

func (s *stubEvents) Complete(ctx context.Context, eventID uuid.UUID) (*types.Event, error) {
	return nil, errors.New("not used")
}
func (s *stubEvents) TodayEvents(ctx context.Context, userID uuid.UUID) ([]services.EventDTO, error) {
	return nil, errors.New("not used")
}
func (s *stubEvents) AIScript(ctx context.Context, medicationID uuid.UUID) (string, string, error) {
	return "", "", errors.New("not used")
}

type stubPush struct {
	mu   sync.Mutex
	sent []fcm.Notification
	err  error
}

func (s *stubPush) Send(ctx context.Context, n fcm.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return s.err
}

type stubLock struct {
	acquired bool
	err      error
	released int
}

func (s *stubLock) Acquire(ctx context.Context, day time.Time) (bool, error) {
	return s.acquired, s.err
}
func (s *stubLock) Release(ctx context.Context, day time.Time) error {
	s.released++
	return nil
}
func (s *stubLock) Close() error { return nil }

func TestDailyBatchRun(t *testing.T) {
	log := logger.NewNop()
	day := time.Now()

	healthy := &types.User{ID: uuid.New(), FcmToken: "tok-1", IsActive: true}
	broken := &types.User{ID: uuid.New(), FcmToken: "tok-2", IsActive: true}
	silent := &types.User{ID: uuid.New(), IsActive: true}

	events := &stubEvents{
		perUser: map[uuid.UUID][]services.EventDTO{
			healthy.ID: {
				{EventID: uuid.New(), Slot: types.SlotBreakfast, Hour: 8, Description: "time for breakfast dose"},
				{EventID: uuid.New(), Slot: types.SlotDinner, Hour: 18, Description: "time for dinner dose"},
			},
			silent.ID: {
				{EventID: uuid.New(), Slot: types.SlotBreakfast, Hour: 7, Description: "time to take it"},
			},
		},
		fails: map[uuid.UUID]bool{broken.ID: true},
	}
	push := &stubPush{}

	batch := NewDailyBatch(log, &stubLock{acquired: true},
		push, &stubUsers{users: []*types.User{healthy, broken, silent}}, events, 2)

	if err := batch.Run(context.Background(), day); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(events.calls) != 3 {
		t.Errorf("generation calls = %d, want all users despite one failure", len(events.calls))
	}
	// One message per user; only the user with a device token gets it.
	if len(push.sent) != 1 {
		t.Fatalf("pushes = %d, want 1 per user", len(push.sent))
	}
	n := push.sent[0]
	if n.Token != "tok-1" {
		t.Errorf("push token = %q", n.Token)
	}
	var carried []services.EventDTO
	if err := json.Unmarshal([]byte(n.Data["events"]), &carried); err != nil {
		t.Fatalf("push data events: %v", err)
	}
	if len(carried) != 2 {
		t.Fatalf("carried events = %d, want the whole day list", len(carried))
	}
	if carried[0].Slot != types.SlotBreakfast || carried[1].Slot != types.SlotDinner {
		t.Errorf("carried slots = %v, %v", carried[0].Slot, carried[1].Slot)
	}
	for _, dto := range carried {
		if dto.EventID == uuid.Nil || dto.Description == "" {
			t.Errorf("carried event not filled: %+v", dto)
		}
	}
}

func TestDailyBatchRun_LockHeldElsewhere(t *testing.T) {
	log := logger.NewNop()
	user := &types.User{ID: uuid.New(), IsActive: true}
	events := &stubEvents{perUser: map[uuid.UUID][]services.EventDTO{}}

	batch := NewDailyBatch(log, &stubLock{acquired: false},
		&stubPush{}, &stubUsers{users: []*types.User{user}}, events, 2)

	if err := batch.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events.calls) != 0 {
		t.Errorf("generation ran despite a held lock")
	}
}

func TestDailyBatchRun_LockBackendDown(t *testing.T) {
	log := logger.NewNop()
	user := &types.User{ID: uuid.New(), IsActive: true}
	events := &stubEvents{perUser: map[uuid.UUID][]services.EventDTO{}}

	batch := NewDailyBatch(log, &stubLock{err: errors.New("connection refused")},
		&stubPush{}, &stubUsers{users: []*types.User{user}}, events, 2)

	if err := batch.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events.calls) != 1 {
		t.Errorf("generation must run when the lock backend is unreachable")
	}
}

func TestDailyBatchRun_FailureReleasesLock(t *testing.T) {
	log := logger.NewNop()
	lock := &stubLock{acquired: true}
	events := &stubEvents{perUser: map[uuid.UUID][]services.EventDTO{}}

	batch := NewDailyBatch(log, lock, &stubPush{},
		&stubUsers{err: errors.New("db down")}, events, 2)

	if err := batch.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("Run must surface the user-load failure")
	}
	if lock.released != 1 {
		t.Errorf("lock releases = %d, want 1 so a same-day retry can run", lock.released)
	}
}

func TestDailyBatchRun_CompletedRunKeepsLock(t *testing.T) {
	log := logger.NewNop()
	lock := &stubLock{acquired: true}
	user := &types.User{ID: uuid.New(), IsActive: true}
	events := &stubEvents{perUser: map[uuid.UUID][]services.EventDTO{}}

	batch := NewDailyBatch(log, lock, &stubPush{},
		&stubUsers{users: []*types.User{user}}, events, 1)

	if err := batch.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if lock.released != 0 {
		t.Errorf("lock releases = %d, a finished run must hold until the TTL", lock.released)
	}
}

func TestDailyBatchRun_PushFailureIsNonFatal(t *testing.T) {
	log := logger.NewNop()
	user := &types.User{ID: uuid.New(), FcmToken: "tok", IsActive: true}
	events := &stubEvents{
		perUser: map[uuid.UUID][]services.EventDTO{
			user.ID: {{EventID: uuid.New(), Description: "time to take it"}},
		},
	}

	batch := NewDailyBatch(log, &stubLock{acquired: true},
		&stubPush{err: errors.New("fcm 503")}, &stubUsers{users: []*types.User{user}}, events, 1)

	if err := batch.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

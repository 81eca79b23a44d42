package repository

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/bloodbank-service/internal/domain"
)

// MemoryStore keeps every table in process memory. It backs development runs
// without POSTGRES_DSN and the service tests.
//
// A single mutex serializes all access. WithinTx works on a copy of the state
// and swaps it in on success, so a failed callback leaves nothing behind.
// Repositories handed to a WithinTx callback must be the only ones used inside it.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	users        map[string]domain.User
	donors       map[string]domain.DonorProfile // keyed by user id
	appointments map[string]domain.Appointment
	requests     map[string]domain.BloodRequest
	inventory    map[domain.BloodGroup]domain.InventoryRecord
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		users:        map[string]domain.User{},
		donors:       map[string]domain.DonorProfile{},
		appointments: map[string]domain.Appointment{},
		requests:     map[string]domain.BloodRequest{},
		inventory:    map[domain.BloodGroup]domain.InventoryRecord{},
	}}
}

func (s *memState) clone() *memState {
	return &memState{
		users:        maps.Clone(s.users),
		donors:       maps.Clone(s.donors),
		appointments: maps.Clone(s.appointments),
		requests:     maps.Clone(s.requests),
		inventory:    maps.Clone(s.inventory),
	}
}

func (s *MemoryStore) Repos() Repositories {
	return (&memView{store: s}).repos()
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(ctx, (&memView{store: s, draft: draft}).repos()); err != nil {
		return err
	}
	s.state = draft
	return nil
}

type memView struct {
	store *MemoryStore
	draft *memState
}

func (v *memView) repos() Repositories {
	return Repositories{
		Users:        memUsers{v},
		Donors:       memDonors{v},
		Appointments: memAppointments{v},
		Requests:     memRequests{v},
		Inventory:    memInventory{v},
	}
}

// acquire returns the state to operate on and its release func.
func (v *memView) acquire() (*memState, func()) {
	if v.draft != nil {
		return v.draft, func() {}
	}
	v.store.mu.Lock()
	return v.store.state, v.store.mu.Unlock
}

func now() time.Time { return time.Now().UTC() }

type memUsers struct{ *memView }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	st, release := r.acquire()
	defer release()

	for _, existing := range st.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	st.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	st, release := r.acquire()
	defer release()

	user, ok := st.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	st, release := r.acquire()
	defer release()

	for _, user := range st.users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memDonors struct{ *memView }

func (r memDonors) Create(_ context.Context, p *domain.DonorProfile) error {
	st, release := r.acquire()
	defer release()

	if _, exists := st.donors[p.UserID]; exists {
		return ErrDuplicate
	}
	p.ID = uuid.NewString()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Diseases = slices.Clone(p.Diseases)
	st.donors[p.UserID] = stored
	return nil
}

func (r memDonors) GetByUserID(_ context.Context, userID string) (*domain.DonorProfile, error) {
	st, release := r.acquire()
	defer release()

	p, ok := st.donors[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p.Diseases = slices.Clone(p.Diseases)
	return &p, nil
}

// GetByUserIDForUpdate needs no extra locking: a transaction already owns the whole draft.
func (r memDonors) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.DonorProfile, error) {
	return r.GetByUserID(ctx, userID)
}

func (r memDonors) UpdateLastDonationDate(_ context.Context, userID string, date time.Time) error {
	st, release := r.acquire()
	defer release()

	p, ok := st.donors[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	d := date
	p.LastDonationDate = &d
	p.UpdatedAt = now()
	st.donors[userID] = p
	return nil
}

func (r memDonors) Count(_ context.Context) (int64, error) {
	st, release := r.acquire()
	defer release()
	return int64(len(st.donors)), nil
}

type memAppointments struct{ *memView }

func (r memAppointments) Create(_ context.Context, appt *domain.Appointment) error {
	st, release := r.acquire()
	defer release()

	appt.ID = uuid.NewString()
	appt.CreatedAt = now()
	appt.UpdatedAt = appt.CreatedAt
	st.appointments[appt.ID] = *appt
	return nil
}

func (r memAppointments) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	st, release := r.acquire()
	defer release()

	appt, ok := st.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &appt, nil
}

func (r memAppointments) ListByDonor(_ context.Context, donorID string) ([]domain.Appointment, error) {
	st, release := r.acquire()
	defer release()

	var result []domain.Appointment
	for _, appt := range st.appointments {
		if appt.DonorID == donorID {
			result = append(result, appt)
		}
	}
	slices.SortFunc(result, func(a, b domain.Appointment) int { return b.Date.Compare(a.Date) })
	return result, nil
}

func (r memAppointments) ListWithDonors(_ context.Context) ([]domain.AppointmentWithDonor, error) {
	st, release := r.acquire()
	defer release()

	var result []domain.AppointmentWithDonor
	for _, appt := range st.appointments {
		user, ok := st.users[appt.DonorID]
		if !ok {
			continue
		}
		item := domain.AppointmentWithDonor{
			Appointment: appt,
			DonorName:   user.Name,
			DonorEmail:  user.Email,
		}
		if p, ok := st.donors[appt.DonorID]; ok {
			group := p.BloodGroup
			item.BloodGroup = &group
			item.LastDonationDate = p.LastDonationDate
		}
		result = append(result, item)
	}
	slices.SortFunc(result, func(a, b domain.AppointmentWithDonor) int { return b.Date.Compare(a.Date) })
	return result, nil
}

func (r memAppointments) UpdateStatus(_ context.Context, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error) {
	st, release := r.acquire()
	defer release()

	appt, ok := st.appointments[id]
	if !ok || appt.Status != from {
		return nil, ErrStatusConflict
	}
	appt.Status = to
	appt.UpdatedAt = now()
	st.appointments[id] = appt
	return &appt, nil
}

type memRequests struct{ *memView }

func (r memRequests) Create(_ context.Context, req *domain.BloodRequest) error {
	st, release := r.acquire()
	defer release()

	req.ID = uuid.NewString()
	req.CreatedAt = now()
	req.UpdatedAt = req.CreatedAt
	st.requests[req.ID] = *req
	return nil
}

func (r memRequests) GetByID(_ context.Context, id string) (*domain.BloodRequest, error) {
	st, release := r.acquire()
	defer release()

	req, ok := st.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &req, nil
}

func (r memRequests) ListByReceiver(_ context.Context, receiverID string) ([]domain.BloodRequest, error) {
	st, release := r.acquire()
	defer release()

	var result []domain.BloodRequest
	for _, req := range st.requests {
		if req.ReceiverID == receiverID {
			result = append(result, req)
		}
	}
	slices.SortFunc(result, func(a, b domain.BloodRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return result, nil
}

func (r memRequests) ListWithReceivers(_ context.Context) ([]domain.BloodRequestWithReceiver, error) {
	st, release := r.acquire()
	defer release()

	var result []domain.BloodRequestWithReceiver
	for _, req := range st.requests {
		user, ok := st.users[req.ReceiverID]
		if !ok {
			continue
		}
		result = append(result, domain.BloodRequestWithReceiver{
			BloodRequest:  req,
			ReceiverName:  user.Name,
			ReceiverEmail: user.Email,
		})
	}
	slices.SortFunc(result, func(a, b domain.BloodRequestWithReceiver) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return result, nil
}

func (r memRequests) UpdateStatus(_ context.Context, id string, from, to domain.RequestStatus) (*domain.BloodRequest, error) {
	st, release := r.acquire()
	defer release()

	req, ok := st.requests[id]
	if !ok || req.Status != from {
		return nil, ErrStatusConflict
	}
	req.Status = to
	req.UpdatedAt = now()
	st.requests[id] = req
	return &req, nil
}

func (r memRequests) CountByStatus(_ context.Context, status domain.RequestStatus) (int64, error) {
	st, release := r.acquire()
	defer release()

	var n int64
	for _, req := range st.requests {
		if req.Status == status {
			n++
		}
	}
	return n, nil
}

type memInventory struct{ *memView }

func (r memInventory) Increment(_ context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	st, release := r.acquire()
	defer release()

	rec := st.inventory[group]
	rec.BloodGroup = group
	rec.Units += delta
	rec.LastUpdated = now()
	st.inventory[group] = rec
	return &rec, nil
}

func (r memInventory) Decrement(_ context.Context, group domain.BloodGroup, delta int) (*domain.InventoryRecord, error) {
	st, release := r.acquire()
	defer release()

	rec, ok := st.inventory[group]
	if !ok || rec.Units < delta {
		return nil, ErrInsufficientStock
	}
	rec.Units -= delta
	rec.LastUpdated = now()
	st.inventory[group] = rec
	return &rec, nil
}

func (r memInventory) Get(_ context.Context, group domain.BloodGroup) (*domain.InventoryRecord, error) {
	st, release := r.acquire()
	defer release()

	rec, ok := st.inventory[group]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &rec, nil
}

func (r memInventory) List(_ context.Context) ([]domain.InventoryRecord, error) {
	st, release := r.acquire()
	defer release()

	result := slices.Collect(maps.Values(st.inventory))
	slices.SortFunc(result, func(a, b domain.InventoryRecord) int {
		return a.BloodGroup.Rank() - b.BloodGroup.Rank()
	})
	return result, nil
}

func (r memInventory) TotalUnits(_ context.Context) (int64, error) {
	st, release := r.acquire()
	defer release()

	var total int64
	for _, rec := range st.inventory {
		total += int64(rec.Units)
	}
	return total, nil
}

package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bloodbank-service/internal/config"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/repository"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store        *repository.MemoryStore
	dispatcher   events.Dispatcher
	cache        *fakeInventoryCache
	inventory    *InventoryService
	appointments *AppointmentService
	requests     *RequestService
	donors       *DonorService
	auth         *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	c := &fakeInventoryCache{}
	NewEventListener(dispatcher, c, nil).RegisterHandlers()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	return &fixture{
		store:      store,
		dispatcher: dispatcher,
		cache:      c,
		inventory: NewInventoryService(InventoryDependencies{
			Store: store, Cache: c, Dispatcher: dispatcher,
		}),
		appointments: NewAppointmentService(AppointmentDependencies{
			Store: store, Dispatcher: dispatcher, Clock: func() time.Time { return testNow },
		}),
		requests: NewRequestService(RequestDependencies{Store: store, Dispatcher: dispatcher}),
		donors:   NewDonorService(store),
		auth:     NewAuthService(cfg, AuthDependencies{Store: store}),
	}
}

func point() *domain.GeoPoint {
	p := domain.NewGeoPoint(31.2357, 30.0444)
	return &p
}

func healthyDonor(group domain.BloodGroup) *DonorRegistration {
	return &DonorRegistration{
		BloodGroup:      group,
		Age:             30,
		Weight:          60,
		HemoglobinLevel: 13.5,
		Diseases:        []string{"none"},
		Location:        point(),
	}
}

func (f *fixture) registerDonor(t *testing.T, email string, group domain.BloodGroup) *domain.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), RegisterInput{
		Name: "Donor", Email: email, Password: "pass1234", Role: domain.RoleDonor, Donor: healthyDonor(group),
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) registerReceiver(t *testing.T, email string) *domain.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), RegisterInput{
		Name: "Receiver", Email: email, Password: "pass1234", Role: domain.RoleReceiver,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) book(t *testing.T, donorID string, date time.Time) *domain.Appointment {
	t.Helper()
	appt, err := f.appointments.Create(context.Background(), donorID, AppointmentCreateInput{
		Date: date, Hospital: "City Hospital", Location: point(),
	})
	require.NoError(t, err)
	return appt
}

func (f *fixture) stock(t *testing.T, group domain.BloodGroup, units int) {
	t.Helper()
	_, err := f.inventory.Credit(context.Background(), "admin", group, units)
	require.NoError(t, err)
}

func (f *fixture) units(t *testing.T, group domain.BloodGroup) int {
	t.Helper()
	n, err := f.inventory.Units(context.Background(), group)
	require.NoError(t, err)
	return n
}

type fakeInventoryCache struct {
	mu            sync.Mutex
	records       []domain.InventoryRecord
	cached        bool
	generation    int64
	loads         int
	invalidations int
}

func (c *fakeInventoryCache) Load(context.Context) ([]domain.InventoryRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return slices.Clone(c.records), c.cached, nil
}

func (c *fakeInventoryCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *fakeInventoryCache) Store(_ context.Context, generation int64, records []domain.InventoryRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	c.records = slices.Clone(records)
	c.cached = true
	return nil
}

func (c *fakeInventoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
	c.cached = false
	c.generation++
	c.invalidations++
	return nil
}

func (c *fakeInventoryCache) isCached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached
}

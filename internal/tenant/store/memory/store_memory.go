package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/storage"
	"taskboard/internal/tenant/models"
)

// InMemoryStore backs tests and local development. User counts for the
// admin overview come from a counter callback so the store stays decoupled
// from the user package.
type InMemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]models.Tenant

	userCount func(tenantID uuid.UUID) int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tenants: make(map[string]models.Tenant)}
}

func (s *InMemoryStore) SetUserCounter(fn func(tenantID uuid.UUID) int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCount = fn
}

func (s *InMemoryStore) Put(tenant models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.ID.String()] = tenant
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id.String()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &tenant, nil
}

func (s *InMemoryStore) FindBySubdomain(_ context.Context, subdomain string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tenant := range s.tenants {
		if strings.EqualFold(tenant.Subdomain, subdomain) {
			return &tenant, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *InMemoryStore) ListOverviews(_ context.Context) ([]models.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overviews := make([]models.Overview, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		o := models.Overview{Tenant: tenant}
		if s.userCount != nil {
			o.TotalUsers = s.userCount(tenant.ID)
		}
		overviews = append(overviews, o)
	}
	sort.Slice(overviews, func(i, j int) bool {
		return overviews[i].CreatedAt.After(overviews[j].CreatedAt)
	})
	return overviews, nil
}

func (s *InMemoryStore) Update(_ context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := tenant.ID.String()
	if _, ok := s.tenants[id]; !ok {
		return storage.ErrNotFound
	}
	s.tenants[id] = *tenant
	return nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context) (models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts models.Counts
	for _, tenant := range s.tenants {
		counts.Total++
		switch tenant.Status {
		case models.StatusActive:
			counts.Active++
		case models.StatusSuspended:
			counts.Suspended++
		}
	}
	return counts, nil
}

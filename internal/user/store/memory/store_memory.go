package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/storage"
	"taskboard/internal/user/models"
	"taskboard/pkg/requestcontext"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]models.User)}
}

func (s *InMemoryStore) Put(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID.String()] = user
}

func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email && sameTenant(existing.TenantID, user.TenantID) {
			return storage.ErrConflict
		}
	}
	s.users[user.ID.String()] = *user
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id.String()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &user, nil
}

func (s *InMemoryStore) FindByEmailInTenant(_ context.Context, email string, tenantID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email && user.TenantID != nil && *user.TenantID == tenantID {
			return &user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *InMemoryStore) FindSuperAdminByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email && user.Role == requestcontext.RoleSuperAdmin {
			return &user, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.User
	for _, user := range s.users {
		if user.TenantID == nil || *user.TenantID != tenantID {
			continue
		}
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(user.FullName), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return nil, total, nil
	}
	end := min(start+filter.Limit, total)
	return matched[start:end], total, nil
}

func (s *InMemoryStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := user.ID.String()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	s.users[id] = *user
	return nil
}

func (s *InMemoryStore) CountByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.TenantID != nil && *user.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) CountNonSuperAdmin(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role != requestcontext.RoleSuperAdmin {
			count++
		}
	}
	return count, nil
}

func sameTenant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskboard/internal/project/models"
	"taskboard/internal/storage"
)

// InMemoryStore backs tests and local development. Creator names and task
// counts for the listing come from callbacks so the store stays decoupled
// from the user and task packages.
type InMemoryStore struct {
	mu       sync.RWMutex
	projects map[string]models.Project

	creatorName func(userID uuid.UUID) string
	taskCounts  func(projectID uuid.UUID) (total, completed int)
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{projects: make(map[string]models.Project)}
}

func (s *InMemoryStore) SetCreatorNamer(fn func(userID uuid.UUID) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creatorName = fn
}

func (s *InMemoryStore) SetTaskCounter(fn func(projectID uuid.UUID) (total, completed int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskCounts = fn
}

func (s *InMemoryStore) Put(project models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID.String()] = project
}

func (s *InMemoryStore) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID.String()] = *project
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id.String()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &project, nil
}

func (s *InMemoryStore) List(_ context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var overviews []models.Overview
	for _, project := range s.projects {
		if project.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && project.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(project.Name), strings.ToLower(filter.Search)) {
			continue
		}
		o := models.Overview{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			Status:      project.Status,
			CreatedAt:   project.CreatedAt,
		}
		if s.creatorName != nil {
			o.CreatedByName = s.creatorName(project.CreatedBy)
		}
		if s.taskCounts != nil {
			o.TaskCount, o.CompletedTaskCount = s.taskCounts(project.ID)
		}
		overviews = append(overviews, o)
	}
	sort.Slice(overviews, func(i, j int) bool {
		return overviews[i].CreatedAt.After(overviews[j].CreatedAt)
	})
	return overviews, nil
}

func (s *InMemoryStore) Update(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := project.ID.String()
	if _, ok := s.projects[id]; !ok {
		return storage.ErrNotFound
	}
	s.projects[id] = *project
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id.String()]; !ok {
		return storage.ErrNotFound
	}
	delete(s.projects, id.String())
	return nil
}

func (s *InMemoryStore) CountByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, project := range s.projects {
		if project.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

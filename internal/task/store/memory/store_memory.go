package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/storage"
	"taskboard/internal/task/models"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]models.Task
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tasks: make(map[string]models.Task)}
}

func (s *InMemoryStore) Put(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID.String()] = task
}

func (s *InMemoryStore) Create(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID.String()] = *task
	return nil
}

func (s *InMemoryStore) ListByProject(_ context.Context, projectID, tenantID uuid.UUID) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Task
	for _, task := range s.tasks {
		if task.ProjectID == projectID && task.TenantID == tenantID {
			matched = append(matched, task)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, taskID, tenantID uuid.UUID, status models.Status) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID.String()]
	if !ok || task.TenantID != tenantID {
		return nil, storage.ErrNotFound
	}
	task.Status = status
	task.UpdatedAt = time.Now().UTC()
	s.tasks[taskID.String()] = task
	return &task, nil
}

func (s *InMemoryStore) CountByTenant(_ context.Context, tenantID uuid.UUID) (total, completed int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.TenantID != tenantID {
			continue
		}
		total++
		if task.Status == models.StatusCompleted {
			completed++
		}
	}
	return total, completed, nil
}

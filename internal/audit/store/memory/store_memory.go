package memory

import (
	"context"
	"sync"

	"taskboard/internal/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event

	failErr error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// FailWith makes every subsequent Append return err. Tests use this to prove
// audit failures never surface to the business operation.
func (s *InMemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter audit.ListFilter) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Event
	// Newest first
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if filter.TenantID != nil {
			if event.TenantID == nil || *event.TenantID != *filter.TenantID {
				continue
			}
		}
		if filter.Action != "" && event.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && event.EntityType != filter.EntityType {
			continue
		}
		matched = append(matched, event)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}

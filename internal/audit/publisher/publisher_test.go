package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/audit"
	"taskboard/internal/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	tenantID := uuid.New()
	err := pub.Emit(context.Background(), audit.Event{
		TenantID:   &tenantID,
		ActorID:    uuid.New(),
		Action:     audit.ActionCreateProject,
		EntityType: "project",
		EntityID:   uuid.NewString(),
	})
	require.NoError(t, err)

	events, err := store.List(context.Background(), audit.ListFilter{TenantID: &tenantID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionCreateProject, events[0].Action)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	tenantID := uuid.New()
	err := pub.Emit(context.Background(), audit.Event{
		TenantID: &tenantID,
		ActorID:  uuid.New(),
		Action:   audit.ActionUpdateProject,
	})
	require.NoError(t, err)

	// Close drains the buffer, so the event is visible afterwards.
	pub.Close()

	events, err := store.List(context.Background(), audit.ListFilter{TenantID: &tenantID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUpdateProject, events[0].Action)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	tenantID := uuid.New()
	for i := 0; i < 10; i++ {
		err := pub.Emit(context.Background(), audit.Event{
			TenantID: &tenantID,
			ActorID:  uuid.New(),
			Action:   audit.ActionCreateTask,
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.List(context.Background(), audit.ListFilter{TenantID: &tenantID})
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	tenantID := uuid.New()

	// Fill the buffer with concurrent writes
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				TenantID: &tenantID,
				ActorID:  uuid.New(),
				Action:   audit.ActionCreateProject,
			})
		}()
	}
	wg.Wait()

	// Some events may have been dropped (buffer size 1); the publisher
	// must stay usable and never block the emitter.
	err := pub.Emit(context.Background(), audit.Event{
		TenantID: &tenantID,
		ActorID:  uuid.New(),
		Action:   audit.ActionCreateProject,
	})
	assert.NoError(t, err)
}

func TestPublisher_StoreFailureIsAbsorbed(t *testing.T) {
	store := memory.NewInMemoryStore()
	store.FailWith(errors.New("connection refused"))
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	tenantID := uuid.New()
	err := pub.Emit(context.Background(), audit.Event{
		TenantID: &tenantID,
		ActorID:  uuid.New(),
		Action:   audit.ActionUpdateUser,
	})
	assert.NoError(t, err, "async emit must not surface store failures")
}

func TestPublisher_EmitSyncSwallowsFailure(t *testing.T) {
	store := memory.NewInMemoryStore()
	store.FailWith(errors.New("connection refused"))
	pub := NewPublisher(store)

	tenantID := uuid.New()
	// Must not panic or propagate.
	pub.EmitSync(context.Background(), audit.Event{
		TenantID: &tenantID,
		ActorID:  uuid.New(),
		Action:   audit.ActionDeleteProject,
	})
}

func TestPublisher_SetsIDAndTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	tenantID := uuid.New()
	before := time.Now()
	err := pub.Emit(context.Background(), audit.Event{
		TenantID: &tenantID,
		ActorID:  uuid.New(),
		Action:   audit.ActionCreateUser,
	})
	require.NoError(t, err)

	events, err := store.List(context.Background(), audit.ListFilter{TenantID: &tenantID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEqual(t, uuid.Nil, events[0].ID)
	assert.False(t, events[0].CreatedAt.Before(before))
}

// Package audit defines the append-only trail of sensitive mutations.
// Records are emitted from domain logic as a side effect; writing them is
// best-effort and never fails the triggering operation.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is an enumerated verb string describing a recorded mutation.
type Action string

const (
	ActionCreateProject    Action = "CREATE_PROJECT"
	ActionUpdateProject    Action = "UPDATE_PROJECT"
	ActionDeleteProject    Action = "DELETE_PROJECT"
	ActionCreateTask       Action = "CREATE_TASK"
	ActionUpdateTaskStatus Action = "UPDATE_TASK_STATUS"
	ActionCreateUser       Action = "CREATE_USER"
	ActionUpdateUser       Action = "UPDATE_USER"
	ActionUpdateTenant     Action = "UPDATE_TENANT"
)

// Event is a single audit record. TenantID is nil only for actions performed
// from an unscoped super_admin context.
type Event struct {
	ID         uuid.UUID
	TenantID   *uuid.UUID
	ActorID    uuid.UUID
	Action     Action
	EntityType string
	EntityID   string
	IP         string
	CreatedAt  time.Time
}

// ListFilter enumerates the only filterable fields. Keeping the set closed
// means no client-supplied field name ever reaches query assembly.
type ListFilter struct {
	// TenantID narrows to one tenant; nil lists across tenants and is only
	// ever set from an unscoped super_admin context.
	TenantID   *uuid.UUID
	Action     Action
	EntityType string
	Limit      int
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, filter ListFilter) ([]Event, error)
}

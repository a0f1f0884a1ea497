package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
)

// Status is the project lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusOnHold   Status = "on_hold"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusOnHold:
		return true
	}
	return false
}

// Project is always pinned to one tenant. CreatedBy drives the ownership
// rule: a plain user may only mutate projects they created.
type Project struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overview is the listing row: a project joined with its creator's name and
// task progress counts.
type Overview struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedByName      string    `json:"created_by_name"`
	TaskCount          int       `json:"task_count"`
	CompletedTaskCount int       `json:"completed_task_count"`
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "project name is required")
	}
	if r.Status == "" {
		r.Status = string(StatusActive)
	}
	if !Status(r.Status).Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid project status")
	}
	return nil
}

// UpdateRequest carries the mutable project fields. Nil means "leave as is".
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (r *UpdateRequest) Validate() error {
	if r.Name == nil && r.Description == nil && r.Status == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.Name != nil && *r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "project name cannot be empty")
	}
	if r.Status != nil && !Status(*r.Status).Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid project status")
	}
	return nil
}

// ListFilter enumerates the queryable fields for the project listing.
type ListFilter struct {
	Status Status
	Search string
}

package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
)

// Status is the tenant lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

// Tenant is the aggregate root for an organization.
//
// Invariants:
//   - Subdomain is unique and matched case-insensitively at login
//   - Status is either active or suspended
//   - MaxUsers / MaxProjects cap resource creation: once a tenant is at or
//     above a limit, further creation is rejected
//
// Suspension is an immediate security boundary: login for a suspended
// tenant's users fails even though their rows are untouched. Existing tokens
// remain valid until expiry since verification is stateless.
type Tenant struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Subdomain        string    `json:"subdomain"`
	Status           Status    `json:"status"`
	SubscriptionPlan string    `json:"subscription_plan"`
	MaxUsers         int       `json:"max_users"`
	MaxProjects      int       `json:"max_projects"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// Overview is the admin listing row: a tenant plus its user count.
type Overview struct {
	Tenant
	TotalUsers int `json:"total_users"`
}

// Counts summarizes the tenant population for the admin stats endpoint.
type Counts struct {
	Total     int
	Active    int
	Suspended int
}

// AdminStats is the cross-tenant stats payload, super_admin only.
type AdminStats struct {
	TotalTenants     int `json:"total_tenants"`
	ActiveTenants    int `json:"active_tenants"`
	SuspendedTenants int `json:"suspended_tenants"`
	TotalUsers       int `json:"total_users"`
}

// UpdateRequest carries the mutable tenant fields. Nil means "leave as is".
type UpdateRequest struct {
	Status           *Status `json:"status"`
	SubscriptionPlan *string `json:"subscription_plan"`
	MaxUsers         *int    `json:"max_users"`
	MaxProjects      *int    `json:"max_projects"`
}

func (r *UpdateRequest) Validate() error {
	if r.Status == nil && r.SubscriptionPlan == nil && r.MaxUsers == nil && r.MaxProjects == nil {
		return dErrors.New(dErrors.CodeValidation, "no fields to update")
	}
	if r.Status != nil && !r.Status.Valid() {
		return dErrors.New(dErrors.CodeValidation, "invalid tenant status")
	}
	if r.MaxUsers != nil && *r.MaxUsers < 1 {
		return dErrors.New(dErrors.CodeValidation, "max_users must be positive")
	}
	if r.MaxProjects != nil && *r.MaxProjects < 1 {
		return dErrors.New(dErrors.CodeValidation, "max_projects must be positive")
	}
	return nil
}

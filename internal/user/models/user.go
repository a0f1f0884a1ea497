package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

// User belongs to exactly one tenant, except super_admin accounts whose
// TenantID is nil. Email is unique per tenant, not globally.
type User struct {
	ID           uuid.UUID           `json:"id"`
	TenantID     *uuid.UUID          `json:"tenant_id"`
	Email        string              `json:"email"`
	FullName     string              `json:"full_name"`
	PasswordHash string              `json:"-"`
	Role         requestcontext.Role `json:"role"`
	IsActive     bool                `json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
}

// CreateRequest is the payload for adding a user to a tenant. Role defaults
// to "user"; super_admin cannot be provisioned through the API.
type CreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (r *CreateRequest) Validate() error {
	if r.Email == "" || r.Password == "" || r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "email, password and full_name are required")
	}
	if r.Role == "" {
		r.Role = string(requestcontext.RoleUser)
	}
	role := requestcontext.Role(r.Role)
	if role != requestcontext.RoleUser && role != requestcontext.RoleTenantAdmin {
		return dErrors.New(dErrors.CodeValidation, "role must be tenant_admin or user")
	}
	return nil
}

// UpdateRequest carries the mutable user fields. FullName is open to the
// user themself; Role and IsActive only take effect for tenant_admin callers.
type UpdateRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ListFilter enumerates the queryable fields for the user listing. Search
// matches name or email as a case-insensitive substring.
type ListFilter struct {
	Search string
	Role   requestcontext.Role
	Page   int
	Limit  int
}

// Normalize clamps pagination to sane bounds. Limit is capped at 100 so a
// client cannot dump an entire tenant in one request.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

// Page is the user listing response: one page of users plus pagination
// bookkeeping.
type Page struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
	Limit       int `json:"limit"`
}

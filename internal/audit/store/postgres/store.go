package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/audit"
)

// Store persists audit events in the audit_logs table. Rows are append-only;
// nothing in this service updates or deletes them.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_logs (id, tenant_id, user_id, action, entity_type, entity_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var ip any
	if event.IP != "" {
		ip = event.IP
	}
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.TenantID,
		event.ActorID,
		string(event.Action),
		event.EntityType,
		event.EntityID,
		ip,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns matching events newest first. The filter enumerates the only
// queryable fields, so the WHERE clause is assembled from a closed set of
// parameterized predicates.
func (s *Store) List(ctx context.Context, filter audit.ListFilter) ([]audit.Event, error) {
	query := `
		SELECT id, tenant_id, user_id, action, entity_type, entity_id, COALESCE(ip_address, ''), created_at
		FROM audit_logs
	`
	var (
		predicates []string
		args       []any
	)
	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.TenantID != nil {
		predicates = append(predicates, "tenant_id = "+next(*filter.TenantID))
	}
	if filter.Action != "" {
		predicates = append(predicates, "action = "+next(string(filter.Action)))
	}
	if filter.EntityType != "" {
		predicates = append(predicates, "entity_type = "+next(filter.EntityType))
	}
	for i, predicate := range predicates {
		if i == 0 {
			query += " WHERE " + predicate
		} else {
			query += " AND " + predicate
		}
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY created_at DESC LIMIT " + next(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			tenantID *uuid.UUID
			action   string
		)
		err := rows.Scan(
			&event.ID,
			&tenantID,
			&event.ActorID,
			&action,
			&event.EntityType,
			&event.EntityID,
			&event.IP,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		event.TenantID = tenantID
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}
	return events, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/project/models"
	"taskboard/internal/storage"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, tenant_id, name, description, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.TenantID,
		project.Name,
		project.Description,
		string(project.Status),
		project.CreatedBy,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, tenant_id, name, COALESCE(description, ''), status, created_by, created_at, updated_at
		FROM projects WHERE id = $1
	`
	var (
		p      models.Project
		status string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.Status = models.Status(status)
	return &p, nil
}

// List returns a tenant's projects newest first, joined with creator names
// and task progress counts. The filter enumerates the only queryable fields.
func (s *Store) List(ctx context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.Overview, error) {
	where := " WHERE p.tenant_id = $1"
	args := []any{tenantID}
	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		where += " AND p.status = " + next(string(filter.Status))
	}
	if filter.Search != "" {
		where += " AND LOWER(p.name) LIKE " + next("%"+strings.ToLower(filter.Search)+"%")
	}

	query := `
		SELECT p.id, p.name, COALESCE(p.description, ''), p.status, p.created_at,
		       u.full_name AS created_by_name,
		       COUNT(t.id) AS task_count,
		       COUNT(*) FILTER (WHERE t.status = 'completed') AS completed_task_count
		FROM projects p
		JOIN users u ON p.created_by = u.id
		LEFT JOIN tasks t ON t.project_id = p.id` + where + `
		GROUP BY p.id, u.full_name
		ORDER BY p.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var overviews []models.Overview
	for rows.Next() {
		var (
			o      models.Overview
			status string
		)
		err := rows.Scan(
			&o.ID, &o.Name, &o.Description, &status, &o.CreatedAt,
			&o.CreatedByName, &o.TaskCount, &o.CompletedTaskCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		o.Status = models.Status(status)
		overviews = append(overviews, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return overviews, nil
}

func (s *Store) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		project.Description,
		string(project.Status),
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tenant projects: %w", err)
	}
	return count, nil
}

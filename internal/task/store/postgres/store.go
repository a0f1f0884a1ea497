package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskboard/internal/storage"
	"taskboard/internal/task/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const taskColumns = `id, project_id, tenant_id, title, COALESCE(description, ''), status, priority, assigned_to, due_date, created_at, updated_at`

func (s *Store) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, project_id, tenant_id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ProjectID,
		task.TenantID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		task.AssignedTo,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListByProject scopes on both project and tenant. The tenant predicate is
// what stops a guessed project ID from leaking another tenant's tasks.
func (s *Store) ListByProject(ctx context.Context, projectID, tenantID uuid.UUID) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND tenant_id = $2 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, projectID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus flips the workflow state of a task inside the given tenant.
// A task in another tenant reads as not found, never as forbidden.
func (s *Store) UpdateStatus(ctx context.Context, taskID, tenantID uuid.UUID, status models.Status) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + taskColumns
	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, tenantID, string(status)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) CountByTenant(ctx context.Context, tenantID uuid.UUID) (total, completed int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		FROM tasks WHERE tenant_id = $1
	`
	if err := s.db.QueryRowContext(ctx, query, tenantID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("count tenant tasks: %w", err)
	}
	return total, completed, nil
}

func scanTask(scan func(dest ...any) error) (*models.Task, error) {
	var (
		task       models.Task
		assignedTo *uuid.UUID
		dueDate    sql.NullTime
		status     string
		priority   string
	)
	err := scan(
		&task.ID, &task.ProjectID, &task.TenantID, &task.Title, &task.Description,
		&status, &priority, &assignedTo, &dueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	task.Status = models.Status(status)
	task.Priority = models.Priority(priority)
	task.AssignedTo = assignedTo
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	return &task, nil
}

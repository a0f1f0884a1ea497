package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/storage"
	"taskboard/internal/tenant/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const tenantColumns = `id, name, subdomain, status, subscription_plan, max_users, max_projects, created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) FindBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, strings.ToLower(subdomain)))
}

// ListOverviews returns every tenant with its user count, newest first.
// Super admin only; there is no tenant-scoped variant.
func (s *Store) ListOverviews(ctx context.Context) ([]models.Overview, error) {
	query := `
		SELECT t.id, t.name, t.subdomain, t.status, t.subscription_plan,
		       t.max_users, t.max_projects, t.created_at, t.updated_at,
		       COUNT(u.id) AS total_users
		FROM tenants t
		LEFT JOIN users u ON u.tenant_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var overviews []models.Overview
	for rows.Next() {
		var o models.Overview
		err := rows.Scan(
			&o.ID, &o.Name, &o.Subdomain, &o.Status, &o.SubscriptionPlan,
			&o.MaxUsers, &o.MaxProjects, &o.CreatedAt, &o.UpdatedAt,
			&o.TotalUsers,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		overviews = append(overviews, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}
	return overviews, nil
}

func (s *Store) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET status = $2, subscription_plan = $3, max_users = $4, max_projects = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		tenant.ID,
		string(tenant.Status),
		tenant.SubscriptionPlan,
		tenant.MaxUsers,
		tenant.MaxProjects,
		tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountByStatus(ctx context.Context) (models.Counts, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'suspended')
		FROM tenants
	`
	var counts models.Counts
	err := s.db.QueryRowContext(ctx, query).Scan(&counts.Total, &counts.Active, &counts.Suspended)
	if err != nil {
		return models.Counts{}, fmt.Errorf("count tenants: %w", err)
	}
	return counts, nil
}

func (s *Store) scanOne(row *sql.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Subdomain, &t.Status, &t.SubscriptionPlan,
		&t.MaxUsers, &t.MaxProjects, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	return &t, nil
}

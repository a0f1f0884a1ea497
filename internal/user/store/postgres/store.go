package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taskboard/internal/storage"
	"taskboard/internal/user/models"
	"taskboard/pkg/requestcontext"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, tenant_id, email, full_name, password_hash, role, is_active, created_at`

func (s *Store) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, full_name, password_hash, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		string(user.Role),
		user.IsActive,
		user.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) FindByEmailInTenant(ctx context.Context, email string, tenantID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND tenant_id = $2`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email, tenantID))
}

// FindSuperAdminByEmail serves the tenant-less login path. Matching on role
// here means a regular user probing without a subdomain gets the same miss
// as an unknown email.
func (s *Store) FindSuperAdminByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND role = 'super_admin'`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

// List returns one page of a tenant's users, newest first, plus the total
// match count. The filter enumerates the only queryable fields.
func (s *Store) List(ctx context.Context, tenantID uuid.UUID, filter models.ListFilter) ([]models.User, int, error) {
	where := " WHERE tenant_id = $1"
	args := []any{tenantID}
	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Search != "" {
		placeholder := next("%" + filter.Search + "%")
		where += fmt.Sprintf(" AND (full_name ILIKE %s OR email ILIKE %s)", placeholder, placeholder)
	}
	if filter.Role != "" {
		where += " AND role = " + next(string(filter.Role))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM users` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + userColumns + ` FROM users` + where +
		" ORDER BY created_at DESC LIMIT " + next(filter.Limit) + " OFFSET " + next(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func (s *Store) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $2, role = $3, is_active = $4
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, user.ID, user.FullName, string(user.Role), user.IsActive)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tenant users: %w", err)
	}
	return count, nil
}

func (s *Store) CountNonSuperAdmin(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role != 'super_admin'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *Store) scanOne(row *sql.Row) (*models.User, error) {
	user, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return user, err
}

func scanUser(scan func(dest ...any) error) (*models.User, error) {
	var (
		user     models.User
		tenantID *uuid.UUID
		role     string
	)
	err := scan(
		&user.ID, &tenantID, &user.Email, &user.FullName,
		&user.PasswordHash, &role, &user.IsActive, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.TenantID = tenantID
	user.Role = requestcontext.Role(role)
	return &user, nil
}

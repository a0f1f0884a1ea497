package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/platform/metrics"
	"taskboard/internal/storage"
	tenantmodels "taskboard/internal/tenant/models"
	usermodels "taskboard/internal/user/models"
	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
	"taskboard/pkg/secrets"
)

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*usermodels.User, error)
	FindByEmailInTenant(ctx context.Context, email string, tenantID uuid.UUID) (*usermodels.User, error)
	FindSuperAdminByEmail(ctx context.Context, email string) (*usermodels.User, error)
}

type TenantStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*tenantmodels.Tenant, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*tenantmodels.Tenant, error)
}

// TokenIssuer mints signed bearer tokens for verified identities.
type TokenIssuer interface {
	Issue(claims requestcontext.Claims) (string, error)
	TTL() time.Duration
}

type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenant_subdomain"`
}

type LoginResult struct {
	User      UserSummary `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
}

type UserSummary struct {
	ID       uuid.UUID           `json:"id"`
	Email    string              `json:"email"`
	Role     requestcontext.Role `json:"role"`
	TenantID *uuid.UUID          `json:"tenant_id"`
}

// Profile is the /auth/me payload. Tenant is nil for super_admin.
type Profile struct {
	ID        uuid.UUID            `json:"id"`
	Email     string               `json:"email"`
	FullName  string               `json:"full_name"`
	Role      requestcontext.Role  `json:"role"`
	IsActive  bool                 `json:"is_active"`
	CreatedAt time.Time            `json:"created_at"`
	Tenant    *tenantmodels.Tenant `json:"tenant"`
}

type Service struct {
	users   UserStore
	tenants TenantStore
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users UserStore, tenants TenantStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tenants: tenants,
		tokens:  tokens,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates a credential pair and returns a signed token.
//
// The subdomain field selects between two paths. Without it only
// super_admin accounts are considered, so a tenant user probing without a
// subdomain gets the same "invalid credentials" as an unknown email. With it
// the user is resolved inside that tenant, and a suspended tenant blocks the
// login before the password is even checked.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	var (
		user *usermodels.User
		err  error
	)
	if strings.TrimSpace(req.TenantSubdomain) == "" {
		user, err = s.users.FindSuperAdminByEmail(ctx, req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, s.loginFailed(ctx, req.Email, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find super admin")
		}
	} else {
		subdomain := strings.TrimSpace(req.TenantSubdomain)
		tenant, err := s.tenants.FindBySubdomain(ctx, subdomain)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, s.loginFailed(ctx, req.Email, dErrors.New(dErrors.CodeForbidden, "invalid tenant"))
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find tenant")
		}

		user, err = s.users.FindByEmailInTenant(ctx, req.Email, tenant.ID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, s.loginFailed(ctx, req.Email, dErrors.New(dErrors.CodeForbidden, "invalid tenant"))
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
		}

		// Suspension blocks login immediately; already-issued tokens stay
		// valid until expiry.
		if !tenant.IsActive() {
			return nil, s.loginFailed(ctx, req.Email, dErrors.New(dErrors.CodeForbidden, "tenant inactive"))
		}
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		return nil, s.loginFailed(ctx, req.Email, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials"))
	}

	token, err := s.tokens.Issue(requestcontext.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "issue token")
	}

	if s.metrics != nil {
		s.metrics.LoginsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID, "role", user.Role)

	return &LoginResult{
		User: UserSummary{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			TenantID: user.TenantID,
		},
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}

// Me returns the caller's profile, joined with their tenant unless the
// caller is super_admin.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	claims, ok := requestcontext.Identity(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find user")
	}

	profile := &Profile{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
	if user.Role != requestcontext.RoleSuperAdmin && user.TenantID != nil {
		tenant, err := s.tenants.FindByID(ctx, *user.TenantID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant not found")
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find tenant")
		}
		profile.Tenant = tenant
	}
	return profile, nil
}

func (s *Service) loginFailed(ctx context.Context, email string, err error) error {
	if s.metrics != nil {
		s.metrics.LoginFailuresTotal.Inc()
	}
	s.logger.WarnContext(ctx, "login failed", "email", email, "reason", dErrors.CodeOf(err))
	return err
}

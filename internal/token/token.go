// Package token issues and verifies the signed session tokens that carry
// identity claims. Verification is stateless: there is no server-side session
// store or revocation list, so tokens stay valid until expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "taskboard/pkg/domain-errors"
	"taskboard/pkg/requestcontext"
)

// Claims is the JWT payload. JSON keys are camelCase for compatibility with
// tokens issued before this service existed; tenantId is absent exactly for
// super_admin tokens.
type Claims struct {
	UserID   string  `json:"userId"`
	TenantID *string `json:"tenantId"`
	Role     string  `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies access tokens with a process-wide HS256 key.
// The key is injected once at startup and never mutated.
type Service struct {
	signingKey []byte
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		ttl:        ttl,
	}
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue produces a signed token for the given identity.
func (s *Service) Issue(identity requestcontext.Claims) (string, error) {
	var tenantID *string
	if identity.TenantID != nil {
		v := identity.TenantID.String()
		tenantID = &v
	}

	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   identity.UserID.String(),
		TenantID: tenantID,
		Role:     string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// Verify validates signature and expiry and decodes the identity claims.
// Policy decisions (role, tenant state) are not made here; a well-formed
// token for a later-suspended tenant still verifies.
func (s *Service) Verify(tokenString string) (requestcontext.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return decodeClaims(claims)
}

func decodeClaims(claims *Claims) (requestcontext.Claims, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	role := requestcontext.Role(claims.Role)
	if !role.Valid() {
		return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	var tenantID *uuid.UUID
	if claims.TenantID != nil && *claims.TenantID != "" {
		parsed, err := uuid.Parse(*claims.TenantID)
		if err != nil {
			return requestcontext.Claims{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
		}
		tenantID = &parsed
	}

	return requestcontext.Claims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	}, nil
}

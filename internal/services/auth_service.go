package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/otcheredev/clinic-management/internal/cache"
	"github.com/otcheredev/clinic-management/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for a bad email/password combination or
// a deactivated account. Deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

const callerCacheTTL = 5 * time.Minute

func callerCacheKey(userID uuid.UUID) string {
	return cache.CacheKey("caller", userID.String())
}

// AuthService handles login, token issuance and caller identity resolution
type AuthService struct {
	userRepo  UserStore
	cache     cache.Cache
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserStore, cache cache.Cache, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Login verifies credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		ClinicID: user.ClinicID,
		BranchID: user.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &models.LoginResponse{Token: token, User: user}, nil
}

// ParseToken validates a signed token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ResolveCaller loads the current user row for a token subject, through the
// identity cache. The row, not the token, is authoritative for role, tenant
// attachment and active status, so revocations take effect within the TTL.
func (s *AuthService) ResolveCaller(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	key := callerCacheKey(userID)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var user models.User
		if err := json.Unmarshal(data, &user); err == nil {
			return &user, nil
		}
		log.Warn().Str("key", key).Msg("Dropping undecodable cached identity")
		s.cache.Delete(ctx, key)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.cache.Set(ctx, key, data, callerCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache caller identity")
		}
	}

	return user, nil
}

// ChangePassword changes the authenticated user's own password
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.HashedPassword = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.cache.Delete(ctx, callerCacheKey(userID))
	return nil
}

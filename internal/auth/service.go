package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/haulport/logistics-backend/internal/drivers"
	"github.com/haulport/logistics-backend/pkg/common"
	"github.com/haulport/logistics-backend/pkg/config"
	"github.com/haulport/logistics-backend/pkg/logger"
	"github.com/haulport/logistics-backend/pkg/middleware"
)

// Service handles registration and token issuance
type Service struct {
	repo RepositoryInterface
	jwt  config.JWTConfig
}

// NewService creates a new auth service
func NewService(repo RepositoryInterface, jwtCfg config.JWTConfig) *Service {
	return &Service{repo: repo, jwt: jwtCfg}
}

// Register creates an account. Driver accounts get a driver row with KYC
// pending; they cannot claim orders until KYC is approved.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req.Role == RoleDriver && req.DriverRole == "" {
		return nil, common.NewBadRequestError("driver_role is required for driver accounts", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to hash password")
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var driver *drivers.Driver
	if req.Role == RoleDriver {
		driver = &drivers.Driver{
			ID:           uuid.New(),
			UserID:       user.ID,
			Role:         req.DriverRole,
			VehiclePlate: &req.VehiclePlate,
			Availability: drivers.AvailabilityOffline,
			KYCStatus:    drivers.KYCStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	if err := s.repo.CreateUser(ctx, user, driver); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, common.NewConflictError("email already registered")
		}
		return nil, common.NewInternalServerError("failed to create user")
	}

	logger.WithContext(ctx).Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Login checks credentials and issues a signed token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get user")
	}
	// Same error for unknown email and bad password
	if user == nil || !user.IsActive {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid credentials")
	}

	expiresAt := time.Now().Add(time.Duration(s.jwt.Expiration) * time.Hour)
	claims := &middleware.Claims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return nil, common.NewInternalServerError("failed to sign token")
	}

	_ = s.repo.TouchLastLogin(ctx, user.ID, time.Now())

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// GetProfile returns the caller's account
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to get user")
	}
	if user == nil {
		return nil, common.NewNotFoundError("user not found", nil)
	}
	return user, nil
}

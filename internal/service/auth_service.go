package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/bloodbank-service/internal/auth"
	"github.com/spec-kit/bloodbank-service/internal/config"
	"github.com/spec-kit/bloodbank-service/internal/domain"
	"github.com/spec-kit/bloodbank-service/internal/eligibility"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	apperrors "github.com/spec-kit/bloodbank-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	store            repository.Store
	tokenMgr         *auth.TokenManager
	bcryptCost       int
	allowAdminSignup bool
	logger           *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// RegisterInput describes a new account. Donor is required for the donor role
// and ignored otherwise.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Donor    *DonorRegistration
}

// DonorRegistration carries the health attributes screened at sign-up.
type DonorRegistration struct {
	BloodGroup      domain.BloodGroup
	Age             int
	Weight          float64
	HemoglobinLevel float64
	Diseases        []string
	Location        *domain.GeoPoint
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		store:            deps.Store,
		tokenMgr:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:       cfg.Auth.BcryptCost,
		allowAdminSignup: cfg.Auth.AllowAdminSignup,
		logger:           orNop(deps.Logger),
	}
}

// TokenManager exposes the token manager for middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates the account and, for donors, the screened profile in one
// transaction. An ineligible donor leaves nothing behind. Admin accounts are
// refused unless admin sign-up is enabled.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.DonorProfile, error) {
	if input.Role == domain.RoleAdmin && !s.allowAdminSignup {
		return nil, nil, apperrors.NewForbidden("admin accounts cannot be self-registered")
	}
	return s.createAccount(ctx, input)
}

// EnsureAdmin creates the bootstrap administrator unless the email is
// already registered. An existing non-admin account with that email is a conflict.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	existing, err := s.store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	switch {
	case err == nil && existing.Role == domain.RoleAdmin:
		return existing, nil
	case err == nil:
		return nil, apperrors.NewConflict("email registered with another role", map[string]any{"email": existing.Email})
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	user, _, err := s.createAccount(ctx, RegisterInput{Name: name, Email: email, Password: password, Role: domain.RoleAdmin})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bootstrap admin created", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) createAccount(ctx context.Context, input RegisterInput) (*domain.User, *domain.DonorProfile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" || email == "" || input.Password == "" {
		return nil, nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if !input.Role.Valid() {
		return nil, nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	var profile *domain.DonorProfile
	if input.Role == domain.RoleDonor {
		var err error
		if profile, err = screenDonor(input.Donor); err != nil {
			return nil, nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, nil, apperrors.NewValidationError("password must be at most 72 bytes", map[string]any{"password": "max"})
	}
	if err != nil {
		return nil, nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Users.GetByEmail(ctx, email); err == nil {
			return repository.ErrDuplicate
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		return repos.Donors.Create(ctx, profile)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, profile, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func screenDonor(reg *DonorRegistration) (*domain.DonorProfile, error) {
	if reg == nil {
		return nil, apperrors.NewValidationError("donor details are required", nil)
	}
	if !reg.BloodGroup.Valid() {
		return nil, apperrors.NewValidationError("invalid blood group", map[string]any{"bloodGroup": reg.BloodGroup})
	}
	if reg.Location != nil {
		if err := reg.Location.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"location": "invalid"})
		}
	}

	diseases := eligibility.NormalizeDiseases(reg.Diseases)
	result := eligibility.Registration.Evaluate(eligibility.Input{
		Age:             reg.Age,
		Weight:          reg.Weight,
		HemoglobinLevel: reg.HemoglobinLevel,
		Diseases:        diseases,
	})
	if !result.Eligible {
		return nil, apperrors.NewNotEligible(result.Reason)
	}

	return &domain.DonorProfile{
		BloodGroup:      reg.BloodGroup,
		Age:             reg.Age,
		Weight:          reg.Weight,
		HemoglobinLevel: reg.HemoglobinLevel,
		Diseases:        diseases,
		Eligible:        true,
		Location:        reg.Location,
	}, nil
}

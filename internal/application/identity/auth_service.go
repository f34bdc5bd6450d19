package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
	"github.com/mfg/backend/internal/domain/shared"
	"github.com/mfg/backend/internal/domain/workflow"
	"github.com/mfg/backend/internal/infrastructure/auth"
	"github.com/mfg/backend/internal/infrastructure/persistence/tenant"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo     identity.UserRepository
	companyRepo  identity.CompanyRepository
	workflowRepo workflow.Repository
	jwtService   *auth.JWTService
	blacklist    auth.TokenBlacklist
	logger       *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	companyRepo identity.CompanyRepository,
	workflowRepo workflow.Repository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		companyRepo:  companyRepo,
		workflowRepo: workflowRepo,
		jwtService:   jwtService,
		blacklist:    blacklist,
		logger:       logger,
	}
}

// Login authenticates a user and returns a token pair
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Warn("Login attempt for unknown email", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", input.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	company, err := s.companyRepo.FindByGUID(ctx, user.CompanyGUID)
	if err != nil {
		s.logger.Error("Company lookup failed during login",
			zap.String("company_guid", user.CompanyGUID.String()), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to resolve company")
	}
	if !company.IsActive {
		s.logger.Warn("Login attempt for inactive company",
			zap.String("company_guid", company.GUID.String()))
		return nil, shared.NewDomainError("COMPANY_INACTIVE", "Company has been deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: user.CompanyGUID,
		UserGUID:    user.GUID,
		Email:       user.Email,
		Role:        string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.recordLogin(ctx, user, company)

	s.logger.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("user_guid", user.GUID.String()),
		zap.String("company_guid", user.CompanyGUID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		User: UserInfo{
			GUID:        user.GUID,
			CompanyGUID: user.CompanyGUID,
			Email:       user.Email,
			Name:        user.Name,
			Surname:     user.Surname,
			Role:        user.Role,
		},
	}, nil
}

// recordLogin writes the login audit entry. A failure here is logged but
// does not fail the login itself.
func (s *AuthService) recordLogin(ctx context.Context, user *identity.User, company *identity.Company) {
	tc := tenant.Context{
		CompanyGUID: user.CompanyGUID,
		UserGUID:    &user.GUID,
		UserName:    user.FullName(),
		Role:        string(user.Role),
	}
	entry := workflow.NewEntry(company.GUID, company.Name, workflow.ActionLogin, user.Email).
		WithUser(user.GUID, user.FullName())
	if err := s.workflowRepo.Create(tenant.IntoContext(ctx, tc), entry); err != nil {
		s.logger.Error("Failed to record login audit entry", zap.Error(err))
	}
}

// Refresh validates a refresh token and rotates the token pair. The used
// refresh token is blacklisted for its remaining lifetime.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		switch err {
		case auth.ErrExpiredToken:
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		default:
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Blacklist check failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify token")
	}
	if revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	userGUID, err := uuid.Parse(claims.UserGUID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user identifier in token")
	}

	user, err := s.userRepo.FindByGUID(ctx, userGUID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_guid", claims.UserGUID))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.IsActive {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		CompanyGUID: user.CompanyGUID,
		UserGUID:    user.GUID,
		Email:       user.Email,
		Role:        string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to rotate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	if ttl := claims.GetRemainingTTL(); ttl > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
			s.logger.Error("Failed to blacklist used refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token pair rotated", zap.String("user_guid", user.GUID.String()))

	return &RefreshResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := time.Until(input.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.JTI, ttl); err != nil {
		s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}
	return nil
}

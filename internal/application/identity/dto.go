package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/mfg/backend/internal/domain/identity"
)

// LoginInput contains login credentials
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the user payload returned alongside tokens
type UserInfo struct {
	GUID        uuid.UUID     `json:"guid"`
	CompanyGUID uuid.UUID     `json:"company_guid"`
	Email       string        `json:"email"`
	Name        string        `json:"name"`
	Surname     string        `json:"surname"`
	Role        identity.Role `json:"role"`
}

// LoginResult contains tokens and user info after a successful login
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// RefreshInput contains the refresh token
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResult contains the rotated token pair
type RefreshResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	JTI       string
	ExpiresAt time.Time
}

// CompanyInfo is the company payload for listings
type CompanyInfo struct {
	GUID      uuid.UUID `json:"guid"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func companyInfo(c *identity.Company) CompanyInfo {
	return CompanyInfo{
		GUID:      c.GUID,
		Name:      c.Name,
		ShortName: c.ShortName,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

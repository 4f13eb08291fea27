package dto

import (
	"time"

	"github.com/google/uuid"

	"appointer/infras/jwt"
	userModel "appointer/internal/domains/user/model"
	"appointer/shared/constant"
	gModel "appointer/shared/model"
	"appointer/shared/timezone"
)

// RegisterRequest is the public sign-up. Self-registered accounts are always
// customers; administrators are created by other administrators.
type RegisterRequest struct {
	Email    string  `json:"email"               validate:"required,email,max=255"`
	Password string  `json:"password"            validate:"required,min=8,max=72"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=30"`
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	id := uuid.NewString()

	return userModel.User{
		ID:       id,
		Email:    r.Email,
		Password: hashedPassword,
		Role:     constant.RoleCustomer,
		FullName: r.FullName,
		Phone:    r.Phone,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), id),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (t *TokenResponse) FromTokenPair(pair *jwt.TokenPair) {
	t.AccessToken = pair.AccessToken
	t.RefreshToken = pair.RefreshToken
	t.ExpiresIn = pair.ExpiresIn
}

type LoginResponse struct {
	TokenResponse
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password"`
}

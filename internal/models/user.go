package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/lib/pq"
)

const DefaultAvatar = "https://icon-library.com/images/anonymous-avatar-icon/anonymous-avatar-icon-25.jpg"

// User is the durable identity record. Email is lowercased before any lookup
// or write; the unique index is the backstop for concurrent registrations.
type User struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Name       string         `json:"name" gorm:"not null"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"not null"`
	Avatar     string         `json:"avatar"`
	Bio        string         `json:"bio"`
	IsVerified bool           `json:"isVerified" gorm:"not null;default:false"`
	IsOnline   bool           `json:"isOnline" gorm:"not null;default:false"`
	LastSeen   time.Time      `json:"lastSeen"`
	PushTokens pq.StringArray `json:"-" gorm:"type:text[]"`
	CreatedAt  time.Time      `json:"createdAt" gorm:"not null"`
	UpdatedAt  time.Time      `json:"updatedAt" gorm:"not null"`
}

// RefreshToken is an opaque, single-use session continuation credential.
// The token string itself is random and carries no user-derived data.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedIP string    `json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest serves both the signup flow (default) and the
// forgot-password flow (flow = "forgot-password").
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=4,numeric"`
	Flow  string `json:"flow" binding:"omitempty,oneof=signup forgot-password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=2,max=100"`
	Avatar *string `json:"avatar" binding:"omitempty,url"`
	Bio    *string `json:"bio" binding:"omitempty,max=150"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (User) TableName() string {
	return "users"
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"pingly-server/internal/config"
	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is what a verified access token proves. The profile fields are
// a snapshot taken at issue time; they go stale until the token is re-issued,
// which is bounded by the access TTL.
type TokenClaims struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	Avatar     string
	IsVerified bool
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(cfg *config.Config) (*TokenService, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &TokenService{
		secret:     []byte(cfg.JWT.Secret),
		accessTTL:  cfg.JWT.AccessTokenTTL,
		refreshTTL: cfg.JWT.RefreshTokenTTL,
	}, nil
}

func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *TokenService) CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CreateAccessToken issues a short-lived HS256 token carrying the user id
// plus a denormalized profile snapshot for fast client display.
func (s *TokenService) CreateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": user.ID.String(),
		"user": map[string]any{
			"id":         user.ID.String(),
			"name":       user.Name,
			"email":      user.Email,
			"avatar":     user.Avatar,
			"isVerified": user.IsVerified,
		},
		"exp":  now.Add(s.accessTTL).Unix(),
		"iat":  now.Unix(),
		"type": "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken is a stateless check: signature and expiry only, no
// store lookup.
func (s *TokenService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userIDStr, ok := claims["userId"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.FromString(userIDStr)
	if err != nil {
		return nil, ErrInvalidToken
	}

	decoded := &TokenClaims{UserID: userID}
	if snapshot, ok := claims["user"].(map[string]any); ok {
		decoded.Name, _ = snapshot["name"].(string)
		decoded.Email, _ = snapshot["email"].(string)
		decoded.Avatar, _ = snapshot["avatar"].(string)
		decoded.IsVerified, _ = snapshot["isVerified"].(bool)
	}
	return decoded, nil
}

// GenerateRefreshToken returns a 64-char random hex string, independent of
// any user data.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOTP returns a 4-digit code. Codes may collide across users; only
// one is active per email because of the cache keying.
func (s *TokenService) GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// HashOTP hashes a code so the raw digits are never stored.
func (s *TokenService) HashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

func (s *TokenService) VerifyOTP(otp, storedHash string) bool {
	return s.HashOTP(otp) == storedHash
}

package services_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingly-server/internal/config"
	"pingly-server/internal/models"
	"pingly-server/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Auth: config.AuthConfig{
			OTPTTL:     10 * time.Minute,
			PendingTTL: 10 * time.Minute,
			ResetTTL:   10 * time.Minute,
		},
	}
}

func newTokenService(t *testing.T, cfg *config.Config) *services.TokenService {
	t.Helper()
	tok, err := services.NewTokenService(cfg)
	require.NoError(t, err)
	return tok
}

func testUser() *models.User {
	return &models.User{
		ID:         uuid.Must(uuid.NewV4()),
		Name:       "Alice",
		Email:      "alice@example.com",
		Avatar:     models.DefaultAvatar,
		IsVerified: true,
	}
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.Secret = ""
	_, err := services.NewTokenService(cfg)
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tok := newTokenService(t, testConfig())
	user := testUser()

	token, err := tok.CreateAccessToken(user)
	require.NoError(t, err)

	claims, err := tok.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsVerified)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	tok := newTokenService(t, testConfig())
	user := testUser()

	token, err := tok.CreateAccessToken(user)
	require.NoError(t, err)

	other := testConfig()
	other.JWT.Secret = "another-secret"
	otherTok := newTokenService(t, other)

	_, err = otherTok.ValidateAccessToken(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAccessTokenRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenTTL = -time.Minute
	tok := newTokenService(t, cfg)

	token, err := tok.CreateAccessToken(testUser())
	require.NoError(t, err)

	_, err = tok.ValidateAccessToken(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAccessTokenRejectsGarbage(t *testing.T) {
	tok := newTokenService(t, testConfig())
	_, err := tok.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestGenerateRefreshTokenIsOpaqueAndUnique(t *testing.T) {
	tok := newTokenService(t, testConfig())

	a, err := tok.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := tok.GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	// an opaque token must not parse as a JWT
	_, err = tok.ValidateAccessToken(a)
	assert.Error(t, err)
}

func TestGenerateOTPFourDigits(t *testing.T) {
	tok := newTokenService(t, testConfig())
	for i := 0; i < 50; i++ {
		otp, err := tok.GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 4)
		require.Regexp(t, `^\d{4}$`, otp)
	}
}

func TestOTPHashVerify(t *testing.T) {
	tok := newTokenService(t, testConfig())
	hash := tok.HashOTP("1234")

	assert.NotEqual(t, "1234", hash)
	assert.True(t, tok.VerifyOTP("1234", hash))
	assert.False(t, tok.VerifyOTP("4321", hash))
}

func TestPasswordHashCheck(t *testing.T) {
	tok := newTokenService(t, testConfig())

	hash, err := tok.HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)
	assert.True(t, tok.CheckPassword("s3cret-password", hash))
	assert.False(t, tok.CheckPassword("wrong", hash))
}

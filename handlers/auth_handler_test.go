package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pingly-server/internal/cache"
	"pingly-server/internal/config"
	"pingly-server/internal/middleware"
	"pingly-server/internal/mocks"
	"pingly-server/internal/models"
	"pingly-server/internal/services"
)

type authEnv struct {
	users  *mocks.UserStoreMock
	tokens *mocks.RefreshTokenStoreMock
	mailer *mocks.MailerMock
	tok    *services.TokenService
	router *gin.Engine
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	cfg := &config.Config{
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

	env := &authEnv{
		users:  new(mocks.UserStoreMock),
		tokens: new(mocks.RefreshTokenStoreMock),
		mailer: new(mocks.MailerMock),
	}

	sessionCache := cache.NewMemory()
	t.Cleanup(func() { sessionCache.Close() })

	tok, err := services.NewTokenService(cfg)
	require.NoError(t, err)
	env.tok = tok

	svc := services.NewAuthService(env.users, env.tokens, sessionCache, tok, env.mailer, cfg)
	handler := NewAuthHandler(svc)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/verify-otp", handler.VerifyOTP)
		auth.POST("/login", handler.Login)
		auth.POST("/refresh-token", handler.RefreshToken)
		auth.POST("/forgot-password", handler.ForgotPassword)
		auth.POST("/reset-password", handler.ResetPassword)
	}
	authed := r.Group("/api/auth", middleware.Auth(tok))
	{
		authed.POST("/logout", handler.Logout)
		authed.GET("/me", handler.Me)
		authed.PUT("/profile", handler.UpdateProfile)
	}
	env.router = r
	return env
}

func (env *authEnv) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestSignupEndToEnd(t *testing.T) {
	env := newAuthEnv(t)

	env.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, nil).Once()
	var otp string
	env.mailer.On("SendOTP", "alice@example.com", "Alice", mock.Anything).
		Run(func(args mock.Arguments) { otp = args.String(2) }).
		Return(nil).Once()

	rec := env.do(http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, otp, 4)

	var created *models.User
	env.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.User) }).
		Return(nil).Once()
	env.tokens.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	rec = env.do(http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"otp":   otp,
		"flow":  "signup",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var session models.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.NotEmpty(t, session.AccessToken)
	assert.Len(t, session.RefreshToken, 64)
	assert.True(t, session.User.IsVerified)

	// the hash never leaves the server
	assert.NotContains(t, rec.Body.String(), created.Password)

	// the fresh token works against a protected route
	env.users.On("GetByID", mock.Anything, created.ID).Return(created, nil).Once()
	rec = env.do(http.MethodGet, "/api/auth/me", nil, map[string]string{
		"Authorization": "Bearer " + session.AccessToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), created.Password)
}

func TestRegisterConflict(t *testing.T) {
	env := newAuthEnv(t)

	env.users.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{ID: uuid.Must(uuid.NewV4()), Email: "taken@example.com", IsVerified: true}, nil).Once()

	rec := env.do(http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Bob",
		"email":    "taken@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	env := newAuthEnv(t)

	cases := []gin.H{
		{"email": "a@b.c", "password": "password123"},             // no name
		{"name": "A", "email": "not-an-email", "password": "password123"},
		{"name": "A", "email": "a@b.c", "password": "short"},
	}
	for _, body := range cases {
		rec := env.do(http.MethodPost, "/api/auth/register", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"otp":   "0000",
		"flow":  "signup",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginUnknownAndWrongPasswordLookAlike(t *testing.T) {
	env := newAuthEnv(t)

	hash, err := env.tok.HashPassword("password123")
	require.NoError(t, err)
	user := &models.User{ID: uuid.Must(uuid.NewV4()), Email: "alice@example.com", Password: hash}

	env.users.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil).Once()
	wrongPassword := env.do(http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	}, nil)

	env.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil).Once()
	unknownEmail := env.do(http.MethodPost, "/api/auth/login", gin.H{
		"email": "ghost@example.com", "password": "wrong-password",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestRefreshMissingToken(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/refresh-token", gin.H{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshInvalidToken(t *testing.T) {
	env := newAuthEnv(t)

	env.tokens.On("Consume", mock.Anything, "bogus").Return(nil, nil).Once()

	rec := env.do(http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": "bogus"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshReturnsNewPair(t *testing.T) {
	env := newAuthEnv(t)

	user := &models.User{ID: uuid.Must(uuid.NewV4()), Email: "alice@example.com"}
	record := &models.RefreshToken{UserID: user.ID, Token: "current", ExpiresAt: time.Now().Add(time.Hour)}

	env.tokens.On("Consume", mock.Anything, "current").Return(record, nil).Once()
	env.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	env.tokens.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	rec := env.do(http.MethodPost, "/api/auth/refresh-token", gin.H{"refreshToken": "current"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair models.TokenPair
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pair))
	assert.NotEqual(t, "current", pair.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestForgotPasswordIsGeneric(t *testing.T) {
	env := newAuthEnv(t)

	env.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, nil).Once()
	unknown := env.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ghost@example.com"}, nil)

	env.users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&models.User{ID: uuid.Must(uuid.NewV4()), Email: "alice@example.com"}, nil).Once()
	env.mailer.On("SendOTP", "alice@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	known := env.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "alice@example.com"}, nil)

	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, unknown.Body.String(), known.Body.String())
}

func TestResetPasswordWithoutRequest(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/reset-password", gin.H{
		"email":       "alice@example.com",
		"newPassword": "new-password-1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.do(http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"pingly-server/internal/cache"
	"pingly-server/internal/config"
	"pingly-server/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// one sentinel for both unknown email and wrong password, so the two
	// cases are indistinguishable to a caller probing for accounts
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidOTP          = errors.New("invalid or expired code")
	ErrRegistrationExpired = errors.New("registration session expired, please sign up again")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrNoResetRequest      = errors.New("no pending password reset")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoFields            = errors.New("no fields to update")
)

const (
	otpKeyPrefix     = "otp:"
	pendingKeyPrefix = "pending-registration:"
	resetKeyPrefix   = "reset:"
)

const (
	FlowSignup         = "signup"
	FlowForgotPassword = "forgot-password"
)

// pendingRegistration holds the not-yet-persisted user until the OTP confirms
// control of the email. No durable row exists before that.
type pendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type AuthService struct {
	users  UserStore
	tokens RefreshTokenStore
	cache  cache.Cache
	tok    *TokenService
	mailer Mailer
	cfg    *config.Config
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, sessionCache cache.Cache, tok *TokenService, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		cache:  sessionCache,
		tok:    tok,
		mailer: mailer,
		cfg:    cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stashes the registration in the session cache and emails an OTP.
// Nothing durable is written; the user row is created at OTP verification.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) error {
	email := normalizeEmail(req.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsVerified {
			return ErrEmailTaken
		}
		// stale unverified row from the legacy flow, discard so the retry
		// can proceed
		if err := s.users.DeleteUnverifiedByEmail(ctx, email); err != nil {
			return err
		}
	}

	passwordHash, err := s.tok.HashPassword(req.Password)
	if err != nil {
		return err
	}

	pending := pendingRegistration{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: passwordHash,
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, pendingKeyPrefix+email, string(payload), s.cfg.Auth.PendingTTL); err != nil {
		return err
	}

	return s.sendOTP(ctx, email, pending.Name)
}

func (s *AuthService) sendOTP(ctx context.Context, email, name string) error {
	otp, err := s.tok.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, otpKeyPrefix+email, s.tok.HashOTP(otp), s.cfg.Auth.OTPTTL); err != nil {
		return err
	}
	return s.mailer.SendOTP(email, name, otp)
}

// consumeOTP checks the code against the cached hash and deletes it on
// success (single use).
func (s *AuthService) consumeOTP(ctx context.Context, email, otp string) error {
	storedHash, ok, err := s.cache.Get(ctx, otpKeyPrefix+email)
	if err != nil {
		return err
	}
	if !ok || !s.tok.VerifyOTP(otp, storedHash) {
		return ErrInvalidOTP
	}
	return s.cache.Delete(ctx, otpKeyPrefix+email)
}

// VerifySignupOTP completes registration: consumes the OTP, promotes the
// pending payload to a durable verified user and issues a session.
func (s *AuthService) VerifySignupOTP(ctx context.Context, email, otp, ip string) (*models.AuthResponse, error) {
	email = normalizeEmail(email)
	if err := s.consumeOTP(ctx, email, otp); err != nil {
		return nil, err
	}

	payload, ok, err := s.cache.Get(ctx, pendingKeyPrefix+email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRegistrationExpired
	}
	var pending pendingRegistration
	if err := json.Unmarshal([]byte(payload), &pending); err != nil {
		return nil, ErrRegistrationExpired
	}
	_ = s.cache.Delete(ctx, pendingKeyPrefix+email)

	user := &models.User{
		ID:         uuid.Must(uuid.NewV4()),
		Name:       pending.Name,
		Email:      email,
		Password:   pending.PasswordHash,
		Avatar:     models.DefaultAvatar,
		Bio:        "Hey there! I'm using Pingly",
		IsVerified: true,
		IsOnline:   true,
		LastSeen:   time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// two verification calls racing: the unique email index rejects the
		// loser, reuse the winner's row
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, ErrRegistrationExpired
			}
		} else {
			return nil, err
		}
	}

	pair, err := s.issueSession(ctx, user, ip)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         *user,
	}, nil
}

// VerifyResetOTP consumes the OTP for the forgot-password flow and records a
// short-lived reset authorization. No tokens are issued here; the client
// proceeds to ResetPassword.
func (s *AuthService) VerifyResetOTP(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	if err := s.consumeOTP(ctx, email, otp); err != nil {
		return err
	}
	return s.cache.Set(ctx, resetKeyPrefix+email, "1", s.cfg.Auth.ResetTTL)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, ip string) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.tok.CheckPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.users.SetOnline(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.IsOnline = true
	user.LastSeen = time.Now()

	pair, err := s.issueSession(ctx, user, ip)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         *user,
	}, nil
}

// Refresh rotates the presented token: a single atomic consume invalidates
// it, then a fresh pair is issued for the same owner. A token that loses the
// consume race, is unknown, or is past expiry is rejected the same way.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (*models.TokenPair, error) {
	rt, err := s.tokens.Consume(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if rt == nil || time.Now().After(rt.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueSession(ctx, user, ip)
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	if refreshToken != "" {
		if err := s.tokens.DeleteByToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	return s.users.SetOnline(ctx, userID, false)
}

// ForgotPassword responds identically whether or not the email is
// registered; the OTP is generated and sent only on a real match.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	if err := s.sendOTP(ctx, email, user.Name); err != nil {
		// the generic response stands either way
		log.Printf("forgot-password: failed to send otp to %s: %v", email, err)
	}
	return nil
}

// ResetPassword consumes the reset authorization recorded by VerifyResetOTP,
// rehashes the password and revokes every outstanding refresh token.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)

	_, ok, err := s.cache.Get(ctx, resetKeyPrefix+email)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoResetRequest
	}
	_ = s.cache.Delete(ctx, resetKeyPrefix+email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNoResetRequest
	}

	passwordHash, err := s.tok.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}
	return s.tokens.DeleteByUserID(ctx, user.ID)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if len(updates) == 0 {
		return nil, ErrNoFields
	}

	if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.Me(ctx, userID)
}

// SweepExpiredTokens runs the background refresh-token sweep until the
// context is cancelled.
func (s *AuthService) SweepExpiredTokens(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			removed, err := s.tokens.DeleteExpired(ctx)
			if err != nil {
				log.Printf("refresh token sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("refresh token sweep removed %d expired tokens", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *AuthService) issueSession(ctx context.Context, user *models.User, ip string) (*models.TokenPair, error) {
	accessToken, err := s.tok.CreateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tok.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	record := &models.RefreshToken{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.tok.RefreshTTL()),
		CreatedIP: ip,
		CreatedAt: time.Now(),
	}
	if err := s.tokens.Save(ctx, record); err != nil {
		return nil, err
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

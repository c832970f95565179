package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/ids"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
	"github.com/TristanBrian/MamaCare/internal/security"
)

// AttemptTracker counts failed logins per e-mail address.
type AttemptTracker interface {
	Locked(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	attempts AttemptTracker
	hasher   *security.PasswordHasher
	tokens   *security.TokenIssuer
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time

	// profileMu serializes profileData read-modify-write cycles.
	profileMu sync.Mutex
}

// NewAuthService wires the Session Manager. attempts may be nil, which
// disables lockout.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	attempts AttemptTracker,
	hasher *security.PasswordHasher,
	tokens *security.TokenIssuer,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		attempts: attempts,
		hasher:   hasher,
		tokens:   tokens,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Keys of profileData that are owned by the account itself.
var reservedProfileKeys = map[string]bool{
	"id":           true,
	"email":        true,
	"password":     true,
	"passwordHash": true,
	"role":         true,
	"fullName":     true,
	"createdAt":    true,
	"updatedAt":    true,
}

type DeviceInfo struct {
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type RegisterInput struct {
	Email    string          `json:"email" validate:"required,email,max=254"`
	Password string          `json:"password" validate:"required,min=8,max=128"`
	FullName string          `json:"fullName" validate:"max=200"`
	Role     models.UserRole `json:"role" validate:"required,oneof=admin hospital doctor patient"`
	// Profile holds the remaining role-specific attributes.
	Profile map[string]any `json:"-"`
	Device  DeviceInfo     `json:"-"`
}

type AuthResult struct {
	AccessToken     string      `json:"accessToken,omitempty"`
	AccessExpiresAt *time.Time  `json:"accessExpiresAt,omitempty"`
	RefreshToken    string      `json:"refreshToken,omitempty"`
	SessionID       string      `json:"sessionId,omitempty"`
	DeviceID        string      `json:"deviceId,omitempty"`
	User            models.User `json:"user"`
}

// Register creates an account. Only an admin may create another admin; when
// actor is set the caller keeps their own session and no new one is opened.
func (s *AuthService) Register(ctx context.Context, actor *models.User, input RegisterInput) (AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	if input.Role == models.UserRoleHospital && input.FullName == "" {
		if name, ok := input.Profile["hospitalName"].(string); ok {
			input.FullName = strings.TrimSpace(name)
		}
	}

	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}
	if input.FullName == "" {
		return AuthResult{}, invalid("fullName", "is required")
	}
	if input.Role == models.UserRoleAdmin && (actor == nil || actor.Role != models.UserRoleAdmin) {
		return AuthResult{}, ErrNotAuthorized
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	profile := make(map[string]any, len(input.Profile))
	for k, v := range input.Profile {
		if reservedProfileKeys[k] || v == nil {
			continue
		}
		profile[k] = v
	}

	now := s.now().UTC()
	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		FullName:     input.FullName,
		Role:         input.Role,
		ProfileData:  profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	if actor != nil {
		return AuthResult{User: user}, nil
	}
	return s.createSession(ctx, user, input.Device)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Device   DeviceInfo
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}

	if s.attempts != nil {
		locked, err := s.attempts.Locked(ctx, input.Email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login attempt lookup failed")
		} else if locked {
			return AuthResult{}, ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordFailure(ctx, input.Email)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
	}
	if err != nil || !ok {
		s.recordFailure(ctx, input.Email)
		return AuthResult{}, ErrInvalidCredentials
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, input.Email); err != nil {
			s.log.Warn().Err(err).Msg("reset login attempts failed")
		}
	}

	return s.createSession(ctx, user, input.Device)
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Fail(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("record login failure failed")
	}
}

func (s *AuthService) createSession(ctx context.Context, user models.User, device DeviceInfo) (AuthResult, error) {
	refreshToken, refreshHash, err := security.GenerateRefreshToken(48)
	if err != nil {
		return AuthResult{}, err
	}

	if device.DeviceID == "" {
		device.DeviceID = ids.New()
	}
	if device.DeviceName == "" {
		device.DeviceName = "Unknown Device"
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         device.DeviceID,
		DeviceName:       device.DeviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        device.IPAddress,
		UserAgent:        device.UserAgent,
		ExpiresAt:        s.now().Add(s.cfg.JWTRefreshTTL),
	}

	accessToken, expires, err := s.tokens.Issue(user.ID, session.ID, session.DeviceID, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, fmt.Errorf("store session: %w", err)
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:     accessToken,
		AccessExpiresAt: &expires,
		RefreshToken:    refreshToken,
		SessionID:       session.ID,
		DeviceID:        session.DeviceID,
		User:            user,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.MaxSessions)
}

type RefreshInput struct {
	UserID       string `json:"userId" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	DeviceID     string `json:"deviceId" validate:"required"`
}

// Refresh rotates the refresh token of an existing session and issues a new
// access token.
func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	if err := validateStruct(input); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	session, err := s.sessions.FindByRefreshHash(ctx, input.UserID, security.HashRefreshToken(input.RefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if session.DeviceID != input.DeviceID {
		return AuthResult{}, ErrInvalidCredentials
	}
	if session.ExpiresAt.Before(s.now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(48)
	if err != nil {
		return AuthResult{}, err
	}
	session.RefreshTokenHash = newHash
	session.ExpiresAt = s.now().Add(s.cfg.JWTRefreshTTL)

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	accessToken, expires, err := s.tokens.Issue(user.ID, session.ID, session.DeviceID, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:     accessToken,
		AccessExpiresAt: &expires,
		RefreshToken:    refreshToken,
		SessionID:       session.ID,
		DeviceID:        session.DeviceID,
		User:            user,
	}, nil
}

// Authenticate resolves an access token to its live session and user. A
// token whose session was logged out is rejected even before it expires.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.User, *security.AccessClaims, error) {
	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return models.User{}, nil, ErrNotAuthenticated
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, nil, ErrNotAuthenticated
		}
		return models.User{}, nil, err
	}
	if session.UserID != claims.UserID || session.ExpiresAt.Before(s.now()) {
		return models.User{}, nil, ErrNotAuthenticated
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, nil, ErrNotAuthenticated
		}
		return models.User{}, nil, err
	}
	return user, claims, nil
}

// Touch records session activity; failures are only logged.
func (s *AuthService) Touch(ctx context.Context, sessionID, ip, userAgent string) {
	if err := s.sessions.Touch(ctx, sessionID, ip, userAgent); err != nil {
		s.log.Debug().Err(err).Str("session_id", sessionID).Msg("touch session failed")
	}
}

// Logout ends the session. An already-ended session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// UpdateProfile merges partial into the user's profile. A null value removes
// the key; "fullName" updates the account name; identity keys are ignored.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, partial map[string]any) (models.User, error) {
	if userID == "" {
		return models.User{}, ErrNotAuthenticated
	}

	s.profileMu.Lock()
	defer s.profileMu.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrNotAuthenticated
		}
		return models.User{}, err
	}

	fullName := user.FullName
	if raw, ok := partial["fullName"]; ok {
		name, isString := raw.(string)
		name = strings.TrimSpace(name)
		if !isString || name == "" {
			return models.User{}, invalid("fullName", "must be a non-empty string")
		}
		if len(name) > 200 {
			return models.User{}, invalid("fullName", "must be at most 200 characters")
		}
		fullName = name
	}
	if raw, ok := partial["timeZone"]; ok && raw != nil {
		tz, isString := raw.(string)
		if !isString {
			return models.User{}, invalid("timeZone", "must be an IANA time zone name")
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return models.User{}, invalid("timeZone", "must be an IANA time zone name")
		}
	}
	if raw, ok := partial["dueDate"]; ok && raw != nil {
		due, isString := raw.(string)
		if _, err := time.Parse(models.DateLayout, due); !isString || err != nil {
			return models.User{}, invalid("dueDate", "must be a date in YYYY-MM-DD format")
		}
	}

	profile := make(map[string]any, len(user.ProfileData)+len(partial))
	for k, v := range user.ProfileData {
		profile[k] = v
	}
	for k, v := range partial {
		if reservedProfileKeys[k] {
			continue
		}
		if v == nil {
			delete(profile, k)
			continue
		}
		profile[k] = v
	}

	updated, err := s.users.UpdateProfile(ctx, userID, fullName, profile)
	if err != nil {
		return models.User{}, err
	}
	s.log.Info().Str("user_id", userID).Msg("profile updated")
	return updated, nil
}

// SetProfileValue stores a single system-managed attribute such as the
// avatar URL.
func (s *AuthService) SetProfileValue(ctx context.Context, userID, key string, value any) (models.User, error) {
	s.profileMu.Lock()
	defer s.profileMu.Unlock()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	profile := make(map[string]any, len(user.ProfileData)+1)
	for k, v := range user.ProfileData {
		profile[k] = v
	}
	profile[key] = value
	return s.users.UpdateProfile(ctx, userID, user.FullName, profile)
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// PurgeExpiredSessions removes sessions past their refresh expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("expired sessions removed")
	}
	return n, nil
}

type BootstrapAccount struct {
	Email    string
	Password string
	FullName string
	Role     models.UserRole
	Profile  map[string]any
}

// EnsureAccount creates the account unless the e-mail is already taken. It
// is used by seeding and may create admins.
func (s *AuthService) EnsureAccount(ctx context.Context, acct BootstrapAccount) (models.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(acct.Email)))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.User{}, false, err
	}

	seedAdmin := models.User{Role: models.UserRoleAdmin}
	res, err := s.Register(ctx, &seedAdmin, RegisterInput{
		Email:    acct.Email,
		Password: acct.Password,
		FullName: acct.FullName,
		Role:     acct.Role,
		Profile:  acct.Profile,
	})
	if err != nil {
		return models.User{}, false, err
	}
	return res.User, true, nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"qrmenu/internal/access"
	"qrmenu/internal/apperrors"
	"qrmenu/internal/metrics"
	"qrmenu/internal/models"
	"qrmenu/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxLoginAttempts is the number of consecutive failures that locks an account.
	MaxLoginAttempts = 5
	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 30 * time.Minute
	// MinPasswordLength applies to every newly set password.
	MinPasswordLength = 8
	// MaxPasswordBytes is bcrypt's input limit, counted in bytes.
	MaxPasswordBytes = 72
)

// dummyHash is compared against when the email is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("qrmenu-unknown-account"), bcrypt.DefaultCost)

// LoginResult is a successful login.
type LoginResult struct {
	User  *models.User
	Token string
}

// AuthService is the account guard: password verification, lockout and
// session issuance.
type AuthService struct {
	users   repositories.UserRepository
	tokens  *TokenService
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, tokens *TokenService, log *zap.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// HashPassword validates the length of password and returns its bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", apperrors.Validation("password", "min")
	}
	if len(password) > MaxPasswordBytes {
		return "", apperrors.Validation("password", "max")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	return string(hashed), nil
}

// Authenticate runs the login state machine for one attempt.
//
// An unknown email and a wrong password both yield InvalidCredentials. A
// locked account yields AccountLocked without comparing the password. Counter
// changes are persisted before returning.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	now := s.now()

	user, err := s.users.GetByEmailWithSecret(ctx, email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			s.metrics.RecordLoginFailure("unknown_email")
			return nil, apperrors.InvalidCredentials()
		}
		return nil, err
	}

	if user.IsLocked(now) {
		s.metrics.RecordLoginFailure("locked")
		s.log.Info("Login rejected for locked account", zap.String("user_id", user.ID))
		return nil, apperrors.AccountLocked()
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, s.recordFailure(ctx, user, now)
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.Password = ""
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now
	return user, nil
}

// recordFailure bumps the counter and locks the account when it reaches the
// limit. A lock that already elapsed starts a fresh window at one.
func (s *AuthService) recordFailure(ctx context.Context, user *models.User, now time.Time) error {
	var (
		attempts int
		err      error
	)
	if user.LockUntil != nil {
		attempts, err = s.users.RestartLoginAttempts(ctx, user.ID)
	} else {
		attempts, err = s.users.IncrementLoginAttempts(ctx, user.ID)
	}
	if err != nil {
		return err
	}

	s.metrics.RecordLoginFailure("invalid_password")
	if attempts >= MaxLoginAttempts {
		if err := s.users.LockUntil(ctx, user.ID, now.Add(LockoutDuration)); err != nil {
			return err
		}
		s.metrics.RecordLockout()
		s.log.Warn("Account locked after repeated login failures",
			zap.String("user_id", user.ID),
			zap.Int("attempts", attempts))
	}
	return apperrors.InvalidCredentials()
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{User: user, Token: token}, nil
}

// ConfirmPassword re-checks the password of an already authenticated user.
// It is not a login attempt: lockout counters are never touched.
func (s *AuthService) ConfirmPassword(ctx context.Context, userID, password string) error {
	user, err := s.users.GetByIDWithSecret(ctx, userID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return apperrors.Unauthenticated("account_missing")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return apperrors.InvalidCredentials()
	}
	return nil
}

// ChangePassword replaces the password after confirming the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := s.ConfirmPassword(ctx, userID, current); err != nil {
		return err
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hashed, s.now()); err != nil {
		return err
	}
	s.log.Info("Password changed", zap.String("user_id", userID))
	return nil
}

// LoadActiveUser loads the account behind a verified token. A deleted
// account is Unauthenticated and a locked one is AccountLocked.
func (s *AuthService) LoadActiveUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.Unauthenticated("account_missing")
		}
		return nil, err
	}
	if user.IsLocked(s.now()) {
		return nil, apperrors.AccountLocked()
	}
	return user, nil
}

// Principal builds the caller identity for user. Scope is left unresolved;
// the tenant middleware fills it in.
func Principal(user *models.User, issuedAt time.Time) access.Principal {
	return access.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     user.Role,
		IssuedAt: issuedAt,
	}
}

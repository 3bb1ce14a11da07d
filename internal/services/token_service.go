package services

import (
	"errors"
	"fmt"
	"time"

	"qrmenu/internal/access"

	"github.com/golang-jwt/jwt/v5"
)

// TokenFailure is the specific reason a session token was rejected.
type TokenFailure string

const (
	TokenExpired      TokenFailure = "expired"
	TokenMalformed    TokenFailure = "malformed"
	TokenBadSignature TokenFailure = "bad_signature"
	TokenNotYetValid  TokenFailure = "not_yet_valid"
)

// TokenError reports why Verify rejected a token.
type TokenError struct {
	Kind TokenFailure
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + string(e.Kind)
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// TokenClaims is the payload of a session token.
type TokenClaims struct {
	Role access.Role `json:"role"`
	jwt.RegisteredClaims
}

// VerifiedToken is the decoded identity of a valid token.
type VerifiedToken struct {
	UserID   string
	Role     access.Role
	IssuedAt time.Time
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	maxAge time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. maxAge caps a token's lifetime
// independently of its exp claim; a non-positive maxAge falls back to expiry.
func NewTokenService(secret string, expiry, maxAge time.Duration) *TokenService {
	if maxAge <= 0 {
		maxAge = expiry
	}
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration { return s.expiry }

// Issue signs a token for userID carrying role.
func (s *TokenService) Issue(userID string, role access.Role) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates signature, algorithm and time claims and returns the
// decoded identity. Failures are *TokenError with a distinct Kind.
func (s *TokenService) Verify(tokenString string) (*VerifiedToken, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &TokenError{Kind: classify(err), Err: err}
	}

	if claims.Subject == "" || !claims.Role.Valid() || claims.IssuedAt == nil {
		return nil, &TokenError{Kind: TokenMalformed, Err: errors.New("missing identity claims")}
	}
	issuedAt := claims.IssuedAt.Time
	if s.now().Sub(issuedAt) > s.maxAge {
		return nil, &TokenError{Kind: TokenExpired, Err: errors.New("token exceeds maximum age")}
	}

	return &VerifiedToken{UserID: claims.Subject, Role: claims.Role, IssuedAt: issuedAt}, nil
}

func classify(err error) TokenFailure {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return TokenNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return TokenBadSignature
	default:
		return TokenMalformed
	}
}

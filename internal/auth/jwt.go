// Package auth provides JWT issuance/validation, password hashing, and the
// authentication middleware for the chat API.
//
// AUTHENTICATION FLOW:
//  1. User registers with username/password (POST /api/users/register)
//  2. User exchanges credentials for a JWT (POST /api/token)
//  3. The client sends the token back either as "Authorization: Bearer ..."
//     or via the HttpOnly "token" cookie set at login
//  4. Middleware validates the token and puts the username in the request
//     context; handlers never see raw tokens
//
// The token is stateless: the signed payload carries the username and expiry,
// so validation needs no database lookup. Only the disabled-account check
// (middleware.go) touches the user store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL is the lifetime of an issued access token. After expiry the
// client must log in again.
const AccessTokenTTL = 30 * time.Minute

const issuer = "chatapp"

// TokenService signs and validates JWT access tokens with an HMAC secret.
// The same secret is used for both operations; rotate it periodically in
// production.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The registered "sub" (Subject) claim carries
// the authenticated username.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs an access token for the given username, valid for
// AccessTokenTTL.
func (s *TokenService) Issue(username string) (string, error) {
	return s.IssueWithDuration(username, AccessTokenTTL)
}

// IssueWithDuration creates a token with a custom expiry. Used by tests to
// produce already-expired tokens.
func (s *TokenService) IssueWithDuration(username string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the username from
// its Subject claim.
//
// Checks performed by the library: signature, expiry, issuer, and that the
// algorithm is HS256 (jwt.WithValidMethods guards against algorithm
// confusion — a token claiming alg "none" is rejected outright).
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	username := c.Subject
	if username == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return username, nil
}

// Package auth provides bearer-token issuance/validation and password
// hashing for the tracker API.
//
// AUTH FLOW:
//  1. POST /api/v1/register stores the user with a bcrypt password hash
//  2. POST /api/v1/login verifies the password and issues a signed JWT
//     asserting the user's id in the "sub" claim
//  3. Protected routes carry "Authorization: Bearer <token>"; the middleware
//     validates the signature and expiry and puts the user id in the request
//     context
//
// Validation trusts the token directly, with no user-row lookup per request.
// The signature plus expiry is the whole proof of identity.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "cannalog"

// TokenService issues and validates HS256-signed bearer tokens.
//
// The same HMAC secret signs and verifies. The validity window is fixed at
// construction, configured via JWT_TTL rather than hardcoded, since the
// deployments this replaces disagreed on it (1h vs 24h).
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token TTL must be positive")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. The registered "sub" claim carries the numeric
// user id as decimal text.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a bearer token for the given user id,
// valid for the service's configured TTL.
func (s *TokenService) Generate(userID int64) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
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

// Validate parses and verifies a bearer token string and returns the user id
// from its subject claim.
//
// Checks performed: signature, expiry (required), issuer, and that the
// algorithm is HS256; jwt.WithValidMethods closes the algorithm-confusion
// hole where an attacker supplies an unsigned "none" token.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
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
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token subject is not a valid user id")
	}

	return userID, nil
}

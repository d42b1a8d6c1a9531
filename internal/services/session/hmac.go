package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/board-insights/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// accessClaims are the claims carried by a project access token
type accessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// HMACVerifier verifies access tokens signed with the project's shared JWT secret
type HMACVerifier struct {
	secret []byte
	issuer string
}

// NewHMACVerifier creates a verifier for HS256 tokens. An empty issuer skips the issuer check.
func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify validates the signature and expiry of tokenString and returns its claims
func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (*models.JWTClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims.toModel(), nil
}

func (c *accessClaims) toModel() *models.JWTClaims {
	out := &models.JWTClaims{
		Sub:   c.Subject,
		Email: c.Email,
		Role:  c.Role,
		Iss:   c.Issuer,
	}
	if c.ExpiresAt != nil {
		out.Exp = c.ExpiresAt.Unix()
	}
	if c.IssuedAt != nil {
		out.Iat = c.IssuedAt.Unix()
	}
	if len(c.Audience) > 0 {
		out.Aud = c.Audience[0]
	}
	return out
}

// peekExpiry reads the exp claim without verifying the signature. ok is false
// when the token is not a JWT or carries no expiry.
func peekExpiry(tokenString string) (exp int64, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return 0, false
	}
	if claims.ExpiresAt == nil {
		return 0, false
	}
	return claims.ExpiresAt.Unix(), true
}

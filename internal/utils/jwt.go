// Package utils holds the HS256 access-token helpers used by the JWT
// middleware and the token command.
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID string
	Role   string
}

// NewAccessToken builds and signs an HS256 JWT carrying sub, role, exp
// and iat claims.
func NewAccessToken(secret, userID, role string, ttlMin int) (AccessToken, error) {
	if userID == "" {
		return AccessToken{}, errors.New("user id is required")
	}
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies an HS256 token and extracts the bearer's
// identity.  The role is read from "role", then "user_role", then
// "app_metadata.role", so tokens minted by a managed auth provider are
// accepted alongside our own.
func ParseAccessToken(secret, raw string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, errors.New("token has no subject")
	}
	return Identity{UserID: sub, Role: roleClaim(claims)}, nil
}

func roleClaim(claims jwt.MapClaims) string {
	if r, ok := claims["role"].(string); ok && r != "" && r != "authenticated" {
		return r
	}
	if r, ok := claims["user_role"].(string); ok && r != "" {
		return r
	}
	if meta, ok := claims["app_metadata"].(map[string]any); ok {
		if r, ok := meta["role"].(string); ok && r != "" {
			return r
		}
	}
	r, _ := claims["role"].(string)
	return r
}

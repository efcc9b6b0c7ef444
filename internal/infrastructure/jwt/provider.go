package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/campus-market-api/internal/config"
	"github.com/campus-market-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs. Access and refresh tokens use
// separate secrets so one can never be presented in place of the other.
type Provider struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	return &Provider{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessExpiry:  cfg.AccessTokenExpiry,
		refreshExpiry: cfg.RefreshTokenExpiry,
	}, nil
}

// AccessExpiry returns the access token lifetime, used for cookie max-age.
func (p *Provider) AccessExpiry() time.Duration { return p.accessExpiry }

// RefreshExpiry returns the refresh token lifetime, used for cookie max-age.
func (p *Provider) RefreshExpiry() time.Duration { return p.refreshExpiry }

func (p *Provider) SignAccess(userID string) (string, error) {
	return sign(userID, p.accessSecret, p.accessExpiry)
}

func (p *Provider) SignRefresh(userID string) (string, error) {
	return sign(userID, p.refreshSecret, p.refreshExpiry)
}

// VerifyAccess returns the user ID carried by a valid access token.
// Signature mismatch and expiry both surface as domain.ErrUnauthorized.
func (p *Provider) VerifyAccess(tokenStr string) (string, error) {
	return verify(tokenStr, p.accessSecret)
}

// VerifyRefresh returns the user ID carried by a valid refresh token.
func (p *Provider) VerifyRefresh(tokenStr string) (string, error) {
	return verify(tokenStr, p.refreshSecret)
}

func sign(userID string, secret []byte, expiry time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func verify(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	return claims.UserID, nil
}

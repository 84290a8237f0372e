package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Claims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserLoader is what the issuer needs to re-read a user at issuance time.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TokenIssuer mints HS256 access/refresh pairs bound to a user id.
type TokenIssuer struct {
	cfg   TokenConfig
	users UserLoader
	now   func() time.Time
}

func NewTokenIssuer(cfg TokenConfig, users UserLoader) *TokenIssuer {
	if cfg.Issuer == "" {
		cfg.Issuer = "formcheck"
	}
	return &TokenIssuer{cfg: cfg, users: users, now: time.Now}
}

// Issue loads the user and signs a fresh pair. A user that vanished between
// authentication and issuance yields a token error.
func (i *TokenIssuer) Issue(ctx context.Context, userID string) (*models.TokenPair, error) {
	user, err := i.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Token(fmt.Errorf("loading user %s: %w", userID, err))
	}

	access, err := i.sign(user, tokenTypeAccess, i.cfg.AccessTTL, i.cfg.AccessSecret)
	if err != nil {
		return nil, apperr.Token(fmt.Errorf("signing access token: %w", err))
	}

	refresh, err := i.sign(user, tokenTypeRefresh, i.cfg.RefreshTTL, i.cfg.RefreshSecret)
	if err != nil {
		return nil, apperr.Token(fmt.Errorf("signing refresh token: %w", err))
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) sign(user *models.User, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (i *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return i.parse(token, tokenTypeAccess, i.cfg.AccessSecret)
}

func (i *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return i.parse(token, tokenTypeRefresh, i.cfg.RefreshSecret)
}

func (i *TokenIssuer) parse(tokenString, tokenType, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// MaxAge is how long the cookie for each token should live.
func (i *TokenIssuer) MaxAge() (access, refresh time.Duration) {
	return i.cfg.AccessTTL, i.cfg.RefreshTTL
}

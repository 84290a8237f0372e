// Package auth implements registration, login and token issuance, plus the
// per-user lookups the client shows after login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kdimtricp/formcheck/internal/apperr"
	"github.com/kdimtricp/formcheck/internal/logging"
	"github.com/kdimtricp/formcheck/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

type ResultLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.Result, error)
}

// LoginResult is what a successful login hands back.
type LoginResult struct {
	models.TokenPair
	User *models.UserProfile `json:"user"`
}

type Service struct {
	users   UserStore
	results ResultLister
	hasher  *PasswordHasher
	tokens  *TokenIssuer
	logger  logging.Logger
}

func NewService(users UserStore, results ResultLister, hasher *PasswordHasher, tokens *TokenIssuer, logger logging.Logger) *Service {
	return &Service{
		users:   users,
		results: results,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger.With("component", "auth"),
	}
}

// Register creates a user. Every field is required and blank counts as
// missing, as in Login; an existing username or email is a conflict.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return apperr.Validation("Credentials not provided")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return s.fail(ctx, "register", err)
	}
	if exists {
		return apperr.Conflict("User already exists")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return s.fail(ctx, "register", fmt.Errorf("hashing password: %w", err))
	}

	user := models.NewUser(username, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		return s.fail(ctx, "register", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return nil
}

// Login accepts a username or email as loginName.
func (s *Service) Login(ctx context.Context, loginName, password string) (*LoginResult, error) {
	if strings.TrimSpace(loginName) == "" || strings.TrimSpace(password) == "" {
		return nil, apperr.Validation("Enter the credentials")
	}

	user, err := s.users.FindByLogin(ctx, loginName)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperr.Authentication("Incorrect password")
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{TokenPair: *pair, User: user.Profile()}, nil
}

// Refresh trades a valid refresh token for a new pair. Nothing is tracked
// server-side, so old tokens stay valid until they expire.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperr.Validation("Refresh token not provided")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		s.logger.Warn(ctx, "refresh rejected", "error", err)
		return nil, apperr.Authentication("Invalid refresh token")
	}

	pair, err := s.tokens.Issue(ctx, claims.UserID)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}

	return &LoginResult{TokenPair: *pair, User: user.Profile()}, nil
}

// Profile returns the public projection of the user; the password hash is
// never part of it. A blank username matches nobody.
func (s *Service) Profile(ctx context.Context, username string) (*models.UserProfile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.NotFound("No user found")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, s.fail(ctx, "profile", err)
	}
	return user.Profile(), nil
}

// UserResults lists the user's results newest first. None is an empty
// slice.
func (s *Service) UserResults(ctx context.Context, userID string) ([]models.Result, error) {
	if userID == "" {
		return nil, apperr.Validation("userId not provided")
	}

	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "results", err)
	}
	return results, nil
}

// fail logs unexpected errors and maps them onto the public taxonomy.
// Token errors become server errors at this boundary.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindAuthentication, apperr.KindNotFound:
		return err
	}

	s.logger.Error(ctx, op+" failed", "error", err)
	if errors.Is(err, apperr.ErrToken) {
		return apperr.Server(err)
	}
	return apperr.Wrap(err)
}

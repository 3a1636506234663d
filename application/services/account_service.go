package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tripchat/application/ports"
	"tripchat/domain/chat"
	"tripchat/pkg/auth"
	apperrors "tripchat/pkg/errors"

	"github.com/google/uuid"
)

// AccountService handles registration, login, and token refresh
type AccountService struct {
	users  ports.UserRepository
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

// NewAccountService creates an account service
func NewAccountService(users ports.UserRepository, tokens *auth.TokenIssuer, logger *zap.Logger) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// LoginResult carries the access token returned in the login body. The
// refresh token is delivered separately as an HTTP-only cookie.
type LoginResult struct {
	UserID       string `json:"userId"`
	Token        string `json:"token"`
	RefreshToken string `json:"-"`
}

// Register creates a new account with a bcrypt password hash
func (s *AccountService) Register(ctx context.Context, username, password string) (*chat.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user := &chat.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("username", username))
	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("wrong username or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("wrong username or password")
	}

	accessToken, err := s.tokens.AccessToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue access token").WithCause(err)
	}
	refreshToken, err := s.tokens.RefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue refresh token").WithCause(err)
	}

	s.logger.Info("User authenticated", zap.String("userID", user.ID))

	return &LoginResult{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token
func (s *AccountService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return "", apperrors.NewUnauthorizedError("invalid refresh token")
	}

	accessToken, err := s.tokens.AccessToken(claims.UserID)
	if err != nil {
		return "", apperrors.NewInternalError("failed to issue access token").WithCause(err)
	}
	return accessToken, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// RegisterInput holds the data needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName *string
}

// Token is the credential returned by a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService registers users, logs them in and resolves bearer tokens back to users.
type AuthService struct {
	users  *repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(users *repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account. Username uniqueness is checked before email uniqueness.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, invalid("username, email and password are required")
	}

	taken, err := s.users.UsernameTaken(ctx, username, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("username already registered")
	}
	taken, err = s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("email already registered")
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, invalid("password cannot be hashed: %v", err)
	}

	user := model.User{
		Username:       username,
		Email:          email,
		HashedPassword: digest,
		FullName:       input.FullName,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, duplicate(err, "username or email already registered")
	}

	log.Printf("[info] user registered id=%d username=%s", user.ID, user.Username)
	return &user, nil
}

// Login verifies credentials and issues an access token. An unknown username and a wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrInvalidCredentials, "incorrect username or password")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, newError(ErrInvalidCredentials, "incorrect username or password")
	}

	access, err := s.tokens.Issue(user.Username, s.tokens.TTL())
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: access, TokenType: "bearer"}, nil
}

// Authorize resolves a raw bearer token to an active user.
// A missing, invalid or expired token, and a token whose user no longer exists, are all
// Unauthenticated; a disabled account is Forbidden.
func (s *AuthService) Authorize(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, newError(ErrUnauthenticated, "not authenticated")
	}

	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, newError(ErrUnauthenticated, "could not validate credentials")
	}

	user, err := s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthenticated, "could not validate credentials")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive {
		return nil, newError(ErrForbidden, "inactive user")
	}
	return user, nil
}

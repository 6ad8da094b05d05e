package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bandroom/internal/auth"
	apperrors "bandroom/internal/errors"
	"bandroom/internal/model"
	"bandroom/internal/repository"
	"bandroom/internal/session"
)

const bcryptCost = 10

// IssuedSession is a freshly established session and the token to hand to the browser.
type IssuedSession struct {
	Session *session.Session
	Token   string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, current *session.Session, username, password string) (*IssuedSession, error)
	Login(ctx context.Context, current *session.Session, username, password string) (*IssuedSession, error)
	Logout(ctx context.Context, current *session.Session) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with hashed password and logs them in.
func (s *authService) Register(ctx context.Context, current *session.Session, username, password string) (*IssuedSession, error) {
	if current.Authenticated() {
		return nil, apperrors.ErrAlreadyLoggedIn
	}
	username = clean(username)

	// Check if user already exists
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(ctx, user.Username)
}

// Login verifies the password. Unknown usernames and wrong passwords fail the same way.
func (s *authService) Login(ctx context.Context, current *session.Session, username, password string) (*IssuedSession, error) {
	if current.Authenticated() {
		return nil, apperrors.ErrAlreadyLoggedIn
	}

	user, err := s.userRepo.FindByUsername(ctx, clean(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(ctx, user.Username)
}

// Logout unregisters the session token. Anonymous sessions are a no-op.
func (s *authService) Logout(ctx context.Context, current *session.Session) error {
	if !current.Authenticated() || current.TokenID == "" {
		return nil
	}
	if err := s.tokenStore.DeleteSession(ctx, current.TokenID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, username string) (*IssuedSession, error) {
	tokenID, token, err := s.jwtService.GenerateSessionToken(username)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	if err := s.tokenStore.StoreSession(ctx, tokenID, username, s.jwtService.TTL()); err != nil {
		return nil, err
	}
	return &IssuedSession{
		Session: &session.Session{Username: username, TokenID: tokenID},
		Token:   token,
	}, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/devconnector/internal/logging"
	"github.com/redmonkez12/devconnector/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

// MinPasswordLength is the shortest password Register accepts
const MinPasswordLength = 6

// UserRepository is the subset of the credential store the auth flow needs
type UserRepository interface {
	Create(ctx context.Context, name, email, passwordHash, avatar string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Service handles authentication business logic
type Service struct {
	userRepo      UserRepository
	tokenService  TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
	hashParams    argon2Params
	verify        func(encodedHash, password string) bool

	// fallbackHash is checked for unknown emails so both paths pay for one argon2 run
	fallbackOnce sync.Once
	fallbackHash string
}

func NewService(
	userRepo UserRepository,
	tokenService TokenService,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:      userRepo,
		tokenService:  tokenService,
		logger:        logger,
		tokenDuration: tokenDuration,
		hashParams:    defaultArgon2Params,
		verify:        verifyPassword,
	}
}

// Register creates a new user account and returns a bearer token for it
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	if name == "" {
		return "", ErrNameRequired
	}
	if email == "" {
		return "", ErrEmailRequired
	}
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	// Cheap pre-check; the unique index still decides under races
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return "", user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := hashPassword(password, s.hashParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, name, email, passwordHash, gravatarURL(email))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return "", user.ErrDuplicateEmail
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("user created", "user_id", newUser.ID)

	return s.issueToken(newUser.ID)
}

// Authenticate verifies credentials and returns a bearer token
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.verify(s.unknownUserHash(), password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verify(existingUser.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(existingUser.ID)
}

// unknownUserHash returns a throwaway hash built with the service's own cost parameters
func (s *Service) unknownUserHash() string {
	s.fallbackOnce.Do(func() {
		hash, err := hashPassword(uuid.NewString(), s.hashParams)
		if err != nil {
			s.logger.Error("failed to build fallback password hash", "error", err)
			return
		}
		s.fallbackHash = hash
	})
	return s.fallbackHash
}

// ResolveToken verifies a bearer token and returns the user it was issued to
func (s *Service) ResolveToken(token string) (uuid.UUID, error) {
	claims, err := s.tokenService.VerifyToken(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}

// GetCurrentUser loads the user behind a resolved token
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Service) issueToken(userID uuid.UUID) (string, error) {
	token, err := s.tokenService.CreateToken(userID, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}
	return token, nil
}

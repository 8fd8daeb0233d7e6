package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrAuth)
	ErrDisplayNameExists  = fmt.Errorf("display name already exists: %w", domain.ErrConflict)
)

// AuthService is the credential side of the identity collaborator. The
// core services never call it; they only consume verified user ids.
type AuthService struct {
	userRepo repository.UserRepository
	verifier *identity.JWTVerifier
}

func NewAuthService(userRepo repository.UserRepository, verifier *identity.JWTVerifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		verifier: verifier,
	}
}

type RegisterInput struct {
	DisplayName string
	Password    string
}

type LoginInput struct {
	DisplayName string
	Password    string
}

type AuthResult struct {
	User        *domain.User
	AccessToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.userRepo.GetByDisplayName(ctx, input.DisplayName)
	if err == nil && existing != nil {
		return nil, ErrDisplayNameExists
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:              uuid.New(),
		DisplayName:     input.DisplayName,
		PasswordHash:    string(hashedPassword),
		ReputationScore: domain.DefaultReputation,
		IsAvailable:     true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Losing the check-then-create race to a concurrent register
		// surfaces here as a duplicate-key conflict.
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrDisplayNameExists
		}
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByDisplayName(ctx, input.DisplayName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := s.verifier.Mint(user.ID, user.DisplayName)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

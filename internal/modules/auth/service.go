package auth

import (
	"context"
	"errors"

	"foodgram/internal/domain/user"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users repository.UserRepository
	jwt   *jwtsvc.Service
}

func NewService(users repository.UserRepository, jwt *jwtsvc.Service) *Service {
	return &Service{users: users, jwt: jwt}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.authResponse(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, user.ErrInvalidCredentials
	}

	return s.authResponse(u)
}

func (s *Service) authResponse(u *user.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		Token: token,
		User: UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		},
	}, nil
}

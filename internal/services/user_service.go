package services

import (
	"context"
	"strings"
	"time"

	"github.com/ejdotp/digiWallet/internal/auth"
	"github.com/ejdotp/digiWallet/internal/models"
	repo "github.com/ejdotp/digiWallet/internal/repository"
)

type UserService struct {
	r  repo.Users
	tm *auth.TokenManager
}

func NewUserService(r repo.Users, tm *auth.TokenManager) *UserService {
	return &UserService{r: r, tm: tm}
}

func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	u := models.User{Username: strings.TrimSpace(username)}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.r.Create(ctx, u.Username, hash)
}

// Authenticate resolves a (username, password) pair to a user. Unknown
// usernames and wrong passwords fail with the same error and the same cost.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.r.GetByUsername(ctx, username)
	if err != nil {
		auth.BurnVerify(password)
		return models.User{}, models.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, models.ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues a bearer token for subsequent calls.
func (s *UserService) Login(ctx context.Context, username, password string) (token string, exp time.Time, err error) {
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tm.Generate(u.ID)
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.r.GetByID(ctx, id)
}

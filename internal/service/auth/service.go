package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talentlink/internal/model"
	"talentlink/internal/repository"
	"talentlink/internal/util"
	"talentlink/pkg/rbac"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("unknown role")
)

type Service struct {
	users     *repository.UserRepository
	jwtSecret string
}

func NewService(users *repository.UserRepository, jwtSecret string) *Service {
	return &Service{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user with the chosen role (client or freelancer).
func (s *Service) Register(ctx context.Context, email, password, name, role string) (*model.User, error) {
	if !rbac.ValidRole(role) {
		return nil, fmt.Errorf("register: %q: %w", role, ErrInvalidRole)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks credentials and returns a JWT carrying user id and role.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

// GetProfile returns the stored profile for a user id.
func (s *Service) GetProfile(ctx context.Context, userID int) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile replaces the editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID int, upd repository.ProfileUpdate) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, upd); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

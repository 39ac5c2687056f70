package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a credentials user. The email must not be taken.
func (s *Service) Register(ctx context.Context, email, name, hashedPassword string) (User, error) {
	email = NormalizeEmail(email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("lookup email: %w", err)
	}

	newUser := &User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: &hashedPassword,
		Role:         RoleUser,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

// CreateOAuthUser creates a user with no password, as on a first OAuth
// sign-in.
func (s *Service) CreateOAuthUser(ctx context.Context, email, name, image string) (User, error) {
	newUser := &User{
		Email: NormalizeEmail(email),
		Name:  strings.TrimSpace(name),
		Image: image,
		Role:  RoleUser,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// FillProfile sets name and image from an OAuth profile where they are
// still empty.
func (s *Service) FillProfile(ctx context.Context, u User, name, image string) (User, error) {
	changed := false
	if u.Name == "" && name != "" {
		u.Name = name
		changed = true
	}
	if u.Image == "" && image != "" {
		u.Image = image
		changed = true
	}
	if !changed {
		return u, nil
	}
	if err := s.repo.UpdateProfile(ctx, u.ID, u.Name, u.Image); err != nil {
		return User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the fields that are non-nil.
func (s *Service) UpdateProfile(ctx context.Context, id string, name, image *string) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if name != nil {
		u.Name = strings.TrimSpace(*name)
	}
	if image != nil {
		u.Image = strings.TrimSpace(*image)
	}
	if err := s.repo.UpdateProfile(ctx, u.ID, u.Name, u.Image); err != nil {
		return User{}, err
	}
	return u, nil
}

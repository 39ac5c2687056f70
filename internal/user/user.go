package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is an identity. PasswordHash is nil for users who only ever signed
// in through an OAuth provider.
type User struct {
	ID           string
	Email        string
	Name         string
	Image        string
	PasswordHash *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Profile is the public JSON view of a User.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Role        string    `json:"role"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Image:       u.Image,
		Role:        u.Role,
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt,
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

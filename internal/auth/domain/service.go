package domain

import (
	"context"
	"errors"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	UserID   string
	Email    string
	FullName string
	Role     Role
}

type Service interface {
	Login(context.Context, LoginRequest) (LoginResponse, error)
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	Me(ctx context.Context, userID string) (*User, error)
	CreateUser(context.Context, CreateUserRequest) (*User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrNotFound           = errors.New("user_not_found")
)

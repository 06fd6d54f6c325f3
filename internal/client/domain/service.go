package domain

import (
	"context"
	"errors"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

type CreateClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateClientRequest struct {
	ID      string  `json:"-"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ListClientRequest struct {
	PageToken string
	PageSize  int32
	Search    string
}

type ListClientFilter struct {
	Search string
}

type ListClientResponse struct {
	pagination.PageInfo
	Clients []*Client `json:"clients"`
}

type Service interface {
	Create(context.Context, CreateClientRequest) (*Client, error)
	List(context.Context, ListClientRequest) (ListClientResponse, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	Update(context.Context, UpdateClientRequest) (*Client, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (*Stats, error)
}

var (
	ErrInvalidID      = errors.New("invalid_client_id")
	ErrInvalidName    = errors.New("invalid_client_name")
	ErrInvalidEmail   = errors.New("invalid_client_email")
	ErrDuplicateEmail = errors.New("duplicate_client_email")
	ErrNotFound       = errors.New("client_not_found")
	ErrClientInUse    = errors.New("client_in_use")
)

package domain

import (
	"context"
	"errors"
)

type CreateCustomerRequest struct {
	Name  string         `json:"name"`
	Phone string         `json:"phone"`
	Email string         `json:"email,omitempty"`
	Meta  map[string]any `json:"metadata,omitempty"`
}

type ListCustomerRequest struct {
	Phone string
	Limit int
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) ([]Customer, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrNotFound        = errors.New("customer_not_found")
)

package repository

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicate           = errors.New("duplicate resource")
	ErrInvalidInput        = errors.New("invalid input data")
	ErrInsufficientStock   = errors.New("not enough quantity available")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientPayment = errors.New("amount paid does not cover the total")
	ErrInvalidState        = errors.New("operation not allowed in current state")
)

package service

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNetwork         = errors.New("network error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCartEmpty       = errors.New("cart is empty")
)

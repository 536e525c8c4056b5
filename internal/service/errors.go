package service

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAlreadyTerminated   = errors.New("contract already terminated")
	ErrInsufficientBalance = errors.New("insufficient owner balance")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")
)

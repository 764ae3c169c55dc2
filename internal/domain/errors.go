package domain

import "errors"

var (
	ErrStreamNotFound = errors.New("stream not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidToken   = errors.New("invalid token")
)

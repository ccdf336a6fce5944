package services

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidEmbedding = errors.New("invalid embedding")
)

package services

import "errors"

var (
	ErrInvalidInput = errors.New("invalid task input")
	ErrTaskNotFound = errors.New("task not found")
)

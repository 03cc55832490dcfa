package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique key (user email) is already taken.
var ErrDuplicate = errors.New("duplicate key")

// ErrLimitReached is returned when a form's submission cap is already met.
var ErrLimitReached = errors.New("submission limit reached")

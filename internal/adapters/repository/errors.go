package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidData = errors.New("invalid record")
	ErrLoadSeed    = errors.New("load seed failed")
)

package db

import "errors"

var (
	ErrParseConfig    = errors.New("db: failed to parse database configuration")
	ErrOpenConnection = errors.New("db: failed to open database connection")
	ErrMigrate        = errors.New("db: failed to apply migrations")
)

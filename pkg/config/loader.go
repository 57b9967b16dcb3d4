package config

import (
	"errors"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var loadDotEnv sync.Once

// Load populates cfg from environment variables according to its `env` tags.
// A .env file in the working directory is loaded once per process if present;
// its absence is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load fills the provided configuration struct from environment variables,
// preferring values from a .env file when one exists. Struct fields declare
// their sources with `env` tags:
//
//	type AuthConfig struct {
//		AccessSecret string        `env:"AUTH_ACCESS_SECRET,required"`
//		AccessTTL    time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"5m"`
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional; absence is not an error.
		_ = godotenv.Load()
	})

	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Used for configuration
// without which the process cannot start.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

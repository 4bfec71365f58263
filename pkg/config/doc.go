// Package config loads typed configuration structs from environment
// variables and an optional .env file. Each package owns its Config struct
// with `env` tags; the entrypoint loads them once at startup and injects
// them explicitly, never through ambient globals.
package config

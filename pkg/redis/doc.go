// Package redis wraps the go-redis client with a retrying connection
// helper driven by environment configuration.
package redis

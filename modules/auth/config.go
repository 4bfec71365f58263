package auth

import "time"

// Config holds the session subsystem configuration. The two signing secrets
// are distinct by contract; NewService refuses to start otherwise.
type Config struct {
	AccessSecret  string `env:"AUTH_ACCESS_SECRET,required"`
	RefreshSecret string `env:"AUTH_REFRESH_SECRET,required"`

	AccessTTL  time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"5m"`
	RefreshTTL time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"720h"`

	// CacheTTL is the freshness window after which a cached resolution is
	// re-verified against the token and identity backend.
	CacheTTL             time.Duration `env:"AUTH_CACHE_TTL" envDefault:"5m"`
	CacheCapacity        int           `env:"AUTH_CACHE_CAPACITY" envDefault:"10000"`
	CacheCleanupInterval time.Duration `env:"AUTH_CACHE_CLEANUP_INTERVAL" envDefault:"5m"`

	// RefreshTimeout bounds a refresh rotation; exceeding it fails closed
	// to unauthenticated rather than leaving the request pending.
	RefreshTimeout time.Duration `env:"AUTH_REFRESH_TIMEOUT" envDefault:"5s"`

	// IdentityTimeout bounds identity backend lookups on cache miss.
	IdentityTimeout time.Duration `env:"AUTH_IDENTITY_TIMEOUT" envDefault:"5s"`

	// SecureCookies sets the Secure attribute on credential cookies.
	// Enabled in production, off for plain-HTTP local development.
	SecureCookies bool `env:"AUTH_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns the configuration used when no environment is
// loaded, mainly in tests.
func DefaultConfig() Config {
	return Config{
		AccessTTL:            5 * time.Minute,
		RefreshTTL:           30 * 24 * time.Hour,
		CacheTTL:             5 * time.Minute,
		CacheCapacity:        10000,
		CacheCleanupInterval: 5 * time.Minute,
		RefreshTimeout:       5 * time.Second,
		IdentityTimeout:      5 * time.Second,
	}
}

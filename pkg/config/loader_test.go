package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmhridu/hamsoya-mono-sub004/pkg/config"
)

type testConfig struct {
	Name    string        `env:"TEST_CFG_NAME" envDefault:"hamsoya"`
	Port    int           `env:"TEST_CFG_PORT" envDefault:"8080"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" envDefault:"5s"`
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_REQUIRED_SECRET,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "hamsoya", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TEST_CFG_NAME", "storefront")
	t.Setenv("TEST_CFG_TIMEOUT", "250ms")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "storefront", cfg.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoadRequired(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNil(t *testing.T) {
	err := config.Load[testConfig](nil)
	require.ErrorIs(t, err, config.ErrNilPointer)
}

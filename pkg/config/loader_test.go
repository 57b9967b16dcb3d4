package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailing/pkg/config"
)

type testConfig struct {
	Name     string        `env:"CONFIG_TEST_NAME,required"`
	Interval time.Duration `env:"CONFIG_TEST_INTERVAL" envDefault:"5m"`
	Enabled  bool          `env:"CONFIG_TEST_ENABLED" envDefault:"true"`
}

func TestLoad(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "mailing")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	require.Equal(t, "mailing", cfg.Name)
	require.Equal(t, 5*time.Minute, cfg.Interval)
	require.True(t, cfg.Enabled)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "")

	var cfg struct {
		Value string `env:"CONFIG_TEST_ABSENT_VALUE,required"`
	}
	err := config.Load(&cfg)
	require.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoadNilPointer(t *testing.T) {
	t.Parallel()

	var cfg *testConfig
	require.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/identity/pkg/config"
)

type testConfig struct {
	Host string `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port int    `env:"TEST_CFG_PORT" envDefault:"5432"`
	Name string `env:"TEST_CFG_NAME,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults and reads env", func(t *testing.T) {
		t.Setenv("TEST_CFG_NAME", "identity")
		t.Setenv("TEST_CFG_PORT", "9000")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, "identity", cfg.Name)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

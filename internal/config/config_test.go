package config_test

import (
	"testing"
	"time"

	"qrmenu/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_RequiresSecret(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	_, err := config.FromViper(v)
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("JWT_SECRET", "s3cret")
	v.Set("DATABASE_DRIVER", "SQLite")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 12*time.Hour, cfg.JWTMaxAge)
	assert.Equal(t, 15*time.Minute, cfg.ReauthMaxAge)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []string{"system/", "defaults/", "static/"}, cfg.StorageProtectedPrefixes)
	assert.False(t, cfg.IsProduction())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_PASSWORD", "pw")
	t.Setenv("SERVER_PORT", "8088")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.PoolSize)
	assert.Equal(t, 8, cfg.Leaderboard.DetailConcurrency)
	assert.Equal(t, 5*time.Second, cfg.Points.ApplyLockTimeout)
	assert.Equal(t, "postgres://sportsweek:pw@localhost:5432/sportsweek?sslmode=disable", cfg.Database.DSN())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:      ServerConfig{Port: 70000},
		Auth:        AuthConfig{JWTSecret: "x"},
		Leaderboard: LeaderboardConfig{DetailConcurrency: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 3001
	assert.NoError(t, cfg.Validate())

	cfg.Leaderboard.DetailConcurrency = 0
	assert.Error(t, cfg.Validate())
}

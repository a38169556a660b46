package main

import (
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sportsgrades-api/internal/repository"
	"github.com/noah-isme/sportsgrades-api/pkg/config"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestGradeCacheStoreFallsBackToPostgresAndSweeps(t *testing.T) {
	cfg := &config.Config{
		Cache: config.GradeCacheConfig{Backend: config.CacheBackendRedis, SweepEnabled: true},
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: closedPort(t), PingTimeout: 500 * time.Millisecond},
	}

	store, backend, closeStore := gradeCacheStore(cfg, newTestDB(t), zap.NewNop())
	defer closeStore()

	assert.Equal(t, config.CacheBackendPostgres, backend)
	assert.IsType(t, &repository.GradeCacheRepository{}, store)
	assert.True(t, sweepNeeded(cfg, backend))
}

func TestGradeCacheStorePostgres(t *testing.T) {
	cfg := &config.Config{Cache: config.GradeCacheConfig{Backend: config.CacheBackendPostgres}}

	store, backend, closeStore := gradeCacheStore(cfg, newTestDB(t), zap.NewNop())
	defer closeStore()

	assert.Equal(t, config.CacheBackendPostgres, backend)
	assert.IsType(t, &repository.GradeCacheRepository{}, store)
	assert.False(t, sweepNeeded(cfg, backend))
}

func TestSweepNeeded(t *testing.T) {
	cfg := &config.Config{Cache: config.GradeCacheConfig{Backend: config.CacheBackendRedis, SweepEnabled: true}}

	assert.False(t, sweepNeeded(cfg, config.CacheBackendRedis))
	assert.True(t, sweepNeeded(cfg, config.CacheBackendPostgres))
}
